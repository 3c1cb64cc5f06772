package config

import (
	"testing"
	"time"

	"github.com/rileyhilliard/georep/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"empty user", func(c *Config) { c.SecondaryUser = "" }, "secondary_user is empty"},
		{"user with at", func(c *Config) { c.SecondaryUser = "geo@host" }, "invalid characters"},
		{"port zero", func(c *Config) { c.SSHPort = 0 }, "ssh_port 0 is out of range"},
		{"port too high", func(c *Config) { c.SSHPort = 70000 }, "out of range"},
		{"connect timeout", func(c *Config) { c.ConnectTimeout = 0 }, "connect_timeout must be positive"},
		{"command timeout", func(c *Config) { c.CommandTimeout = -time.Second }, "command_timeout must be positive"},
		{"host key policy", func(c *Config) { c.HostKeyChecking = "yolo" }, "Unknown host_key_checking value 'yolo'"},
		{"color", func(c *Config) { c.Color = "rainbow" }, "Unknown color value 'rainbow'"},
		{"negative buffer", func(c *Config) { c.CapacityBuffer = -1 }, "capacity_buffer can't be negative"},
		{"relative log", func(c *Config) { c.MountLogFile = "mount.log" }, "mount_log_file must be an absolute path"},
		{"relative workdir", func(c *Config) { c.GlusterdWorkdir = "glusterd" }, "glusterd_workdir must be an absolute path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate_Accepts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SecondaryUser = "geo-admin"
	cfg.HostKeyChecking = "OFF"
	cfg.Color = "never"
	cfg.CapacityBuffer = 0
	cfg.GlusterdWorkdir = "/data/glusterd"
	assert.NoError(t, Validate(cfg))
}
