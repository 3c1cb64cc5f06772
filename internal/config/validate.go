package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/georep/internal/errors"
	"github.com/rileyhilliard/georep/internal/ui"
	"github.com/rileyhilliard/georep/pkg/sshutil"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if err := validateUser(cfg.SecondaryUser); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
			"Set secondary_user (or --secondary-user) to a plain account name like 'root' or 'geoadmin'.")
	}

	if cfg.SSHPort < 1 || cfg.SSHPort > 65535 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("ssh_port %d is out of range", cfg.SSHPort),
			"Use a TCP port between 1 and 65535 (sshd listens on 22 by default).")
	}

	if cfg.ConnectTimeout <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("connect_timeout must be positive, got %s", cfg.ConnectTimeout),
			"Use a duration like '10s'.")
	}
	if cfg.CommandTimeout <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("command_timeout must be positive, got %s", cfg.CommandTimeout),
			"Use a duration like '5m'. Mounting a large volume can take a while.")
	}

	if _, err := sshutil.ParseHostKeyPolicy(cfg.HostKeyChecking); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Unknown host_key_checking value '%s'", cfg.HostKeyChecking),
			"Use one of: strict, accept-new, off.")
	}

	if _, err := ui.ParseColorMode(cfg.Color); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Unknown color value '%s'", cfg.Color),
			"Use one of: auto, always, never.")
	}

	if cfg.CapacityBuffer < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("capacity_buffer can't be negative (%d)", cfg.CapacityBuffer),
			"Use a byte count, e.g. 104857600 for 100 MiB.")
	}

	for key, path := range map[string]string{
		"mount_log_file":   cfg.MountLogFile,
		"glusterd_workdir": cfg.GlusterdWorkdir,
		"known_hosts_file": cfg.KnownHostsFile,
		"lock_dir":         cfg.LockDir,
	} {
		if path != "" && !filepath.IsAbs(path) {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("%s must be an absolute path, got '%s'", key, path),
				"Relative paths depend on where the tool is started from.")
		}
	}

	return nil
}

func validateUser(user string) error {
	if user == "" {
		return fmt.Errorf("secondary_user is empty")
	}
	if strings.ContainsAny(user, " \t\n@:/") {
		return fmt.Errorf("secondary_user '%s' contains invalid characters", user)
	}
	return nil
}
