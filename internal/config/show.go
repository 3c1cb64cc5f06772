package config

import (
	"gopkg.in/yaml.v3"
)

// displayConfig mirrors Config with durations as strings; yaml.v3 would
// otherwise print them as nanosecond integers.
type displayConfig struct {
	SecondaryUser   string `yaml:"secondary_user"`
	SSHPort         int    `yaml:"ssh_port"`
	ConnectTimeout  string `yaml:"connect_timeout"`
	CommandTimeout  string `yaml:"command_timeout"`
	HostKeyChecking string `yaml:"host_key_checking"`
	KnownHostsFile  string `yaml:"known_hosts_file,omitempty"`
	MountLogFile    string `yaml:"mount_log_file"`
	GlusterdWorkdir string `yaml:"glusterd_workdir,omitempty"`
	CapacityBuffer  int64  `yaml:"capacity_buffer"`
	Color           string `yaml:"color"`
	LockDir         string `yaml:"lock_dir"`
}

// Marshal renders cfg as YAML in the same shape the loader accepts.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(displayConfig{
		SecondaryUser:   cfg.SecondaryUser,
		SSHPort:         cfg.SSHPort,
		ConnectTimeout:  cfg.ConnectTimeout.String(),
		CommandTimeout:  cfg.CommandTimeout.String(),
		HostKeyChecking: cfg.HostKeyChecking,
		KnownHostsFile:  cfg.KnownHostsFile,
		MountLogFile:    cfg.MountLogFile,
		GlusterdWorkdir: cfg.GlusterdWorkdir,
		CapacityBuffer:  cfg.CapacityBuffer,
		Color:           cfg.Color,
		LockDir:         cfg.LockDir,
	})
}
