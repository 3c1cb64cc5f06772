package config

import (
	"time"

	"github.com/rileyhilliard/georep/internal/gluster"
)

// Defaults for every key. A missing config file means exactly these.
const (
	DefaultSecondaryUser   = "root"
	DefaultSSHPort         = 22
	DefaultConnectTimeout  = 10 * time.Second
	DefaultCommandTimeout  = 5 * time.Minute
	DefaultHostKeyChecking = "accept-new"
	DefaultCapacityBuffer  = int64(100 * 1024 * 1024)
	DefaultColor           = "auto"
	DefaultLockDir         = "/var/run"
)

// Config holds the tunables of a setup run. Every field can be set in the
// YAML file, through a GEOREP_<KEY> environment variable, or (for some) by
// a command-line flag, in increasing order of precedence.
type Config struct {
	// SecondaryUser is the admin account used to log in to the secondary
	// entry node. Commands run through sudo when it is not root.
	SecondaryUser string `yaml:"secondary_user" mapstructure:"secondary_user"`

	SSHPort        int           `yaml:"ssh_port" mapstructure:"ssh_port"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`
	CommandTimeout time.Duration `yaml:"command_timeout" mapstructure:"command_timeout"`

	// HostKeyChecking is strict, accept-new or off.
	HostKeyChecking string `yaml:"host_key_checking" mapstructure:"host_key_checking"`
	// KnownHostsFile overrides ~/.ssh/known_hosts.
	KnownHostsFile string `yaml:"known_hosts_file" mapstructure:"known_hosts_file"`

	MountLogFile string `yaml:"mount_log_file" mapstructure:"mount_log_file"`
	// GlusterdWorkdir overrides the primary node's glusterd working directory
	// instead of asking `gluster system:: getwd`. The secondary is always asked.
	GlusterdWorkdir string `yaml:"glusterd_workdir" mapstructure:"glusterd_workdir"`
	// CapacityBuffer is the headroom in bytes added to the primary's used space.
	CapacityBuffer int64 `yaml:"capacity_buffer" mapstructure:"capacity_buffer"`

	// Color is auto, always or never.
	Color   string `yaml:"color" mapstructure:"color"`
	LockDir string `yaml:"lock_dir" mapstructure:"lock_dir"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SecondaryUser:   DefaultSecondaryUser,
		SSHPort:         DefaultSSHPort,
		ConnectTimeout:  DefaultConnectTimeout,
		CommandTimeout:  DefaultCommandTimeout,
		HostKeyChecking: DefaultHostKeyChecking,
		MountLogFile:    gluster.DefaultMountLog,
		CapacityBuffer:  DefaultCapacityBuffer,
		Color:           DefaultColor,
		LockDir:         DefaultLockDir,
	}
}
