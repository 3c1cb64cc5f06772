package config

import (
	"os"
	"path/filepath"

	"github.com/rileyhilliard/georep/internal/errors"
	"github.com/spf13/viper"
)

const (
	// SystemConfigFile is checked before the per-user file.
	SystemConfigFile = "/etc/georep/config.yaml"
	// UserConfigDir is the per-user config directory, relative to home.
	UserConfigDir = ".config/georep"
	// UserConfigFile is the per-user config file name.
	UserConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides (GEOREP_SSH_PORT, ...).
	EnvPrefix = "GEOREP"
)

// searchPaths lists the implicit config locations in priority order.
// A variable so tests can point it elsewhere.
var searchPaths = func() []string {
	paths := []string{SystemConfigFile}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, UserConfigDir, UserConfigFile))
	}
	return paths
}

// Load reads config from the specified path, with defaults and environment
// overrides applied.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found: "+path,
				"Check the path given to --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file "+path,
			"Check the file exists and is valid YAML")
	}

	return unmarshal(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. /etc/georep/config.yaml
// 3. ~/.config/georep/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	for _, p := range searchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// LoadOrDefault loads the config Find picks, or defaults plus environment
// overrides when there is none. The returned path is empty in that case.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		cfg, err := unmarshal(newViper(), "environment")
		return cfg, "", err
	}

	cfg, err := Load(path)
	return cfg, path, err
}

// newViper returns a viper instance with every key defaulted, so
// AutomaticEnv can override keys that appear in no file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	d := DefaultConfig()
	v.SetDefault("secondary_user", d.SecondaryUser)
	v.SetDefault("ssh_port", d.SSHPort)
	v.SetDefault("connect_timeout", d.ConnectTimeout)
	v.SetDefault("command_timeout", d.CommandTimeout)
	v.SetDefault("host_key_checking", d.HostKeyChecking)
	v.SetDefault("known_hosts_file", d.KnownHostsFile)
	v.SetDefault("mount_log_file", d.MountLogFile)
	v.SetDefault("glusterd_workdir", d.GlusterdWorkdir)
	v.SetDefault("capacity_buffer", d.CapacityBuffer)
	v.SetDefault("color", d.Color)
	v.SetDefault("lock_dir", d.LockDir)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper, source string) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the values in "+source)
	}
	return cfg, nil
}
