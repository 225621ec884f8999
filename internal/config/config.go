package config

import "time"

// StorageConfig selects the history persistence driver.
type StorageConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	Path   string `mapstructure:"path" yaml:"path"`
}

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	HistoryLimit      int           `mapstructure:"history_limit" yaml:"history_limit"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	IdleSweepInterval time.Duration `mapstructure:"idle_sweep_interval" yaml:"idle_sweep_interval"`
	SlowModeInterval  time.Duration `mapstructure:"slow_mode_interval" yaml:"slow_mode_interval"`
	AdminWindow       time.Duration `mapstructure:"admin_window" yaml:"admin_window"`
	LongPollTimeout   time.Duration `mapstructure:"long_poll_timeout" yaml:"long_poll_timeout"`

	Storage          StorageConfig `mapstructure:"storage" yaml:"storage"`
	SecretPath       string        `mapstructure:"secret_path" yaml:"secret_path"`
	ProfanitySources []string      `mapstructure:"profanity_sources" yaml:"profanity_sources"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		HistoryLimit:      500,
		IdleTimeout:       5 * time.Minute,
		IdleSweepInterval: 5 * time.Second,
		SlowModeInterval:  2 * time.Second,
		AdminWindow:       10 * time.Second,
		LongPollTimeout:   30 * time.Second,
		Storage: StorageConfig{
			Driver: "jsonfile",
			Path:   "chat-history.json",
		},
		SecretPath: "admin-secret.txt",
		ProfanitySources: []string{
			"https://www.cs.cmu.edu/~biglou/resources/bad-words.txt",
			"https://raw.githubusercontent.com/zacanger/profane-words/master/words.json",
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.HistoryLimit != 0 {
		c.HistoryLimit = other.HistoryLimit
	}
	if other.IdleTimeout != 0 {
		c.IdleTimeout = other.IdleTimeout
	}
	if other.SlowModeInterval != 0 {
		c.SlowModeInterval = other.SlowModeInterval
	}
	if other.Storage.Driver != "" {
		c.Storage = other.Storage
	}
	if other.SecretPath != "" {
		c.SecretPath = other.SecretPath
	}
}
