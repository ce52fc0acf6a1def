package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type RemoteConfig struct {
	APIBase        string `mapstructure:"api_base"`
	Owner          string `mapstructure:"owner"`
	Repo           string `mapstructure:"repo"`
	Ref            string `mapstructure:"ref"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	TokenEnv       string `mapstructure:"token_env"`
}

type Config struct {
	Remote     RemoteConfig `mapstructure:"remote"`
	RulesDir   string       `mapstructure:"rules_dir"`
	StatePath  string       `mapstructure:"state_path"`
	DBPath     string       `mapstructure:"db_path"`
	DaemonPort int          `mapstructure:"daemon_port"`
}

var Default = Config{
	Remote: RemoteConfig{
		APIBase:        "https://api.github.com",
		Ref:            "main",
		TimeoutSeconds: 30,
		TokenEnv:       "RULESYNC_TOKEN",
	},
	RulesDir:   ".cursor/rules",
	StatePath:  ".cursor/sync-state.json",
	DBPath:     "rulesync.db",
	DaemonPort: 9321,
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home dir: %w", err)
	}

	configDir := filepath.Join(home, ".rulesync")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	viper.SetDefault("remote.api_base", Default.Remote.APIBase)
	viper.SetDefault("remote.ref", Default.Remote.Ref)
	viper.SetDefault("remote.timeout_seconds", Default.Remote.TimeoutSeconds)
	viper.SetDefault("remote.token_env", Default.Remote.TokenEnv)
	viper.SetDefault("rules_dir", Default.RulesDir)
	viper.SetDefault("state_path", Default.StatePath)
	viper.SetDefault("db_path", filepath.Join(configDir, Default.DBPath))
	viper.SetDefault("daemon_port", Default.DaemonPort)

	viper.SetEnvPrefix("RULESYNC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := errors.AsType[viper.ConfigFileNotFoundError](err); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Token returns the remote auth token from the configured environment
// variable, or empty for anonymous access. Never persisted.
func (c *Config) Token() string {
	return os.Getenv(c.Remote.TokenEnv)
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Remote.TimeoutSeconds) * time.Second
}

// LockPath is the advisory lock file guarding the state file.
func (c *Config) LockPath() string {
	return c.StatePath + ".lock"
}
