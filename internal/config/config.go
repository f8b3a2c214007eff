package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/charlesng35/remotefs/pkg/session"
)

// Config represents the runtime configuration for the remotefs client.
type Config struct {
	Host     string             `mapstructure:"host"`
	Port     int                `mapstructure:"port"`
	Username string             `mapstructure:"username"`
	Auth     session.AuthConfig `mapstructure:"auth"`
	HostKeys HostKeyConfig      `mapstructure:"host_keys"`
	Client   ClientConfig       `mapstructure:"client"`
	LogLevel string             `mapstructure:"log_level"`
}

// HostKeyConfig controls server identity verification.
type HostKeyConfig struct {
	KnownHostsPath     string `mapstructure:"known_hosts_path"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
}

// ClientConfig tunes session and transfer behaviour.
type ClientConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	BufferSize        int           `mapstructure:"buffer_size"`
	DisconnectMessage string        `mapstructure:"disconnect_message"`
}

// Load initialises configuration using Viper with sensible defaults. Values
// come from config.yaml in ./config or any of the extra paths, overridden by
// REMOTEFS_* environment variables. Validation is the caller's to invoke,
// after any command-line overrides have been applied.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("REMOTEFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

// Validate checks that the configuration can produce a working session.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("config: host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if c.Username == "" {
		return errors.New("config: username is required")
	}
	if c.Auth.Method == "" {
		return errors.New("config: auth method is required")
	}
	if c.Client.BufferSize < 0 {
		return fmt.Errorf("config: invalid buffer size %d", c.Client.BufferSize)
	}
	return nil
}

// Address returns the host:port endpoint to dial.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Every key gets a default so environment overrides are always picked up,
// even for keys absent from the config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "")
	v.SetDefault("port", 22)
	v.SetDefault("username", "")
	v.SetDefault("log_level", "info")

	v.SetDefault("auth.method", "agent")
	v.SetDefault("auth.password", "")
	v.SetDefault("auth.private_key_path", "")
	v.SetDefault("auth.passphrase", "")

	v.SetDefault("host_keys.known_hosts_path", "")
	v.SetDefault("host_keys.insecure_skip_verify", false)

	v.SetDefault("client.timeout", "30s")
	v.SetDefault("client.buffer_size", 32*1024)
	v.SetDefault("client.disconnect_message", "")
}
