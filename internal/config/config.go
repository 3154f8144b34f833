// Package config loads CLI settings from flags, SPP_* environment variables
// and an optional YAML file, in that order of precedence.
package config

import (
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/spf13/pflag"
    "github.com/spf13/viper"

    "bluetooth-spp/internal/bluez"
)

// EnvPrefix prefixes every environment variable, e.g. SPP_ADDRESS.
const EnvPrefix = "SPP"

// maxChannel is the highest valid RFCOMM server channel.
const maxChannel = 30

type Config struct {
    Address        string        `mapstructure:"address"`
    Adapter        string        `mapstructure:"adapter"`
    Channel        uint8         `mapstructure:"channel"`
    ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
    Log            LogConfig     `mapstructure:"log"`
}

type LogConfig struct {
    Level      string `mapstructure:"level"`
    File       string `mapstructure:"file"`
    MaxSizeMB  int    `mapstructure:"max_size_mb"`
    MaxBackups int    `mapstructure:"max_backups"`
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
    "address":   "address",
    "adapter":   "adapter",
    "channel":   "channel",
    "timeout":   "connect_timeout",
    "log-level": "log.level",
    "log-file":  "log.file",
}

func setDefaults(v *viper.Viper) {
    v.SetDefault("address", "")
    v.SetDefault("adapter", "")
    v.SetDefault("channel", 0)
    v.SetDefault("connect_timeout", 30*time.Second)
    v.SetDefault("log.level", "")
    v.SetDefault("log.file", "")
    v.SetDefault("log.max_size_mb", 10)
    v.SetDefault("log.max_backups", 3)
}

// Load builds a Config. path may be empty; flags may be nil. Only flags the
// user actually set override the environment and the file.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
    v := viper.New()
    setDefaults(v)

    v.SetEnvPrefix(EnvPrefix)
    v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
    v.AutomaticEnv()

    if path != "" {
        v.SetConfigFile(path)
        if err := v.ReadInConfig(); err != nil {
            return nil, fmt.Errorf("config: read %s: %w", path, err)
        }
    }

    if flags != nil {
        for name, key := range flagKeys {
            f := flags.Lookup(name)
            if f == nil {
                continue
            }
            if err := v.BindPFlag(key, f); err != nil {
                return nil, fmt.Errorf("config: bind flag %s: %w", name, err)
            }
        }
    }

    var cfg Config
    if err := v.Unmarshal(&cfg); err != nil {
        return nil, fmt.Errorf("config: decode: %w", err)
    }
    if err := cfg.Validate(); err != nil {
        return nil, err
    }
    return &cfg, nil
}

// Validate checks the values Load cannot type-check.
func (c *Config) Validate() error {
    if c.Address != "" {
        if _, err := bluez.ParseAddress(c.Address); err != nil {
            return fmt.Errorf("config: address: %w", err)
        }
    }
    if c.Channel > maxChannel {
        return fmt.Errorf("config: channel %d out of range 1-%d", c.Channel, maxChannel)
    }
    if c.ConnectTimeout <= 0 {
        return errors.New("config: connect_timeout must be positive")
    }
    switch c.Log.Level {
    case "", "debug", "info", "warn", "error":
    default:
        return fmt.Errorf("config: invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
    }
    return nil
}

// BluezOptions returns the backend options for this configuration.
func (c *Config) BluezOptions() bluez.Options {
    return bluez.Options{Adapter: c.Adapter, Channel: c.Channel}
}
