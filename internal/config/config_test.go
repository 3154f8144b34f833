package config

import (
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/spf13/pflag"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
    fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
    fs.String("address", "", "")
    fs.String("adapter", "", "")
    fs.Uint8("channel", 0, "")
    fs.Duration("timeout", 30*time.Second, "")
    fs.String("log-level", "", "")
    fs.String("log-file", "", "")
    return fs
}

func writeFile(t *testing.T, body string) string {
    t.Helper()
    path := filepath.Join(t.TempDir(), "spp.yaml")
    require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
    return path
}

func TestLoadDefaults(t *testing.T) {
    cfg, err := Load("", nil)
    require.NoError(t, err)

    assert.Empty(t, cfg.Address)
    assert.Zero(t, cfg.Channel)
    assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
    assert.Equal(t, 10, cfg.Log.MaxSizeMB)
    assert.Equal(t, 3, cfg.Log.MaxBackups)
}

func TestLoadFile(t *testing.T) {
    path := writeFile(t, `
address: "00:11:22:33:44:55"
adapter: hci1
channel: 3
connect_timeout: 5s
log:
  level: debug
  file: /tmp/spp.log
`)

    cfg, err := Load(path, nil)
    require.NoError(t, err)

    assert.Equal(t, "00:11:22:33:44:55", cfg.Address)
    assert.Equal(t, "hci1", cfg.Adapter)
    assert.Equal(t, uint8(3), cfg.Channel)
    assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
    assert.Equal(t, "debug", cfg.Log.Level)
    assert.Equal(t, "/tmp/spp.log", cfg.Log.File)

    opts := cfg.BluezOptions()
    assert.Equal(t, "hci1", opts.Adapter)
    assert.Equal(t, uint8(3), opts.Channel)
}

func TestLoadMissingFile(t *testing.T) {
    _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
    assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
    path := writeFile(t, "adapter: hci1\nlog:\n  level: info\n")
    t.Setenv("SPP_ADAPTER", "hci2")
    t.Setenv("SPP_LOG_LEVEL", "warn")
    t.Setenv("SPP_CONNECT_TIMEOUT", "2s")

    cfg, err := Load(path, nil)
    require.NoError(t, err)

    assert.Equal(t, "hci2", cfg.Adapter)
    assert.Equal(t, "warn", cfg.Log.Level)
    assert.Equal(t, 2*time.Second, cfg.ConnectTimeout)
}

func TestChangedFlagsOverrideEnv(t *testing.T) {
    t.Setenv("SPP_ADAPTER", "hci2")
    t.Setenv("SPP_CHANNEL", "4")
    fs := newFlags()
    require.NoError(t, fs.Parse([]string{"--adapter", "hci3"}))

    cfg, err := Load("", fs)
    require.NoError(t, err)

    assert.Equal(t, "hci3", cfg.Adapter)
    // Unchanged flags do not shadow the environment.
    assert.Equal(t, uint8(4), cfg.Channel)
    assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
}

func TestFlagValues(t *testing.T) {
    fs := newFlags()
    require.NoError(t, fs.Parse([]string{"--channel", "7", "--timeout", "9s", "--log-level", "error"}))

    cfg, err := Load("", fs)
    require.NoError(t, err)

    assert.Equal(t, uint8(7), cfg.Channel)
    assert.Equal(t, 9*time.Second, cfg.ConnectTimeout)
    assert.Equal(t, "error", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
    valid := func() *Config {
        return &Config{Address: "00:11:22:33:44:55", Channel: 1, ConnectTimeout: time.Second}
    }

    assert.NoError(t, valid().Validate())

    tests := map[string]func(c *Config){
        "bad address":   func(c *Config) { c.Address = "not-an-address" },
        "channel range": func(c *Config) { c.Channel = 31 },
        "zero timeout":  func(c *Config) { c.ConnectTimeout = 0 },
        "log level":     func(c *Config) { c.Log.Level = "trace" },
    }
    for name, mutate := range tests {
        t.Run(name, func(t *testing.T) {
            c := valid()
            mutate(c)
            assert.Error(t, c.Validate())
        })
    }
}
