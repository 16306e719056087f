package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the daemon configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	API      APIConfig      `mapstructure:"api"`
	MCU      MCUConfig      `mapstructure:"mcu"`
	Hardware HardwareConfig `mapstructure:"hardware"`
	Logging  LoggingConfig  `mapstructure:"logging"`

	v    *viper.Viper
	path string
}

// ServerConfig represents the unix socket server configuration
type ServerConfig struct {
	UnixSocket string `mapstructure:"unix_socket"`
}

// APIConfig configures the optional HTTP API. An empty ListenAddress disables it.
type APIConfig struct {
	ListenAddress string `mapstructure:"listen_address"`
	RateLimit     int    `mapstructure:"rate_limit"`
}

// MCUConfig describes the datagram link to the dimming MCU
type MCUConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	LocalAddress       string        `mapstructure:"local_address"`
	LocalPort          int           `mapstructure:"local_port"`
	PeerHost           string        `mapstructure:"peer_host"`
	PeerPort           int           `mapstructure:"peer_port"`
	ResolveInterval    time.Duration `mapstructure:"resolve_interval"`
	ResolveMaxAttempts int           `mapstructure:"resolve_max_attempts"`
	QueueSize          int           `mapstructure:"queue_size"`
}

// HardwareConfig selects the backend that applies light state
type HardwareConfig struct {
	Backend   string            `mapstructure:"backend"`
	SysfsRoot string            `mapstructure:"sysfs_root"`
	LEDs      map[string]string `mapstructure:"leds"`
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.unix_socket", GetRuntimeSocketPath())

	v.SetDefault("api.listen_address", "")
	v.SetDefault("api.rate_limit", DefaultAPIRateLimit)

	v.SetDefault("mcu.enabled", true)
	v.SetDefault("mcu.local_address", DefaultMCULocalAddress)
	v.SetDefault("mcu.local_port", DefaultMCULocalPort)
	v.SetDefault("mcu.peer_host", DefaultMCUPeerHost)
	v.SetDefault("mcu.peer_port", DefaultMCUPeerPort)
	v.SetDefault("mcu.resolve_interval", DefaultResolveInterval)
	v.SetDefault("mcu.resolve_max_attempts", DefaultResolveMaxAttempts)
	v.SetDefault("mcu.queue_size", DefaultMCUQueueSize)

	v.SetDefault("hardware.backend", HardwareBackendNoop)
	v.SetDefault("hardware.sysfs_root", DefaultSysfsRoot)
	v.SetDefault("hardware.leds", map[string]string{})

	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("logging.format", LogFormatText)
}

// Load loads configuration from a file and environment variables.
// If configFile is empty the file is looked up in the XDG config directory.
// A missing file is not an error; a malformed one is.
func Load(configName, configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	path := configFile
	if path == "" {
		path = GetConfigPath(configName)
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
		slog.Debug("No config file found, using defaults", "path", path)
	} else {
		slog.Info("Using config file", "path", path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{v: v, path: path}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.MCU.ResolveInterval = ValidateResolveInterval(cfg.MCU.ResolveInterval)
	cfg.MCU.QueueSize = ValidateQueueSize(cfg.MCU.QueueSize)

	return cfg, nil
}

// Path returns the file this configuration is read from and saved to
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration back to its file, creating the directory if needed
func (c *Config) Save() error {
	if c.v == nil {
		return fmt.Errorf("config has no backing store")
	}
	path := c.path
	if path == "" {
		path = GetDaemonConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	c.v.SetConfigFile(path)
	c.v.Set("server.unix_socket", c.Server.UnixSocket)
	c.v.Set("api.listen_address", c.API.ListenAddress)
	c.v.Set("api.rate_limit", c.API.RateLimit)
	c.v.Set("mcu.enabled", c.MCU.Enabled)
	c.v.Set("mcu.local_address", c.MCU.LocalAddress)
	c.v.Set("mcu.local_port", c.MCU.LocalPort)
	c.v.Set("mcu.peer_host", c.MCU.PeerHost)
	c.v.Set("mcu.peer_port", c.MCU.PeerPort)
	c.v.Set("mcu.resolve_interval", c.MCU.ResolveInterval.String())
	c.v.Set("mcu.resolve_max_attempts", c.MCU.ResolveMaxAttempts)
	c.v.Set("mcu.queue_size", c.MCU.QueueSize)
	c.v.Set("hardware.backend", c.Hardware.Backend)
	c.v.Set("hardware.sysfs_root", c.Hardware.SysfsRoot)
	c.v.Set("hardware.leds", c.Hardware.LEDs)
	c.v.Set("logging.level", c.Logging.Level)
	c.v.Set("logging.format", c.Logging.Format)

	if err := c.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	c.path = path

	slog.Info("Configuration saved", "path", path)
	return nil
}
