package config

import "time"

// Common constants shared between daemon and client
const (
	// ConfigDirName is the name of the config directory within XDG_CONFIG_HOME
	ConfigDirName = "lightsd"

	// DaemonConfigFilename is the base filename for daemon config
	DaemonConfigFilename = "lightsd.yaml"

	// ClientConfigFilename is the base filename for client config
	ClientConfigFilename = "lightsctl.yaml"

	// SocketFilename is the base filename for the Unix socket
	SocketFilename = "lightsd.sock"
	// SocketEnv overrides the default socket path
	SocketEnv = "LIGHTSD_SOCKET"

	SystemRuntimeDir = "/run/lightsd"
	SystemConfigDir  = "/etc/lightsd"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "LIGHTSD"
)

// MCU link defaults. The MCU listens on a fixed loopback port and the daemon
// sends from a fixed local port.
const (
	DefaultMCULocalAddress = "127.0.0.1"
	DefaultMCULocalPort    = 9061
	DefaultMCUPeerHost     = "127.0.0.1"
	DefaultMCUPeerPort     = 9010

	// DefaultResolveInterval is the fixed backoff between peer resolution attempts
	DefaultResolveInterval = 1 * time.Second

	// DefaultResolveMaxAttempts of zero retries forever
	DefaultResolveMaxAttempts = 0

	// DefaultMCUQueueSize is the number of frames buffered ahead of the writer
	DefaultMCUQueueSize = 16

	// MinResolveInterval keeps a misconfigured retry loop from spinning
	MinResolveInterval = 10 * time.Millisecond
)

// Hardware backends
const (
	HardwareBackendNoop  = "noop"
	HardwareBackendSysfs = "sysfs"

	// DefaultSysfsRoot is the Linux LED class directory
	DefaultSysfsRoot = "/sys/class/leds"
)

// API defaults
const (
	// DefaultAPIRateLimit is requests per minute per client IP
	DefaultAPIRateLimit = 120
)

// Light constraints
const (
	// MinBrightness is the minimum allowed brightness value
	MinBrightness = 0

	// MaxBrightness is the maximum allowed brightness value
	MaxBrightness = 255
)

// Logging constants
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	LogFormatText = "text"
	LogFormatJSON = "json"
	// LogFormatJournal sends records to the systemd journal, falling back to text
	LogFormatJournal = "journal"
)
