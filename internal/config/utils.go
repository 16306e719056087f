package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// GetRuntimeDir returns the XDG runtime directory
func GetRuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return filepath.Join("/run/user", strconv.Itoa(os.Getuid()))
}

// GetRuntimeSocketPath returns the unix socket path. LIGHTSD_SOCKET wins,
// then the first existing socket of the user and system service, then the
// user path.
func GetRuntimeSocketPath() string {
	if p := os.Getenv(SocketEnv); p != "" {
		return p
	}
	candidates := []string{
		filepath.Join(GetRuntimeDir(), SocketFilename),
		filepath.Join(SystemRuntimeDir, SocketFilename),
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return candidates[0]
}

// GetConfigBaseDir returns the base directory for configuration files
func GetConfigBaseDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		// the system unit points XDG_CONFIG_HOME at the config dir itself
		if dir == SystemConfigDir {
			return dir
		}
		return filepath.Join(dir, ConfigDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", ConfigDirName)
}

// GetConfigPath returns the full path to a configuration file
func GetConfigPath(filename string) string {
	return filepath.Join(GetConfigBaseDir(), filename)
}

// GetDaemonConfigPath returns the full path to the daemon configuration file
func GetDaemonConfigPath() string {
	return GetConfigPath(DaemonConfigFilename)
}

// GetClientConfigPath returns the full path to the client configuration file
func GetClientConfigPath() string {
	return GetConfigPath(ClientConfigFilename)
}

// ValidateResolveInterval clamps the MCU resolve backoff to MinResolveInterval
func ValidateResolveInterval(d time.Duration) time.Duration {
	if d < MinResolveInterval {
		return MinResolveInterval
	}
	return d
}

// ValidateQueueSize returns a usable frame queue size
func ValidateQueueSize(n int) int {
	if n <= 0 {
		return DefaultMCUQueueSize
	}
	return n
}
