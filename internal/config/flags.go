package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// ApplyFlags binds command line flags onto config keys (key -> flag name) and
// re-reads the configuration. Flags only win when set on the command line.
func (c *Config) ApplyFlags(fs *pflag.FlagSet, keys map[string]string) error {
	if c.v == nil {
		return fmt.Errorf("config has no backing store")
	}
	for key, name := range keys {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("unknown flag %q for %s", name, key)
		}
		if err := c.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("error binding flag %s: %w", name, err)
		}
	}
	if err := c.v.Unmarshal(c); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}
	c.MCU.ResolveInterval = ValidateResolveInterval(c.MCU.ResolveInterval)
	c.MCU.QueueSize = ValidateQueueSize(c.MCU.QueueSize)
	return nil
}
