// Package config loads the target configuration from file, environment
// and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-satatarget/internal/identity"
	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// Allocator names.
const (
	AllocatorHeap = "heap"
	AllocatorMmap = "mmap"
)

// Config holds the device and tool configuration.
type Config struct {
	Capacity    string `mapstructure:"capacity"`
	QueueDepth  int    `mapstructure:"queue_depth"`
	MaxSegments int    `mapstructure:"max_segments"`
	MaxOrder    int    `mapstructure:"max_order"`
	ReserveMB   uint64 `mapstructure:"reserve_mb"`
	Allocator   string `mapstructure:"allocator"`
	WriteCache  bool   `mapstructure:"write_cache"`
	Serial      string `mapstructure:"serial"`
	Firmware    string `mapstructure:"firmware"`
	Model       string `mapstructure:"model"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"capacity":     "capacity",
	"queue-depth":  "queue_depth",
	"max-segments": "max_segments",
	"max-order":    "max_order",
	"reserve-mb":   "reserve_mb",
	"allocator":    "allocator",
	"write-cache":  "write_cache",
	"serial":       "serial",
	"firmware":     "firmware",
	"model":        "model",
	"log-level":    "log_level",
	"log-format":   "log_format",
}

// Keys returns every configuration key in display order.
func Keys() []string {
	return []string{
		"capacity", "queue_depth", "max_segments", "max_order", "reserve_mb", "allocator",
		"write_cache", "serial", "firmware", "model", "log_level", "log_format",
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("capacity", "64MB")
	v.SetDefault("queue_depth", types.DefaultQueueDepth)
	v.SetDefault("max_segments", 128)
	v.SetDefault("max_order", types.DefaultMaxOrder)
	v.SetDefault("reserve_mb", types.DefaultReserveMB)
	v.SetDefault("allocator", AllocatorHeap)
	v.SetDefault("write_cache", true)
	v.SetDefault("serial", identity.DefaultSerial)
	v.SetDefault("firmware", identity.DefaultFirmware)
	v.SetDefault("model", identity.DefaultModel)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
}

// New returns a viper instance with defaults, search paths and
// environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("satatarget")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.satatarget")
	v.AddConfigPath("/etc/satatarget")

	setDefaults(v)

	v.SetEnvPrefix("SATATARGET")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration. An empty path searches the default
// locations, where a missing file is not an error. Flags that were set
// explicitly override file and environment values.
func Load(path string, flags *pflag.FlagSet) (*Config, *viper.Viper, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return &cfg, v, nil
}

// Validate checks the configuration for values the target cannot use.
func (c *Config) Validate() error {
	const op = "config.validate"
	if _, err := c.CapacitySectors(); err != nil {
		return types.NewError(types.KindConfiguration, op, err)
	}
	if c.QueueDepth < 1 || c.QueueDepth > types.MaxQueueDepth {
		return types.Errorf(types.KindConfiguration, op, "queue_depth %d outside [1, %d]", c.QueueDepth, types.MaxQueueDepth)
	}
	if c.MaxSegments < 1 {
		return types.Errorf(types.KindConfiguration, op, "max_segments must be positive, got %d", c.MaxSegments)
	}
	if c.MaxOrder < 0 || c.MaxOrder > types.MaxOrderLimit {
		return types.Errorf(types.KindConfiguration, op, "max_order %d outside [0, %d]", c.MaxOrder, types.MaxOrderLimit)
	}
	switch c.Allocator {
	case AllocatorHeap, AllocatorMmap:
	default:
		return types.Errorf(types.KindConfiguration, op, "unknown allocator %q (valid: %s, %s)", c.Allocator, AllocatorHeap, AllocatorMmap)
	}
	return nil
}

// CapacitySectors returns the configured capacity in whole sectors.
func (c *Config) CapacitySectors() (uint64, error) {
	bytes, err := ParseSize(c.Capacity)
	if err != nil {
		return 0, fmt.Errorf("capacity: %w", err)
	}
	sectors := bytes / types.SectorSize
	if sectors == 0 {
		return 0, fmt.Errorf("capacity %q is smaller than one sector", c.Capacity)
	}
	return sectors, nil
}

// ReserveBytes returns the reserve-memory threshold in bytes.
func (c *Config) ReserveBytes() uint64 {
	return c.ReserveMB << 20
}
