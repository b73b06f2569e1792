package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-satatarget/internal/types"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"512", 512, false},
		{"512B", 512, false},
		{"2048S", 2048 * 512, false},
		{"4KB", 4096, false},
		{"64MB", 64 << 20, false},
		{"64MiB", 64 << 20, false},
		{" 10 mb ", 10 << 20, false},
		{"1.5GB", 3 << 29, false},
		{"1TB", 1 << 40, false},
		{"", 0, true},
		{"MB", 0, true},
		{"10XB", 0, true},
		{"1.2.3MB", 0, true},
		{"99999999999TB", 0, true},
		{"99999999.5TB", 0, true},
		{"16777215.5TB", 16777215<<40 + 1<<39, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "64MB", FormatSize(64<<20))
	assert.Equal(t, "1536KB", FormatSize(1536<<10))
	assert.Equal(t, "513B", FormatSize(513))
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, _, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "64MB", cfg.Capacity)
	assert.Equal(t, types.DefaultQueueDepth, cfg.QueueDepth)
	assert.Equal(t, 128, cfg.MaxSegments)
	assert.Equal(t, types.DefaultMaxOrder, cfg.MaxOrder)
	assert.EqualValues(t, types.DefaultReserveMB, cfg.ReserveMB)
	assert.Equal(t, AllocatorHeap, cfg.Allocator)
	assert.True(t, cfg.WriteCache)

	sectors, err := cfg.CapacitySectors()
	require.NoError(t, err)
	assert.EqualValues(t, 131072, sectors)
	assert.EqualValues(t, 256<<20, cfg.ReserveBytes())
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "satatarget.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
capacity: 8MB
queue_depth: 4
max_segments: 16
allocator: heap
write_cache: false
model: FILE MODEL
`), 0o644))

	t.Setenv("SATATARGET_MAX_ORDER", "3")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("queue-depth", 32, "")
	flags.String("capacity", "64MB", "")
	require.NoError(t, flags.Parse([]string{"--queue-depth=8"}))

	cfg, v, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "8MB", cfg.Capacity, "unset flag does not override the file")
	assert.Equal(t, 8, cfg.QueueDepth, "explicit flag wins")
	assert.Equal(t, 16, cfg.MaxSegments)
	assert.Equal(t, 3, cfg.MaxOrder, "environment overrides default")
	assert.False(t, cfg.WriteCache)
	assert.Equal(t, "FILE MODEL", cfg.Model)
	assert.Equal(t, path, v.ConfigFileUsed())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{Capacity: "1MB", QueueDepth: 4, MaxSegments: 8, MaxOrder: 5, Allocator: AllocatorHeap}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad capacity", func(c *Config) { c.Capacity = "lots" }},
		{"sub-sector capacity", func(c *Config) { c.Capacity = "100B" }},
		{"zero depth", func(c *Config) { c.QueueDepth = 0 }},
		{"deep queue", func(c *Config) { c.QueueDepth = 33 }},
		{"no segments", func(c *Config) { c.MaxSegments = 0 }},
		{"negative order", func(c *Config) { c.MaxOrder = -1 }},
		{"huge order", func(c *Config) { c.MaxOrder = 11 }},
		{"unknown allocator", func(c *Config) { c.Allocator = "slab" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrConfiguration))
		})
	}
}

func TestKeysMatchDefaults(t *testing.T) {
	assert.ElementsMatch(t, Keys(), New().AllKeys())
}
