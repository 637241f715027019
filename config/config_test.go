package config

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestNewConfig_WithNilOverride tests that NewConfig creates a config with all default values
// when no override is provided.
func TestNewConfig_WithNilOverride(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(nil)

	require.NotNil(t, cfg)
	assert.Equal(t, createDefaultCfg(), cfg, "must use default values when no config provided")
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig_WithAllOverride(t *testing.T) {
	t.Parallel()

	override := createOverride()
	cfg := NewConfig(override)

	expCfg := &Config{
		Name:     "test_fs",
		LogLvl:   util.VerboseToLevel(*override.LogLvl),
		RootPerm: memfs.Read,
		DirPerm:  memfs.Write,
		FirstFD:  0,
		MaxFDs:   16,

		MaxFileSize: 4096,
	}
	require.NotNil(t, cfg)
	assert.Equal(t, expCfg, cfg, "must override all provided fields")
}

func TestConfig_Merge_LogLvlConversion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		verboseValue  int
		expectedLevel util.LogLevel
	}{
		{"verbose_1_error", ErrorVerbose, util.ErrorLevel},
		{"verbose_2_warn", WarnVerbose, util.WarnLevel},
		{"verbose_3_info", InfoVerbose, util.InfoLevel},
		{"verbose_4_debug", DebugVerbose, util.DebugLevel},
		{"verbose_5_trace", TraceVerbose, util.TraceLevel},
		{"verbose_0_clamped_to_1", 0, util.ErrorLevel},
		{"verbose_100_clamped_to_5", 100, util.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			override := &ConfigOverride{
				LogLvl: &tt.verboseValue,
			}

			cfg := NewConfig(override)

			assert.Equal(t, tt.expectedLevel, cfg.LogLvl,
				"verbose %d should map to util.LogLevel %v", tt.verboseValue, tt.expectedLevel)
		})
	}
}

func TestConfig_Merge_PartialOverride(t *testing.T) {
	t.Parallel()

	override := &ConfigOverride{
		Name:    util.Pointer("partial"),
		DirPerm: util.Pointer(memfs.Read),
	}
	cfg := NewConfig(override)

	expCfg := createDefaultCfg()
	expCfg.Name = "partial"
	expCfg.DirPerm = memfs.Read

	assert.Equal(t, expCfg, cfg, "must override all provided fields and leave rest default")
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero root perm", func(c *Config) { c.RootPerm = 0 }},
		{"bogus dir perm", func(c *Config) { c.DirPerm = 7 }},
		{"negative first fd", func(c *Config) { c.FirstFD = -1 }},
		{"no descriptors", func(c *Config) { c.MaxFDs = 0 }},
		{"negative file size", func(c *Config) { c.MaxFileSize = -1 }},
		{"file size past limit", func(c *Config) { c.MaxFileSize = MaxFileSizeLimit + 1 }},
		{"file size max int64", func(c *Config) { c.MaxFileSize = math.MaxInt64 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigOverrideFile_Valid(t *testing.T) {
	t.Parallel()

	type tc struct {
		ext   string
		build func() (*ConfigOverride, []byte)
	}

	cases := []tc{
		{
			ext: ".yaml",
			build: func() (*ConfigOverride, []byte) {
				o := createOverride()
				b, err := yaml.Marshal(o)
				require.NoError(t, err)
				return o, b
			},
		},
		{
			ext: ".yml",
			build: func() (*ConfigOverride, []byte) {
				o := createOverride()
				b, err := yaml.Marshal(o)
				require.NoError(t, err)
				return o, b
			},
		},
		{
			ext: ".json",
			build: func() (*ConfigOverride, []byte) {
				o := createOverride()
				b, err := json.Marshal(o)
				require.NoError(t, err)
				return o, b
			},
		},
	}

	for _, c := range cases {
		name := "valid" + c.ext
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			override, data := c.build()
			dir := t.TempDir()
			path := filepath.Join(dir, "override"+c.ext)
			require.NoError(t, os.WriteFile(path, data, 0o600))

			loaded, err := LoadConfigOverrideFile(path)

			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, *override, *loaded)
		})
	}
}

func TestLoadConfigOverrideFile_HandWrittenYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "memfs.yaml")
	data := []byte("name: fixture\nroot_perm: read\ndir_perm: rw\nmax_fds: 8\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := NewConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "fixture", cfg.Name)
	assert.Equal(t, memfs.Read, cfg.RootPerm)
	assert.Equal(t, memfs.ReadWrite, cfg.DirPerm)
	assert.Equal(t, 8, cfg.MaxFDs)
	assert.Equal(t, DefaultFirstFD, cfg.FirstFD)
}

func TestLoadConfigOverrideFile_BadPermission(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "memfs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"dir_perm":"execute"}`), 0o600))

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, memfs.ErrInvalidPermission)
}

// TestLoadConfigOverrideFile_NonExistentFile tests error handling
// when trying to load a file that doesn't exist.
func TestLoadConfigOverrideFile_NonExistentFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "does_not_exist.yaml")

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err), "expected not exist error, got %v", err)
}

// TestLoadConfigOverrideFile_UnsupportedExtension tests error handling
// for file extensions that aren't supported (.txt, .xml, etc).
func TestLoadConfigOverrideFile_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "override.txt")
	require.NoError(t, os.WriteFile(path, []byte("name: x"), 0o600))

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config file extension")
}

func TestNewConfigFromFile_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_fds: 0\n"), 0o600))

	_, err := NewConfigFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_fds")
}

func createDefaultCfg() *Config {
	return &Config{
		Name:     DefaultName,
		LogLvl:   DefaultLogLvl,
		RootPerm: DefaultRootPerm,
		DirPerm:  DefaultDirPerm,
		FirstFD:  DefaultFirstFD,
		MaxFDs:   DefaultMaxFDs,

		MaxFileSize: DefaultMaxFileSize,
	}
}

// createOverride makes a ConfigOverride with all non-default values
func createOverride() *ConfigOverride {
	return &ConfigOverride{
		Name:     util.Pointer("test_fs"),
		LogLvl:   util.Pointer(TraceVerbose),
		RootPerm: util.Pointer(memfs.Read),
		DirPerm:  util.Pointer(memfs.Write),
		FirstFD:  util.Pointer(0),
		MaxFDs:   util.Pointer(16),

		MaxFileSize: util.Pointer(int64(4096)),
	}
}
