package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/internal/util"
	"gopkg.in/yaml.v3"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultName   = "memfs"
	DefaultLogLvl = util.InfoLevel

	DefaultRootPerm = memfs.ReadWrite
	DefaultDirPerm  = memfs.ReadWrite

	// DefaultFirstFD leaves 0-2 free so descriptor ids never look like stdio
	DefaultFirstFD = 3

	// Uses 31 bits to stay within a signed 32-bit descriptor, matching what
	// C callers and FUSE file handles can carry.
	DefaultMaxFDs = (1 << 31) - 1

	// DefaultMaxFileSize caps a single file's content at 1GiB
	DefaultMaxFileSize = 1 << 30

	// MaxFileSizeLimit is the largest MaxFileSize accepted by [Config.Validate]
	MaxFileSizeLimit = math.MaxInt32
)

// Verbosity values accepted by ConfigOverride.LogLvl
const (
	ErrorVerbose = iota + util.MinVerbose
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Config contains runtime configuration values for a filesystem instance.
type Config struct {
	Name     string           // Instance name used in log output (Default "memfs")
	LogLvl   util.LogLevel    // Log level (Default info)
	RootPerm memfs.Permission // Permission given to the root folder at mount (Default rw)
	DirPerm  memfs.Permission // Permission given to every folder made by Mkdir (Default rw)
	FirstFD  int              // Lowest descriptor id handed out (Default 3)
	MaxFDs   int              // Maximum simultaneously open descriptors (Default 2147483647)

	// Largest content a file may grow to, in bytes (Default 1GiB)
	MaxFileSize int64
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	Name *string `yaml:"name,omitempty" json:"name,omitempty"`

	// Log verbosity between 1 (error) and 5 (trace); clamped when merged
	LogLvl   *int              `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	RootPerm *memfs.Permission `yaml:"root_perm,omitempty" json:"root_perm,omitempty"`
	DirPerm  *memfs.Permission `yaml:"dir_perm,omitempty" json:"dir_perm,omitempty"`
	FirstFD  *int              `yaml:"first_fd,omitempty" json:"first_fd,omitempty"`
	MaxFDs   *int              `yaml:"max_fds,omitempty" json:"max_fds,omitempty"`

	MaxFileSize *int64 `yaml:"max_file_size,omitempty" json:"max_file_size,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
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

// NewConfig returns the defaults with override applied; override may be nil.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.Name != nil {
		c.Name = *override.Name
	}
	if override.LogLvl != nil {
		c.LogLvl = util.VerboseToLevel(*override.LogLvl)
	}
	if override.RootPerm != nil {
		c.RootPerm = *override.RootPerm
	}
	if override.DirPerm != nil {
		c.DirPerm = *override.DirPerm
	}
	if override.FirstFD != nil {
		c.FirstFD = *override.FirstFD
	}
	if override.MaxFDs != nil {
		c.MaxFDs = *override.MaxFDs
	}
	if override.MaxFileSize != nil {
		c.MaxFileSize = *override.MaxFileSize
	}
}

// Validate reports the first field holding a value a filesystem cannot run with.
func (c *Config) Validate() error {
	if !c.RootPerm.Valid() {
		return fmt.Errorf("root_perm: %w: %d", memfs.ErrInvalidPermission, c.RootPerm)
	}
	if !c.DirPerm.Valid() {
		return fmt.Errorf("dir_perm: %w: %d", memfs.ErrInvalidPermission, c.DirPerm)
	}
	if c.FirstFD < 0 {
		return fmt.Errorf("first_fd must not be negative, got %d", c.FirstFD)
	}
	if c.MaxFDs < 1 {
		return fmt.Errorf("max_fds must be at least 1, got %d", c.MaxFDs)
	}
	if c.MaxFileSize < 0 || c.MaxFileSize > MaxFileSizeLimit {
		return fmt.Errorf("max_file_size must be between 0 and %d, got %d", MaxFileSizeLimit, c.MaxFileSize)
	}
	return nil
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// The merged result is validated.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg := NewConfig(override)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}
