package internal

import (
	"errors"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"
)

// Config controls runtime construction and fault handling.
type Config struct {
	// MethodCapacity is the initial capacity of class method tables, caches,
	// and child sets. It must be a power of two.
	MethodCapacity int `yaml:"method_capacity" toml:"method_capacity"`
	// InternCapacity is the initial capacity of the symbol table. It must be
	// a power of two.
	InternCapacity int `yaml:"intern_capacity" toml:"intern_capacity"`
	// MethodCache enables memoization of method lookups.
	MethodCache bool `yaml:"method_cache" toml:"method_cache"`
	// OnFault selects the fault mode.
	OnFault FaultMode `yaml:"on_fault" toml:"on_fault"`
	// Verbosity is the commonlog verbosity. 0 logs notices and above, 1 adds
	// info, and 2 adds debug output. Each step below 0 removes a level, and -4
	// silences logging.
	Verbosity int `yaml:"verbosity" toml:"verbosity"`
	// LogPath is the file log output goes to. Empty means stderr.
	LogPath string `yaml:"log_path" toml:"log_path"`
	// WarnLeaks logs a warning whenever a new object is created with no
	// collect frame to own it.
	WarnLeaks bool `yaml:"warn_leaks" toml:"warn_leaks"`
}

// ErrConfig is wrapped by configuration validation errors.
var ErrConfig = errors.New("metaobj: invalid configuration")

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		MethodCapacity: 8,
		InternCapacity: 256,
		MethodCache:    true,
		OnFault:        FaultPanic,
		Verbosity:      0,
		WarnLeaks:      true,
	}
}

// LoadConfig reads a YAML configuration. Fields not present keep their
// default values; unknown fields are an error.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	b, err := io.ReadAll(r)
	if err != nil {
		return cfg, fmt.Errorf("couldn't read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(b, &cfg); err != nil {
		return cfg, fmt.Errorf("couldn't parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadConfigTOML reads a TOML configuration with the same keys as LoadConfig.
func LoadConfigTOML(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return cfg, fmt.Errorf("couldn't parse config: %w", err)
	}
	if u := md.Undecoded(); len(u) != 0 {
		return cfg, fmt.Errorf("couldn't parse config: unknown keys %v", u)
	}
	return cfg, cfg.Validate()
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if !isPow2(c.MethodCapacity) {
		return fmt.Errorf("%w: method_capacity %d is not a positive power of two", ErrConfig, c.MethodCapacity)
	}
	if !isPow2(c.InternCapacity) {
		return fmt.Errorf("%w: intern_capacity %d is not a positive power of two", ErrConfig, c.InternCapacity)
	}
	switch c.OnFault {
	case FaultPanic, FaultExit, FaultAbort:
	default:
		return fmt.Errorf("%w: unknown on_fault mode %q", ErrConfig, c.OnFault)
	}
	return nil
}

func isPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
