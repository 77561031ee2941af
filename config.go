package metaobj

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zephyrtronium/metaobj/internal"
)

// LoadConfig reads a YAML configuration. Fields not present keep their
// default values.
func LoadConfig(r io.Reader) (Config, error) {
	return internal.LoadConfig(r)
}

// LoadConfigTOML reads a TOML configuration. Fields not present keep their
// default values.
func LoadConfigTOML(r io.Reader) (Config, error) {
	return internal.LoadConfigTOML(r)
}

// LoadConfigFile reads a configuration from the named file. Files ending in
// .toml are TOML; anything else is YAML.
func LoadConfigFile(name string) (Config, error) {
	f, err := os.Open(name)
	if err != nil {
		return DefaultConfig(), err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(name), ".toml") {
		return LoadConfigTOML(f)
	}
	return LoadConfig(f)
}
