package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// parseFile overlays c with values from a TOML file. Keys absent from the
// file keep their current values.
//
// With an empty path the default location is tried and a missing file is
// not an error; an explicitly given path must exist.
func (c *Config) parseFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(DefaultDir(), "config.toml")
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}

	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
