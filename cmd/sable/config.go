package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// config carries optional defaults read from sable.toml in the
// working directory.
type config struct {
	Verbose bool `toml:"verbose"`
	Jobs    int  `toml:"jobs"`
}

// loadConfig reads sable.toml when present; a missing file is not an
// error.
func loadConfig() (config, error) {
	var cfg config
	if _, err := os.Stat("sable.toml"); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if _, err := toml.DecodeFile("sable.toml", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
