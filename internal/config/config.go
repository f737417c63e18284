package config

import (
	"os"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/docker/go-units"
	"github.com/trim21/errgo"
)

type Application struct {
	Workers       int    `toml:"workers"`
	BufferSize    string `toml:"buffer-size"`
	RateLimit     string `toml:"rate-limit"`
	SmallFileSize string `toml:"small-file-size"`
	Preallocate   bool   `toml:"preallocate"`
	PreserveTimes bool   `toml:"preserve-times"`
	PreservePerms bool   `toml:"preserve-perms"`
}

type Config struct {
	App Application `toml:"application"`

	// resolved from the human-readable strings above
	BufferSize    int64 `toml:"-"`
	RateLimit     int64 `toml:"-"`
	SmallFileSize int64 `toml:"-"`
}

func Default() Config {
	return Config{
		App: Application{
			Workers:       min(runtime.GOMAXPROCS(0), 8),
			BufferSize:    "4MiB",
			SmallFileSize: "256KiB",
			Preallocate:   true,
			PreserveTimes: true,
			PreservePerms: true,
		},
	}
}

// LoadFromFile reads path on top of the defaults. A missing file is not an
// error, the defaults stand.
func LoadFromFile(path string) (Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !os.IsNotExist(err) {
			return cfg, errgo.Wrap(err, "failed to parse config file")
		}
	}

	return resolve(cfg)
}

func resolve(cfg Config) (Config, error) {
	var err error

	cfg.BufferSize, err = units.RAMInBytes(cfg.App.BufferSize)
	if err != nil {
		return cfg, errgo.Wrap(err, "invalid buffer-size")
	}

	cfg.SmallFileSize, err = units.RAMInBytes(cfg.App.SmallFileSize)
	if err != nil {
		return cfg, errgo.Wrap(err, "invalid small-file-size")
	}

	if cfg.App.RateLimit != "" {
		cfg.RateLimit, err = units.RAMInBytes(cfg.App.RateLimit)
		if err != nil {
			return cfg, errgo.Wrap(err, "invalid rate-limit")
		}
	}

	if cfg.App.Workers <= 0 {
		cfg.App.Workers = min(runtime.GOMAXPROCS(0), 8)
	}

	return cfg, nil
}
