package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/robdd/pkg/errors"
	"github.com/matzehuels/robdd/pkg/pipeline"
)

// Config is the content of the TOML configuration file. Command-line flags
// override every value.
//
//	[cache]
//	dir = "/var/cache/robdd"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[render]
//	formats = ["svg", "json"]
//	detailed = false
//
//	[experiment]
//	samples = 10000
//	seed = 42
//	workers = 8
//	records = "experiments.txt"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_db = "robdd"
//
//	[server]
//	addr = ":8080"
type Config struct {
	Cache      CacheConfig      `toml:"cache"`
	Render     RenderConfig     `toml:"render"`
	Experiment ExperimentConfig `toml:"experiment"`
	Server     ServerConfig     `toml:"server"`
}

// CacheConfig selects and tunes the cache backend.
type CacheConfig struct {
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	TTL       duration `toml:"ttl"`
}

// RenderConfig holds default output settings.
type RenderConfig struct {
	Formats  []string `toml:"formats"`
	Detailed bool     `toml:"detailed"`
}

// ExperimentConfig holds defaults for the experiment command.
type ExperimentConfig struct {
	Samples  int    `toml:"samples"`
	Seed     uint64 `toml:"seed"`
	Workers  int    `toml:"workers"`
	Records  string `toml:"records"`
	MongoURI string `toml:"mongo_uri"`
	MongoDB  string `toml:"mongo_db"`
}

// ServerConfig holds defaults for the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// duration decodes TOML strings such as "90m" into a time.Duration.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// configPath returns the default config file location using XDG standard
// (~/.config/robdd/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads the config file at path. An empty path means the default
// location, where a missing file yields the zero Config; an explicitly named
// file must exist.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return &Config{}, nil
		}
		path = p
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.formats")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if c.Experiment.Samples < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "experiment.samples must not be negative")
	}
	if c.Experiment.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "experiment.workers must not be negative")
	}
	return nil
}
