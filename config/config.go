// Package config loads the sidecar's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nstehr/colony/colony-core/behavior"
	"github.com/nstehr/colony/colony-core/model"
	"github.com/nstehr/colony/colony-core/rules"
)

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Listen     ListenConfig     `yaml:"listen"`
	Store      StoreConfig      `yaml:"store"`
	Journal    JournalConfig    `yaml:"journal"`
	Population rules.Population `yaml:"population"`
	Behavior   BehaviorConfig   `yaml:"behavior"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

type ListenConfig struct {
	Socket string `yaml:"socket"`
	// WSAddr enables the websocket listener when set, e.g. ":8787".
	WSAddr string `yaml:"wsAddr"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // memory, sqlite
	Path   string `yaml:"path"`
}

type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type BehaviorConfig struct {
	// Rally overrides where idle builders wait.
	Rally *model.Position `yaml:"rally,omitempty"`
}

func (b BehaviorConfig) Options() behavior.Options {
	return behavior.Options{Rally: b.Rally}
}

func Default() *Config {
	return &Config{
		Log:        LogConfig{Level: "info", Format: "text"},
		Listen:     ListenConfig{Socket: "/tmp/colony.sock"},
		Store:      StoreConfig{Driver: "sqlite", Path: "data/colony.db"},
		Journal:    JournalConfig{Enabled: true, Dir: "data/journal"},
		Population: rules.DefaultPopulation(),
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the sidecar cannot run with and clamps the
// population plan into range.
func (c *Config) Validate() error {
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (valid: text, json)", c.Log.Format)
	}
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return errors.New("sqlite store needs a path")
		}
	default:
		return fmt.Errorf("invalid store driver %q (valid: memory, sqlite)", c.Store.Driver)
	}
	if c.Journal.Enabled && c.Journal.Dir == "" {
		return errors.New("journal enabled without a directory")
	}
	if c.Listen.Socket == "" && c.Listen.WSAddr == "" {
		return errors.New("nothing to listen on")
	}
	c.Population.Validate()
	if len(c.Population.Roles) == 0 {
		return errors.New("population has no roles")
	}
	return nil
}

func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	return lvl, nil
}
