package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultPath is read when SCENEFORGE_CONFIG is unset.
const DefaultPath = "config/sceneforge.toml"

// EnvPath names the environment variable that overrides DefaultPath.
const EnvPath = "SCENEFORGE_CONFIG"

type Config struct {
	Loop      LoopConfig      `toml:"loop"`
	Systems   SystemsConfig   `toml:"systems"`
	History   HistoryConfig   `toml:"history"`
	Scripting ScriptingConfig `toml:"scripting"`
	Templates TemplatesConfig `toml:"templates"`
	Snapshot  SnapshotConfig  `toml:"snapshot"`
	Logging   LoggingConfig   `toml:"logging"`
}

type LoopConfig struct {
	FrameInterval time.Duration `toml:"frame_interval"`
}

type SystemsConfig struct {
	MaxConsecutiveErrors int `toml:"max_consecutive_errors"` // auto-disable threshold
}

type HistoryConfig struct {
	MaxDepth int `toml:"max_depth"` // 0 = unlimited
}

type ScriptingConfig struct {
	Dir string `toml:"dir"` // empty disables scripting
}

type TemplatesConfig struct {
	File string `toml:"file"` // optional yaml presets, merged over the built-ins
}

type SnapshotConfig struct {
	Driver   string `toml:"driver"` // "postgres", "sqlite" or "file"
	DSN      string `toml:"dsn"`
	Dir      string `toml:"dir"`
	MaxConns int    `toml:"max_conns"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	Output string `toml:"output"` // "stderr", "stdout" or a file path
}

// Path returns the config file to read: SCENEFORGE_CONFIG if set, else
// DefaultPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Defaults(), nil
	}
	return Load(path)
}

func (c *Config) validate() error {
	if c.Loop.FrameInterval <= 0 {
		return fmt.Errorf("loop.frame_interval must be positive, got %s", c.Loop.FrameInterval)
	}
	if c.Systems.MaxConsecutiveErrors < 1 {
		return fmt.Errorf("systems.max_consecutive_errors must be at least 1, got %d", c.Systems.MaxConsecutiveErrors)
	}
	switch c.Snapshot.Driver {
	case "postgres", "sqlite":
		if c.Snapshot.DSN == "" {
			return fmt.Errorf("snapshot.dsn is required for driver %q", c.Snapshot.Driver)
		}
	case "file":
		if c.Snapshot.Dir == "" {
			return fmt.Errorf("snapshot.dir is required for driver %q", c.Snapshot.Driver)
		}
	default:
		return fmt.Errorf("unknown snapshot.driver %q", c.Snapshot.Driver)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown logging.format %q", c.Logging.Format)
	}
	return nil
}

func Defaults() *Config {
	return &Config{
		Loop: LoopConfig{
			FrameInterval: 16 * time.Millisecond, // ~60 fps
		},
		Systems: SystemsConfig{
			MaxConsecutiveErrors: 10,
		},
		History: HistoryConfig{
			MaxDepth: 100,
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Templates: TemplatesConfig{
			File: "",
		},
		Snapshot: SnapshotConfig{
			Driver:   "file",
			Dir:      "snapshots",
			MaxConns: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}
