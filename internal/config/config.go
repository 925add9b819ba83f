// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads questmap settings. Command-line flags override the
// config file, which overrides built-in defaults.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/gobwas/glob"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/questmap/internal/xdg"
)

// Error codes.
const (
	CodeInvalidConfig = "INVALID_CONFIG"
	CodeConfigLoad    = "CONFIG_LOAD_FAILED"
)

// Config is the full questmap configuration.
type Config struct {
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Engine  EngineConfig  `koanf:"engine"`
	Scene   SceneConfig   `koanf:"scene"`
}

// LogConfig configures logging.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// MetricsConfig configures the observability server. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// EngineConfig tunes marker resolution and dedup.
type EngineConfig struct {
	DefaultRadius  float64 `koanf:"default_radius"`
	MinRadius      float64 `koanf:"min_radius"`
	BucketSize     float64 `koanf:"bucket_size"`
	SpawnTolerance float64 `koanf:"spawn_tolerance"`
}

// SceneConfig holds scene matching aliases: current scene id to glob patterns
// of location scene ids that also count as the current scene.
type SceneConfig struct {
	Aliases map[string][]string `koanf:"aliases"`
}

func defaults() map[string]any {
	return map[string]any{
		"log.format":             "json",
		"log.level":              "info",
		"metrics.addr":           "",
		"engine.default_radius":  10.0,
		"engine.min_radius":      0.1,
		"engine.bucket_size":     0.1,
		"engine.spawn_tolerance": 0.1,
	}
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"log-format":      "log.format",
	"log-level":       "log.level",
	"metrics-addr":    "metrics.addr",
	"default-radius":  "engine.default_radius",
	"bucket-size":     "engine.bucket_size",
	"spawn-tolerance": "engine.spawn_tolerance",
}

// RegisterFlags adds the overridable settings to fs.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("log-format", "json", "log format (json or text)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("metrics-addr", "", "observability server address; empty disables it")
	flags.Float64("default-radius", 10, "marker radius used when none resolves")
	flags.Float64("bucket-size", 0.1, "dedup grid resolution in world units")
	flags.Float64("spawn-tolerance", 0.1, "distance under which prefab spawns of one task are merged")
}

// Load reads configuration. An empty path means the default XDG config file,
// which may be absent; an explicit path must exist. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, oops.Code(CodeConfigLoad).Wrap(err)
	}

	explicit := path != ""
	if !explicit {
		if p, err := xdg.ConfigFile(); err == nil {
			path = p
		}
	}
	if path != "" {
		if err := loadFile(k, path, explicit); err != nil {
			return nil, err
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code(CodeConfigLoad).With("source", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code(CodeInvalidConfig).Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return oops.Code(CodeConfigLoad).With("path", path).Wrap(err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return oops.Code(CodeConfigLoad).With("path", path).Wrap(err)
	}
	return nil
}

// Validate checks every setting and returns the first problem found.
func (c *Config) Validate() error {
	invalid := func(key string, value any, msg string) error {
		return oops.Code(CodeInvalidConfig).
			With("key", key).
			With("value", value).
			Errorf("%s: %s", key, msg)
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return invalid("log.format", c.Log.Format, "must be json or text")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid("log.level", c.Log.Level, "must be debug, info, warn or error")
	}
	if c.Engine.DefaultRadius <= 0 {
		return invalid("engine.default_radius", c.Engine.DefaultRadius, "must be positive")
	}
	if c.Engine.MinRadius < 0 || c.Engine.MinRadius >= c.Engine.DefaultRadius {
		return invalid("engine.min_radius", c.Engine.MinRadius, "must be in [0, default_radius)")
	}
	if c.Engine.BucketSize <= 0 {
		return invalid("engine.bucket_size", c.Engine.BucketSize, "must be positive")
	}
	if c.Engine.SpawnTolerance <= 0 {
		return invalid("engine.spawn_tolerance", c.Engine.SpawnTolerance, "must be positive")
	}
	for scene, patterns := range c.Scene.Aliases {
		for _, p := range patterns {
			if _, err := glob.Compile(p); err != nil {
				return oops.Code(CodeInvalidConfig).
					With("key", "scene.aliases."+scene).
					With("value", p).
					Wrapf(err, "scene alias pattern")
			}
		}
	}
	return nil
}
