// Package config loads the settings shared by the luminex commands.
//
// Values are layered: built-in defaults, then the YAML file, then LUMINEX_*
// environment variables (optionally read from a .env file). Command-line
// flags are applied by the caller on top of the result.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/luminex/symptomcheck/internal/runtime"

	"github.com/luminex/symptomcheck/pkg/domain"
)

// EnvPrefix is prepended to the upper-cased key path of every setting.
const EnvPrefix = "LUMINEX_"

// Graph sources.
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceDir      = "dir"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config is the decoded configuration.
type Config struct {
	Addr           string        `mapstructure:"addr" yaml:"addr"`
	Language       string        `mapstructure:"language" yaml:"language"`
	AppointmentURL string        `mapstructure:"appointment_url" yaml:"appointment_url"`
	Graph          GraphConfig   `mapstructure:"graph" yaml:"graph"`
	Store          StoreConfig   `mapstructure:"store" yaml:"store"`
	Log            LogConfig     `mapstructure:"log" yaml:"log"`
	Metrics        MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

type GraphConfig struct {
	Source string `mapstructure:"source" yaml:"source"`
	Path   string `mapstructure:"path" yaml:"path"`
	// UnknownNodePolicy is fallback-to-generic or strict.
	UnknownNodePolicy string `mapstructure:"unknown_node_policy" yaml:"unknown_node_policy"`
}

type StoreConfig struct {
	Driver        string        `mapstructure:"driver" yaml:"driver"`
	Path          string        `mapstructure:"path" yaml:"path"`
	RedisAddr     string        `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" yaml:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl" yaml:"ttl"`
	PostgresDSN   string        `mapstructure:"postgres_dsn" yaml:"postgres_dsn"`
	EncryptionKey string        `mapstructure:"encryption_key" yaml:"encryption_key"`
	// Redact withholds demographics and the user name from stored sessions.
	Redact bool `mapstructure:"redact" yaml:"redact"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Defaults returns the settings used when nothing else is given.
func Defaults() map[string]any {
	return map[string]any{
		"addr":            ":8080",
		"language":        string(domain.DefaultLanguage),
		"appointment_url": "/randevu-al.html",
		"graph": map[string]any{
			"source":              SourceEmbedded,
			"path":                "",
			"unknown_node_policy": string(runtime.PolicyFallbackToGeneric),
		},
		"store": map[string]any{
			"driver":         DriverMemory,
			"path":           ".luminex/sessions",
			"redis_addr":     "localhost:6379",
			"redis_password": "",
			"redis_db":       0,
			"ttl":            "2h",
			"postgres_dsn":   "",
			"encryption_key": "",
			"redact":         false,
		},
		"log": map[string]any{
			"level":  "info",
			"format": "text",
		},
		"metrics": map[string]any{
			"enabled": true,
		},
	}
}

// Options controls where Load reads from.
type Options struct {
	// Path of the YAML file. Empty skips the file.
	Path string
	// EnvFiles are .env files loaded before the environment is read.
	// Variables already set in the process are not overwritten.
	EnvFiles []string
}

// Load builds the configuration from defaults, file and environment.
func Load(opts Options) (*Config, error) {
	raw := Defaults()

	if opts.Path != "" {
		data, err := os.ReadFile(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		var file map[string]any
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", opts.Path, err)
		}
		merge(raw, file)
	}

	for _, f := range opts.EnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	applyEnv(raw, "")

	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated values and the settings each driver needs.
func (c *Config) Validate() error {
	if _, err := domain.ParseLanguage(c.Language); err != nil {
		return fmt.Errorf("language: %w", err)
	}
	switch c.Graph.Source {
	case SourceEmbedded:
	case SourceFile, SourceDir:
		if c.Graph.Path == "" {
			return fmt.Errorf("graph.path is required for source %q", c.Graph.Source)
		}
	default:
		return fmt.Errorf("unknown graph.source %q", c.Graph.Source)
	}
	if _, err := runtime.ParseUnknownNodePolicy(c.Graph.UnknownNodePolicy); err != nil {
		return fmt.Errorf("graph.unknown_node_policy: %w", err)
	}
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis:
	case DriverPostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("store.postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.Store.TTL < 0 {
		return errors.New("store.ttl must not be negative")
	}
	return nil
}

// Keys lists every setting as a dotted path, sorted.
func Keys() []string {
	var keys []string
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			if sub, ok := v.(map[string]any); ok {
				walk(prefix+k+".", sub)
				continue
			}
			keys = append(keys, prefix+k)
		}
	}
	walk("", Defaults())
	sort.Strings(keys)
	return keys
}

// EnvName returns the environment variable for a dotted key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func applyEnv(m map[string]any, prefix string) {
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			applyEnv(sub, prefix+k+".")
			continue
		}
		if val, ok := os.LookupEnv(EnvName(prefix + k)); ok {
			m[k] = val
		}
	}
}

// merge copies src into dst, descending into nested maps.
func merge(dst, src map[string]any) {
	for k, v := range src {
		sub, isMap := v.(map[string]any)
		cur, curIsMap := dst[k].(map[string]any)
		if isMap && curIsMap {
			merge(cur, sub)
			continue
		}
		dst[k] = v
	}
}
