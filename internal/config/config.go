// Package config loads bale.toml / bale.yaml and translates it into
// compiler options.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"bale/internal/project"
)

// Format of a config file.
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// File mirrors the on-disk layout. Entry and Use items are polymorphic and
// normalized by Load.
type File struct {
	Entry   any            `toml:"entry" yaml:"entry"`
	Output  OutputConfig   `toml:"output" yaml:"output"`
	Resolve ResolveConfig  `toml:"resolve" yaml:"resolve"`
	Module  ModuleConfig   `toml:"module" yaml:"module"`
	Plugins []PluginConfig `toml:"plugins" yaml:"plugins"`
	Build   BuildConfig    `toml:"build" yaml:"build"`
}

type OutputConfig struct {
	Path     string `toml:"path" yaml:"path"`
	Filename string `toml:"filename" yaml:"filename"`
	Banner   string `toml:"banner,omitempty" yaml:"banner"`
}

type ResolveConfig struct {
	Extensions []string `toml:"extensions" yaml:"extensions"`
}

type ModuleConfig struct {
	Rules []RuleConfig `toml:"rules" yaml:"rules"`
}

// RuleConfig selects loaders by regexp (Test) and/or glob (Include).
type RuleConfig struct {
	Test    string   `toml:"test" yaml:"test"`
	Include []string `toml:"include" yaml:"include"`
	Use     []any    `toml:"use" yaml:"use"`
}

type PluginConfig struct {
	Name    string         `toml:"name" yaml:"name"`
	Options map[string]any `toml:"options" yaml:"options"`
}

type BuildConfig struct {
	Jobs     int    `toml:"jobs" yaml:"jobs"`
	Cache    bool   `toml:"cache" yaml:"cache"`
	CacheDir string `toml:"cache_dir" yaml:"cache_dir"`
	Callee   string `toml:"callee" yaml:"callee"`
}

// Config is a loaded, validated project configuration.
type Config struct {
	// Path of the config file; empty for configs built in memory.
	Path string
	// Root is the directory holding the config file.
	Root    string
	File    File
	Entries []EntryConfig
	Rules   []Rule
}

// EntryConfig is one named entry.
type EntryConfig struct {
	Name string
	Path string
}

// Rule is a RuleConfig with normalized loader references.
type Rule struct {
	Test    string
	Include []string
	Use     []LoaderRef
}

// LoaderRef names a built-in loader plus its options.
type LoaderRef struct {
	Loader  string
	Options map[string]any
}

// Discover walks up from startDir to the nearest config file.
func Discover(startDir string) (*Config, bool, error) {
	path, ok, err := project.FindConfig(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// Load reads and validates the config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	cfg, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = abs
	cfg.Root = filepath.Dir(abs)
	return cfg, nil
}

// Parse decodes and normalizes config data. Root is left empty.
func Parse(data []byte, format Format) (*Config, error) {
	var f File
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		meta, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		if !meta.IsDefined("entry") {
			return nil, errors.New("missing entry")
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				if !freeForm(k) {
					keys = append(keys, k.String())
				}
			}
			if len(keys) > 0 {
				return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
			}
		}
	}
	return normalize(f)
}

// freeForm reports keys below values decoded into interfaces; toml leaves
// those out of the decoded set.
func freeForm(k toml.Key) bool {
	key := k.String()
	for _, prefix := range []string{"entry.", "module.rules.use.", "plugins.options."} {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
