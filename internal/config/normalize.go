package config

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultEntryName is used when entry is a single path.
const DefaultEntryName = "main"

func normalize(f File) (*Config, error) {
	entries, err := normalizeEntries(f.Entry)
	if err != nil {
		return nil, err
	}
	rules := make([]Rule, 0, len(f.Module.Rules))
	for i, rc := range f.Module.Rules {
		rule, err := normalizeRule(rc)
		if err != nil {
			return nil, fmt.Errorf("module.rules[%d]: %w", i, err)
		}
		rules = append(rules, rule)
	}
	for i, p := range f.Plugins {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("plugins[%d]: missing name", i)
		}
	}
	if f.Build.Jobs < 0 {
		return nil, errors.New("build.jobs must not be negative")
	}
	for _, ext := range f.Resolve.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return nil, fmt.Errorf("resolve.extensions: %q must start with a dot", ext)
		}
	}
	return &Config{File: f, Entries: entries, Rules: rules}, nil
}

// normalizeEntries turns `entry = "path"` into {main: path} and sorts named
// entries so map iteration order never leaks into the build.
func normalizeEntries(raw any) ([]EntryConfig, error) {
	switch v := raw.(type) {
	case nil:
		return nil, errors.New("missing entry")
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, errors.New("entry must not be empty")
		}
		return []EntryConfig{{Name: DefaultEntryName, Path: v}}, nil
	case map[string]any:
		if len(v) == 0 {
			return nil, errors.New("entry table is empty")
		}
		entries := make([]EntryConfig, 0, len(v))
		for name, p := range v {
			s, ok := p.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return nil, fmt.Errorf("entry %q must be a non-empty path", name)
			}
			entries = append(entries, EntryConfig{Name: name, Path: s})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
		return entries, nil
	default:
		return nil, fmt.Errorf("entry must be a path or a table of name = path, got %T", raw)
	}
}

func normalizeRule(rc RuleConfig) (Rule, error) {
	if rc.Test == "" && len(rc.Include) == 0 {
		return Rule{}, errors.New("rule needs test or include")
	}
	if rc.Test != "" {
		if _, err := regexp.Compile(rc.Test); err != nil {
			return Rule{}, fmt.Errorf("invalid test: %w", err)
		}
	}
	for _, pattern := range rc.Include {
		if !doublestar.ValidatePattern(pattern) {
			return Rule{}, fmt.Errorf("invalid include pattern %q", pattern)
		}
	}
	if len(rc.Use) == 0 {
		return Rule{}, errors.New("rule has no loaders")
	}
	rule := Rule{Test: rc.Test, Include: rc.Include}
	for i, item := range rc.Use {
		ref, err := loaderRef(item)
		if err != nil {
			return Rule{}, fmt.Errorf("use[%d]: %w", i, err)
		}
		rule.Use = append(rule.Use, ref)
	}
	return rule, nil
}

func loaderRef(item any) (LoaderRef, error) {
	switch v := item.(type) {
	case string:
		return LoaderRef{Loader: v}, nil
	case map[string]any:
		name, _ := v["loader"].(string)
		if name == "" {
			return LoaderRef{}, errors.New("missing loader name")
		}
		ref := LoaderRef{Loader: name}
		switch opts := v["options"].(type) {
		case nil:
		case map[string]any:
			ref.Options = opts
		default:
			return LoaderRef{}, fmt.Errorf("loader %q: options must be a table", name)
		}
		for key := range v {
			if key != "loader" && key != "options" {
				return LoaderRef{}, fmt.Errorf("loader %q: unknown key %q", name, key)
			}
		}
		return ref, nil
	default:
		return LoaderRef{}, fmt.Errorf("expected loader name or table, got %T", item)
	}
}
