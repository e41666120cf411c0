package config

import (
	"fmt"
	"path/filepath"
	"regexp"

	"bale/internal/cache"
	"bale/internal/compiler"
	"bale/internal/graph"
	"bale/internal/loader"
)

// Options translates the config into compiler options. Loaders and plugins
// are looked up in the built-in registries; FS, Logger, Cache and observers
// are left for the caller.
func (c *Config) Options() (compiler.Options, error) {
	opts := compiler.Options{
		Root:       c.Root,
		Extensions: c.File.Resolve.Extensions,
		Callee:     c.File.Build.Callee,
		OutputPath: c.File.Output.Path,
		Filename:   c.File.Output.Filename,
		Banner:     c.File.Output.Banner,
		Jobs:       c.File.Build.Jobs,
	}
	for _, e := range c.Entries {
		opts.Entries = append(opts.Entries, graph.Entry{Name: e.Name, Request: e.Path})
	}
	for i, r := range c.Rules {
		rule, err := r.compile()
		if err != nil {
			return compiler.Options{}, fmt.Errorf("module.rules[%d]: %w", i, err)
		}
		opts.Rules = append(opts.Rules, rule)
	}
	for _, p := range c.File.Plugins {
		plugin, err := compiler.LookupPlugin(p.Name, p.Options)
		if err != nil {
			return compiler.Options{}, fmt.Errorf("plugins: %w", err)
		}
		opts.Plugins = append(opts.Plugins, plugin)
	}
	return opts, nil
}

func (r Rule) compile() (loader.Rule, error) {
	out := loader.Rule{Include: r.Include}
	if r.Test != "" {
		re, err := regexp.Compile(r.Test)
		if err != nil {
			return loader.Rule{}, err
		}
		out.Test = re
	}
	for _, ref := range r.Use {
		t, err := loader.Lookup(ref.Loader, ref.Options)
		if err != nil {
			return loader.Rule{}, err
		}
		out.Use = append(out.Use, t)
	}
	return out, nil
}

// CacheEnabled reports whether loader output caching is requested.
func (c *Config) CacheEnabled() bool { return c.File.Build.Cache }

// CacheDir is build.cache_dir relative to Root, or the user cache dir.
func (c *Config) CacheDir() (string, error) {
	dir := c.File.Build.CacheDir
	if dir == "" {
		return cache.DefaultDir("bale")
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.Root, dir)
	}
	return dir, nil
}

// OpenCache builds the loader cache: an in-memory layer in front of the
// msgpack disk store. It returns nil when caching is disabled.
func (c *Config) OpenCache() (graph.Cache, error) {
	if !c.CacheEnabled() {
		return nil, nil
	}
	dir, err := c.CacheDir()
	if err != nil {
		return nil, err
	}
	disk, err := cache.OpenDisk(dir)
	if err != nil {
		return nil, err
	}
	return cache.Tiered{cache.NewMemory(0), disk}, nil
}
