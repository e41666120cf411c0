package compiler

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"bale/internal/emit"
	"bale/internal/hooks"
	"bale/internal/project"
)

// PluginFactory builds a plugin from its config options.
type PluginFactory func(opts map[string]any) (Plugin, error)

var builtinPlugins = map[string]PluginFactory{
	"log":      newLogPlugin,
	"manifest": newManifestPlugin,
}

// LookupPlugin builds the built-in plugin called name.
func LookupPlugin(name string, opts map[string]any) (Plugin, error) {
	factory, ok := builtinPlugins[name]
	if !ok {
		return nil, fmt.Errorf("unknown plugin %q (available: %s)", name, strings.Join(PluginNames(), ", "))
	}
	return factory(opts)
}

// PluginNames lists built-in plugins, sorted.
func PluginNames() []string {
	names := make([]string, 0, len(builtinPlugins))
	for name := range builtinPlugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LogPlugin reports run and done through the compiler logger.
type LogPlugin struct {
	Level log.Level
}

func newLogPlugin(opts map[string]any) (Plugin, error) {
	p := &LogPlugin{Level: log.InfoLevel}
	if raw, ok := opts["level"]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("log plugin: option \"level\" must be a string, got %T", raw)
		}
		lvl, err := log.ParseLevel(s)
		if err != nil {
			return nil, fmt.Errorf("log plugin: %w", err)
		}
		p.Level = lvl
	}
	return p, nil
}

func (p *LogPlugin) Apply(c *Compiler) {
	c.Hooks().Tap(hooks.Run, "log", func() error {
		comp := c.Current()
		c.Logger().Log(p.Level, "build started", "id", comp.ID, "root", c.Root())
		return nil
	})
	c.Hooks().Tap(hooks.Done, "log", func() error {
		comp := c.Current()
		c.Logger().Log(p.Level, "build finished",
			"id", comp.ID,
			"modules", len(comp.Modules()),
			"cached", comp.CachedModules(),
			"chunks", len(comp.Assets),
			"warnings", comp.Warnings.Len(),
		)
		return nil
	})
}

// ManifestPlugin writes a JSON map from chunk name to emitted file, relative
// to the output directory, once the build is done.
type ManifestPlugin struct {
	Filename string
}

func newManifestPlugin(opts map[string]any) (Plugin, error) {
	p := &ManifestPlugin{Filename: "manifest.json"}
	if raw, ok := opts["filename"]; ok {
		s, ok := raw.(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("manifest plugin: option \"filename\" must be a non-empty string")
		}
		if path.IsAbs(project.ToUnixPath(s)) {
			return nil, fmt.Errorf("manifest plugin: filename %q must be relative to the output path", s)
		}
		p.Filename = s
	}
	return p, nil
}

// Manifest is the document ManifestPlugin writes.
type Manifest struct {
	Build  string            `json:"build"`
	Chunks map[string]string `json:"chunks"`
	Files  []ManifestFile    `json:"files"`
}

// ManifestFile describes one emitted chunk.
type ManifestFile struct {
	Chunk string `json:"chunk"`
	File  string `json:"file"`
	Size  int    `json:"size"`
	Hash  string `json:"hash"`
}

func (p *ManifestPlugin) Apply(c *Compiler) {
	c.Hooks().Tap(hooks.Done, "manifest", func() error {
		comp := c.Current()
		m := Manifest{
			Build:  comp.ID.String(),
			Chunks: make(map[string]string, len(comp.Assets)),
			Files:  make([]ManifestFile, 0, len(comp.Assets)),
		}
		outDir := c.OutputDir()
		for _, a := range comp.Assets {
			rel := strings.TrimPrefix(strings.TrimPrefix(a.Path, outDir), "/")
			m.Chunks[a.Chunk] = rel
			m.Files = append(m.Files, ManifestFile{Chunk: a.Chunk, File: rel, Size: a.Size, Hash: a.Hash})
		}
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return err
		}
		target, err := emit.Within(outDir, p.Filename)
		if err != nil {
			return fmt.Errorf("manifest %q: %w", p.Filename, err)
		}
		for _, a := range comp.Assets {
			if a.Path == target {
				return fmt.Errorf("manifest %q would overwrite chunk %q", p.Filename, a.Chunk)
			}
		}
		if err := c.FS().WriteFile(target, append(data, '\n')); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
		c.Logger().Debug("manifest written", "path", target)
		return nil
	})
}
