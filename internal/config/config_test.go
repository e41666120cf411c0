package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bale/internal/cache"
	"bale/internal/compiler"
)

const fullTOML = `
[entry]
main = "./src/index.js"
admin = "./src/admin.js"

[output]
path = "build"
filename = "[name].[contenthash].js"

[resolve]
extensions = [".js", ".json"]

[[module.rules]]
test = '\.json$'
use = ["json"]

[[module.rules]]
include = ["src/**/*.js"]
use = ["strict", { loader = "comment", options = { text = "built" } }]

[[plugins]]
name = "manifest"

[[plugins]]
name = "log"
options = { level = "debug" }

[build]
jobs = 4
`

func TestParseTOML(t *testing.T) {
	cfg, err := Parse([]byte(fullTOML), FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Entries) != 2 || cfg.Entries[0].Name != "admin" || cfg.Entries[1].Name != "main" {
		t.Fatalf("entries = %+v", cfg.Entries)
	}
	if len(cfg.Rules) != 2 {
		t.Fatalf("rules = %+v", cfg.Rules)
	}
	use := cfg.Rules[1].Use
	if len(use) != 2 || use[0].Loader != "strict" || use[1].Loader != "comment" || use[1].Options["text"] != "built" {
		t.Fatalf("use = %+v", use)
	}
	if cfg.File.Build.Jobs != 4 || cfg.File.Output.Path != "build" {
		t.Fatalf("file = %+v", cfg.File)
	}
}

func TestParseSingleEntry(t *testing.T) {
	for name, tc := range map[string]struct {
		data   string
		format Format
	}{
		"toml": {`entry = "./src/index.js"`, FormatTOML},
		"yaml": {"entry: ./src/index.js\n", FormatYAML},
	} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Parse([]byte(tc.data), tc.format)
			if err != nil {
				t.Fatal(err)
			}
			if len(cfg.Entries) != 1 || cfg.Entries[0] != (EntryConfig{Name: "main", Path: "./src/index.js"}) {
				t.Fatalf("entries = %+v", cfg.Entries)
			}
		})
	}
}

func TestParseYAMLRules(t *testing.T) {
	data := `
entry:
  app: ./src/app.js
module:
  rules:
    - test: '\.ts$'
      use:
        - typescript
        - loader: replace
          options:
            values:
              __ENV__: '"prod"'
plugins:
  - name: manifest
    options:
      filename: assets.json
`
	cfg, err := Parse([]byte(data), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	use := cfg.Rules[0].Use
	if len(use) != 2 || use[0].Loader != "typescript" || use[1].Options["values"] == nil {
		t.Fatalf("use = %+v", use)
	}
	if cfg.File.Plugins[0].Options["filename"] != "assets.json" {
		t.Fatalf("plugins = %+v", cfg.File.Plugins)
	}
	cfg.Root = "/proj"
	if _, err := cfg.Options(); err != nil {
		t.Fatalf("Options: %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]struct {
		data   string
		format Format
		want   string
	}{
		"missing entry":   {`[output]` + "\n" + `path = "dist"`, FormatTOML, "missing entry"},
		"unknown key":     {"entry = \"./a.js\"\n[output]\ndir = \"x\"", FormatTOML, "unknown keys: output.dir"},
		"bad entry type":  {"entry = 3", FormatTOML, "entry must be"},
		"bad regexp":      {"entry = \"./a.js\"\n[[module.rules]]\ntest = \"(\"\nuse = [\"json\"]", FormatTOML, "invalid test"},
		"rule without":    {"entry = \"./a.js\"\n[[module.rules]]\nuse = [\"json\"]", FormatTOML, "needs test or include"},
		"loader table":    {"entry = \"./a.js\"\n[[module.rules]]\ntest = \"x\"\nuse = [{ options = {} }]", FormatTOML, "missing loader name"},
		"plugin nameless": {"entry = \"./a.js\"\n[[plugins]]\noptions = {}", FormatTOML, "missing name"},
		"bad extension":   {"entry = \"./a.js\"\n[resolve]\nextensions = [\"js\"]", FormatTOML, "must start with a dot"},
		"yaml unknown":    {"entry: ./a.js\nwat: 1\n", FormatYAML, "wat"},
		"yaml empty":      {"", FormatYAML, "missing entry"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data), tc.format)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestOptionsTranslation(t *testing.T) {
	cfg, err := Parse([]byte(fullTOML), FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Root = "/proj"
	opts, err := cfg.Options()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Root != "/proj" || opts.OutputPath != "build" || opts.Jobs != 4 {
		t.Fatalf("opts = %+v", opts)
	}
	if len(opts.Entries) != 2 || opts.Entries[1].Request != "./src/index.js" {
		t.Fatalf("entries = %+v", opts.Entries)
	}
	if len(opts.Rules) != 2 || opts.Rules[0].Test == nil || len(opts.Rules[1].Use) != 2 {
		t.Fatalf("rules = %+v", opts.Rules)
	}
	if len(opts.Plugins) != 2 {
		t.Fatalf("plugins = %d", len(opts.Plugins))
	}
	if _, ok := opts.Plugins[0].(*compiler.ManifestPlugin); !ok {
		t.Fatalf("plugin[0] = %T", opts.Plugins[0])
	}
}

func TestOptionsUnknownNames(t *testing.T) {
	for _, data := range []string{
		"entry = \"./a.js\"\n[[module.rules]]\ntest = \"x\"\nuse = [\"coffee\"]",
		"entry = \"./a.js\"\n[[plugins]]\nname = \"nope\"",
	} {
		cfg, err := Parse([]byte(data), FormatTOML)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := cfg.Options(); err == nil || !strings.Contains(err.Error(), "unknown") {
			t.Fatalf("err = %v", err)
		}
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "bale.toml"), []byte(`entry = "./src/index.js"`), 0o600); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "src", "lib")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatal(err)
	}
	cfg, ok, err := Discover(nested)
	if err != nil || !ok {
		t.Fatalf("Discover: ok=%v err=%v", ok, err)
	}
	if cfg.Root != root {
		t.Fatalf("root = %q, want %q", cfg.Root, root)
	}
}

func TestScaffoldRoundTrips(t *testing.T) {
	data, err := Scaffold("./src/index.js")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Parse(data, FormatTOML)
	if err != nil {
		t.Fatalf("parse scaffold: %v\n%s", err, data)
	}
	if cfg.Entries[0].Path != "./src/index.js" || len(cfg.Rules) != 1 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if _, err := cfg.Options(); err != nil {
		t.Fatal(err)
	}
}

func TestOpenCache(t *testing.T) {
	cfg := &Config{Root: t.TempDir()}
	if c, err := cfg.OpenCache(); err != nil || c != nil {
		t.Fatalf("disabled cache = %v, %v", c, err)
	}
	cfg.File.Build = BuildConfig{Cache: true, CacheDir: ".cache"}
	c, err := cfg.OpenCache()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(cache.Tiered); !ok {
		t.Fatalf("cache = %T", c)
	}
	if _, err := os.Stat(filepath.Join(cfg.Root, ".cache")); err != nil {
		t.Fatal(err)
	}
}
