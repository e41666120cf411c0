package compiler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"bale/internal/compiler"
	"bale/internal/emit"
	"bale/internal/fsys"
	"bale/internal/graph"
	"bale/internal/hooks"
	"bale/internal/loader"
	"bale/internal/resolve"
)

func project() *fsys.MockFS {
	return fsys.NewMockFS(map[string]string{
		"/proj/src/index.js": `var foo = require("./foo"); module.exports = foo() + 1;`,
		"/proj/src/foo.js":   `module.exports = function () { return 41; };`,
	})
}

func newCompiler(t *testing.T, fs fsys.FS, mutate func(*compiler.Options)) *compiler.Compiler {
	t.Helper()
	opts := compiler.Options{
		Root:    "/proj",
		Entries: []graph.Entry{{Name: "main", Request: "./src/index.js"}},
		FS:      fs,
	}
	if mutate != nil {
		mutate(&opts)
	}
	c, err := compiler.New(opts)
	if err != nil {
		t.Fatalf("compiler.New: %v", err)
	}
	return c
}

func TestRunEmitsBundle(t *testing.T) {
	fs := project()
	comp, err := newCompiler(t, fs, nil).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	asset, ok := comp.Asset("main")
	if !ok || asset.Path != "/proj/dist/main.js" {
		t.Fatalf("assets = %+v", comp.Assets)
	}
	data, err := fs.ReadFile("/proj/dist/main.js")
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{`"./src/index.js": function`, `"./src/foo.js": function`, `return require("./src/index.js");`} {
		if !strings.Contains(out, want) {
			t.Errorf("bundle lacks %q", want)
		}
	}
	if got := comp.FileDependencies(); !slices.Equal(got, []string{"/proj/src/foo.js", "/proj/src/index.js"}) {
		t.Fatalf("file deps = %v", got)
	}
}

func TestHooksFireInRegistrationOrder(t *testing.T) {
	var events []string
	tap := func(name string) compiler.Plugin {
		return compiler.PluginFunc(func(c *compiler.Compiler) {
			c.Hooks().Tap(hooks.Run, name, func() error {
				if c.Current().Graph != nil {
					t.Errorf("%s: run fired after graph construction", name)
				}
				events = append(events, "run:"+name)
				return nil
			})
			c.Hooks().Tap(hooks.Done, name, func() error {
				if len(c.Current().Assets) != 1 {
					t.Errorf("%s: done fired before emission", name)
				}
				events = append(events, "done:"+name)
				return nil
			})
		})
	}
	c := newCompiler(t, project(), func(o *compiler.Options) {
		o.Plugins = []compiler.Plugin{tap("A"), tap("B")}
	})
	if _, err := c.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := []string{"run:A", "run:B", "done:A", "done:B"}
	if !slices.Equal(events, want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
}

func TestMissingDependencyFailsWithoutOutput(t *testing.T) {
	fs := fsys.NewMockFS(map[string]string{
		"/proj/src/index.js": `require("./missing");`,
	})
	done := false
	c := newCompiler(t, fs, func(o *compiler.Options) {
		o.Plugins = []compiler.Plugin{compiler.PluginFunc(func(c *compiler.Compiler) {
			c.Hooks().Tap(hooks.Done, "spy", func() error { done = true; return nil })
		})}
	})
	_, err := c.Run(context.Background())

	var berr *compiler.BuildError
	if !errors.As(err, &berr) || berr.ModuleID != "./src/index.js" {
		t.Fatalf("err = %v", err)
	}
	var rerr *resolve.ResolutionError
	if !errors.As(err, &rerr) || rerr.Specifier != "./missing" {
		t.Fatalf("err = %v, want ResolutionError for ./missing", err)
	}
	if done {
		t.Fatal("done fired on a failed build")
	}
	if paths := fs.Paths(); len(paths) != 1 {
		t.Fatalf("files written on failure: %v", paths)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	fs := project()
	c := newCompiler(t, fs, nil)
	first, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	a, _ := fs.ReadFile("/proj/dist/main.js")
	second, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, _ := fs.ReadFile("/proj/dist/main.js")
	if string(a) != string(b) {
		t.Fatalf("outputs differ:\n%s\n---\n%s", a, b)
	}
	if first.ID == second.ID {
		t.Fatal("compilations share an id")
	}
}

func TestEmitFailure(t *testing.T) {
	fs := project()
	fs.FailWrites("/proj/dist/main.js", errors.New("disk full"))
	done := false
	c := newCompiler(t, fs, func(o *compiler.Options) {
		o.Plugins = []compiler.Plugin{compiler.PluginFunc(func(c *compiler.Compiler) {
			c.Hooks().Tap(hooks.Done, "spy", func() error { done = true; return nil })
		})}
	})
	_, err := c.Run(context.Background())
	var eerr *emit.EmitError
	var berr *compiler.BuildError
	if !errors.As(err, &eerr) || !errors.As(err, &berr) || berr.Phase != compiler.PhaseEmit {
		t.Fatalf("err = %v", err)
	}
	if done {
		t.Fatal("done fired although emission failed")
	}
}

func TestRunHookFailureStopsBuild(t *testing.T) {
	fs := project()
	c := newCompiler(t, fs, func(o *compiler.Options) {
		o.Plugins = []compiler.Plugin{compiler.PluginFunc(func(c *compiler.Compiler) {
			c.Hooks().Tap(hooks.Run, "veto", func() error { return errors.New("not today") })
		})}
	})
	comp, err := c.Run(context.Background())
	var cerr *hooks.CallbackError
	if !errors.As(err, &cerr) || cerr.Listener != "veto" {
		t.Fatalf("err = %v", err)
	}
	if comp.Graph != nil || fs.Exists("/proj/dist/main.js") {
		t.Fatal("build continued after run hook failed")
	}
}

func TestCancelledRunIsAborted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newCompiler(t, project(), nil).Run(ctx)
	if !errors.Is(err, compiler.ErrAborted) || !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestLoaderRules(t *testing.T) {
	fs := fsys.NewMockFS(map[string]string{
		"/proj/src/index.js":  `module.exports = require("./data.json");`,
		"/proj/src/data.json": `{"answer": 42}`,
	})
	jsonLoader, err := loader.Lookup("json", nil)
	if err != nil {
		t.Fatal(err)
	}
	c := newCompiler(t, fs, func(o *compiler.Options) {
		o.Extensions = []string{".js", ".json"}
		o.Rules = []loader.Rule{{Test: regexp.MustCompile(`\.json$`), Use: []loader.Transform{jsonLoader}}}
	})
	comp, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	m, ok := comp.Graph.Module("./src/data.json")
	if !ok || !strings.Contains(m.Source, "module.exports") {
		t.Fatalf("json module = %+v", m)
	}
}

func TestPhaseObserver(t *testing.T) {
	var got []string
	c := newCompiler(t, project(), func(o *compiler.Options) {
		o.PhaseObserver = func(ev compiler.PhaseEvent) {
			if ev.Status == compiler.PhaseEnd {
				got = append(got, ev.Name)
			}
		}
	})
	if _, err := c.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := []string{"run", "graph", "assemble", "emit", "done"}
	if !slices.Equal(got, want) {
		t.Fatalf("phases = %v", got)
	}
}

func TestManifestPlugin(t *testing.T) {
	fs := project()
	manifest, err := compiler.LookupPlugin("manifest", nil)
	if err != nil {
		t.Fatal(err)
	}
	logPlugin, err := compiler.LookupPlugin("log", map[string]any{"level": "debug"})
	if err != nil {
		t.Fatal(err)
	}
	c := newCompiler(t, fs, func(o *compiler.Options) {
		o.Filename = "[name].[contenthash].js"
		o.Plugins = []compiler.Plugin{logPlugin, manifest}
	})
	comp, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	data, err := fs.ReadFile("/proj/dist/manifest.json")
	if err != nil {
		t.Fatal(err)
	}
	var m compiler.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	asset, _ := comp.Asset("main")
	if m.Build != comp.ID.String() || "/proj/dist/"+m.Chunks["main"] != asset.Path {
		t.Fatalf("manifest = %+v, asset = %+v", m, asset)
	}
	if !strings.HasPrefix(m.Chunks["main"], "main.") || len(m.Files) != 1 {
		t.Fatalf("manifest = %+v", m)
	}
}

func TestManifestStaysInsideOutput(t *testing.T) {
	cases := []struct {
		name, filename, template, want string
	}{
		{"overwrites chunk", "main.json", "[name].json", "would overwrite chunk"},
		{"escapes output", "../escape.json", "", "outside the output path"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			fs := project()
			manifest, err := compiler.LookupPlugin("manifest", map[string]any{"filename": tt.filename})
			if err != nil {
				t.Fatal(err)
			}
			c := newCompiler(t, fs, func(o *compiler.Options) {
				o.Filename = tt.template
				o.Plugins = []compiler.Plugin{manifest}
			})
			_, err = c.Run(context.Background())
			var cbErr *hooks.CallbackError
			if !errors.As(err, &cbErr) || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v", err)
			}
			if fs.Exists("/proj/escape.json") {
				t.Fatal("manifest written outside the output directory")
			}
			if data, err := fs.ReadFile("/proj/dist/main.json"); err == nil && strings.Contains(string(data), `"chunks"`) {
				t.Fatal("chunk replaced by the manifest")
			}
		})
	}
	if _, err := compiler.LookupPlugin("manifest", map[string]any{"filename": "/tmp/m.json"}); err == nil {
		t.Fatal("absolute manifest filename accepted")
	}
}

func TestNewLogsHookTaps(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)
	manifest, err := compiler.LookupPlugin("manifest", nil)
	if err != nil {
		t.Fatal(err)
	}
	newCompiler(t, project(), func(o *compiler.Options) {
		o.Logger = logger
		o.Plugins = []compiler.Plugin{manifest}
	})
	out := buf.String()
	if !strings.Contains(out, "hook ready") || !strings.Contains(out, "hook=done taps=1") {
		t.Fatalf("log output:\n%s", out)
	}
}

func TestOptionValidation(t *testing.T) {
	cases := []compiler.Options{
		{Root: "/proj"},
		{Root: "/proj", Entries: []graph.Entry{{Name: "a", Request: "a.js"}, {Name: "a", Request: "b.js"}}},
		{Root: "/proj", Entries: []graph.Entry{{Name: "a", Request: "a.js"}}, Filename: "[id].js"},
		{Entries: []graph.Entry{{Name: "a", Request: "a.js"}}},
	}
	for i, opts := range cases {
		if _, err := compiler.New(opts); err == nil {
			t.Errorf("case %d: options accepted", i)
		}
	}
	if _, err := compiler.LookupPlugin("nope", nil); err == nil {
		t.Error("unknown plugin accepted")
	}
}
