package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bale/internal/buildpipeline"
)

func TestReadUIMode(t *testing.T) {
	cases := map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff}
	for in, want := range cases {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Error("expected error for invalid mode")
	}
}

func TestFormatPathForOutput(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "proj")
	if got := formatPathForOutput(root, filepath.Join(root, "dist", "main.js")); got != "dist/main.js" {
		t.Errorf("got %q", got)
	}
	outside := filepath.Join(string(filepath.Separator), "elsewhere", "x.js")
	if got := formatPathForOutput(root, outside); got != outside {
		t.Errorf("got %q", got)
	}
}

func TestPrintStageTimings(t *testing.T) {
	var timings buildpipeline.Timings
	timings.Set(buildpipeline.StageGraph, 1500*time.Microsecond)
	timings.Set(buildpipeline.StageEmit, 2*time.Millisecond)
	var buf bytes.Buffer
	if err := printStageTimings(&buf, timings); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "graph 1.5 ms\nemitted 2.0 ms\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInitThenBuild(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "app")

	out, err := execute(t, "init", dir)
	if err != nil {
		t.Fatalf("init: %v\n%s", err, out)
	}
	if !strings.Contains(out, "created bale.toml") {
		t.Fatalf("init output = %q", out)
	}
	if _, err := execute(t, "init", dir); err == nil {
		t.Fatal("second init should refuse an initialized project")
	}

	out, err = execute(t, "--color", "off", "build", "--ui", "off", dir)
	if err != nil {
		t.Fatalf("build: %v\n%s", err, out)
	}
	if !strings.Contains(out, "emitted dist/main.js") {
		t.Fatalf("build output = %q", out)
	}
	data, err := os.ReadFile(filepath.Join(dir, "dist", "main.js"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"./src/index.js": function`, `"./src/greet.js": function`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("bundle lacks %q", want)
		}
	}

	out, err = execute(t, "clean", dir)
	if err != nil {
		t.Fatalf("clean: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(dir, "dist")); !os.IsNotExist(err) {
		t.Fatalf("dist still present: %v", err)
	}
}

func TestBuildWithoutConfig(t *testing.T) {
	_, err := execute(t, "build", "--ui", "off", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "no bale.toml found") {
		t.Fatalf("err = %v", err)
	}
}

func TestCleanDropsCache(t *testing.T) {
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	t.Cleanup(func() { _ = cleanCmd.Flags().Set("cache", "false") })

	dir := filepath.Join(t.TempDir(), "app")
	if out, err := execute(t, "init", dir); err != nil {
		t.Fatalf("init: %v\n%s", err, out)
	}
	out, err := execute(t, "clean", "--cache", dir)
	if err != nil {
		t.Fatalf("clean: %v\n%s", err, out)
	}
	want := "dropped cache " + filepath.Join(cacheHome, "bale")
	if !strings.Contains(out, "output directory not found") || !strings.Contains(out, want) {
		t.Fatalf("clean output = %q", out)
	}
}
