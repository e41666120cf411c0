package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bale/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a new bale project",
	Long: `Create bale.toml and a small src/ tree with an entry module.
If [path] is omitted the current directory is used; a missing directory is created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

const (
	initEntry     = "./src/index.js"
	initIndexJS   = "var greet = require(\"./greet\");\n\nconsole.log(greet(\"bale\"));\n"
	initGreetJS   = "module.exports = function (name) {\n  return \"hello, \" + name;\n};\n"
	initGitignore = "dist/\n"
)

// runInit refuses to touch a directory that already has a bale config.
func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) > 0 && args[0] != "" {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	for _, name := range []string{"bale.toml", "bale.yaml", "bale.yml"} {
		if _, err := os.Stat(filepath.Join(target, name)); err == nil {
			return fmt.Errorf("project already initialized: %s exists", filepath.Join(target, name))
		}
	}

	manifest, err := config.Scaffold(initEntry)
	if err != nil {
		return err
	}
	files := []struct {
		rel  string
		data []byte
	}{
		{"bale.toml", manifest},
		{"src/index.js", []byte(initIndexJS)},
		{"src/greet.js", []byte(initGreetJS)},
		{".gitignore", []byte(initGitignore)},
	}
	out := cmd.OutOrStdout()
	for _, f := range files {
		path := filepath.Join(target, filepath.FromSlash(f.rel))
		if _, err := os.Stat(path); err == nil {
			// существующие исходники не трогаем
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.rel, err)
		}
		fmt.Fprintf(out, "created %s\n", f.rel)
	}
	return nil
}
