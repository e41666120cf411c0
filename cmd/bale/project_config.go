package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"bale/internal/compiler"
	"bale/internal/config"
)

const noConfigMessage = "no bale.toml found\nrun `bale init` to create one, or pass --config"

// loadProjectConfig honours --config, otherwise walks up from the optional
// path argument.
func loadProjectConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	explicit, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	if explicit != "" {
		return config.Load(explicit)
	}
	start := "."
	if len(args) > 0 && args[0] != "" {
		start = args[0]
	}
	if info, err := os.Stat(start); err == nil && !info.IsDir() {
		return config.Load(start)
	}
	cfg, ok, err := config.Discover(start)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(noConfigMessage)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command) (*log.Logger, error) {
	levelStr, err := cmd.Root().PersistentFlags().GetString("log-level")
	if err != nil {
		return nil, err
	}
	level, err := log.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "bale",
		Level:           level,
		ReportTimestamp: level <= log.DebugLevel,
	}), nil
}

// compilerOptions translates cfg and applies the flags shared by build and
// watch.
func compilerOptions(cmd *cobra.Command, cfg *config.Config) (compiler.Options, error) {
	opts, err := cfg.Options()
	if err != nil {
		return compiler.Options{}, fmt.Errorf("%s: %w", cfg.Path, err)
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return compiler.Options{}, err
	}
	opts.Logger = logger

	if jobs, err := cmd.Flags().GetInt("jobs"); err == nil && jobs > 0 {
		opts.Jobs = jobs
	}
	if useCache, err := cmd.Flags().GetBool("cache"); err == nil && useCache {
		cfg.File.Build.Cache = true
	}
	store, err := cfg.OpenCache()
	if err != nil {
		return compiler.Options{}, err
	}
	if store != nil {
		opts.Cache = store
	}
	return opts, nil
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().Int("jobs", 0, "concurrent module builds (default: build.jobs or GOMAXPROCS)")
	cmd.Flags().Bool("cache", false, "cache loader output on disk (overrides build.cache)")
}

func formatPathForOutput(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, filepath.FromSlash(path))
	if err != nil {
		return path
	}
	if strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
