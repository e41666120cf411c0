package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bale/internal/buildpipeline"
	"bale/internal/cache"
	"bale/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] [path]",
	Short: "Rebuild whenever a bundled file changes",
	Long: `Build once, then watch every file the build read and rebuild after changes.
Loader output is kept in memory between rebuilds.`,
	Args: cobra.MaximumNArgs(1),
	RunE: watchExecution,
}

func init() {
	watchCmd.Flags().Duration("debounce", 150*time.Millisecond, "quiet period before rebuilding")
	watchCmd.Flags().StringSlice("ignore", nil, "extra glob patterns to ignore (relative to the project root)")
	watchCmd.Flags().Bool("clear", false, "clear the screen before each rebuild report")
	addBuildFlags(watchCmd)
}

func watchExecution(cmd *cobra.Command, args []string) error {
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	ignore, err := cmd.Flags().GetStringSlice("ignore")
	if err != nil {
		return err
	}
	clearScreen, err := cmd.Flags().GetBool("clear")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}

	cfg, err := loadProjectConfig(cmd, args)
	if err != nil {
		return err
	}
	opts, err := compilerOptions(cmd, cfg)
	if err != nil {
		return err
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewMemory(0)
	}
	pipeline, err := buildpipeline.New(opts, nil)
	if err != nil {
		return err
	}

	outDir := pipeline.Compiler().OutputDir()
	if rel, err := filepath.Rel(cfg.Root, filepath.FromSlash(outDir)); err == nil {
		ignore = append(ignore, filepath.ToSlash(rel)+"/**")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	var lastRes *buildpipeline.BuildResult
	w, err := watch.New(watch.Config{
		Root:     cfg.Root,
		Ignore:   ignore,
		Debounce: debounce,
		Logger:   opts.Logger,
		Build: func(ctx context.Context) ([]string, error) {
			res, err := pipeline.Run(ctx)
			lastRes = &res
			return res.Compilation.FileDependencies(), err
		},
		OnResult: func(r watch.Result) {
			if clearScreen {
				fmt.Fprint(out, "\033[2J\033[H")
			}
			for _, changed := range r.Changed {
				fmt.Fprintf(out, "changed %s\n", formatPathForOutput(cfg.Root, changed))
			}
			if r.Err != nil {
				printError(os.Stderr, r.Err)
				dumpTraceRing(cmd)
				return
			}
			if !quiet && lastRes != nil {
				_ = printSummary(out, cfg.Root, lastRes.Compilation)
			}
			if lastRes != nil {
				printWarnings(cmd.ErrOrStderr(), lastRes.Compilation)
			}
			_, _ = color.New(color.Faint).Fprintln(out, "watching for changes...")
		},
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
