// Package main implements the bale CLI.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bale/internal/buildpipeline"
	"bale/internal/compiler"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [path]",
	Short: "Bundle the project",
	Long:  "Bundle the project described by the nearest bale.toml (or bale.yaml) into one chunk per entry.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  buildExecution,
}

func init() {
	buildCmd.Flags().String("ui", "auto", "user interface (auto|on|off)")
	addBuildFlags(buildCmd)
}

func buildExecution(cmd *cobra.Command, args []string) error {
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
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
	req := buildpipeline.BuildRequest{Options: opts}

	var res buildpipeline.BuildResult
	if shouldUseTUI(uiModeValue, quiet) {
		res, err = runBuildWithUI(cmd.Context(), "bale build", &req)
	} else {
		res, err = buildpipeline.Build(cmd.Context(), &req)
	}
	if err != nil {
		dumpTraceRing(cmd)
		if showTimings {
			_ = printStageTimings(os.Stdout, res.Timings)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if !quiet {
		if err := printSummary(out, cfg.Root, res.Compilation); err != nil {
			return err
		}
	}
	printWarnings(cmd.ErrOrStderr(), res.Compilation)
	if showTimings {
		return printStageTimings(out, res.Timings)
	}
	return nil
}

func printSummary(out io.Writer, root string, comp *compiler.Compilation) error {
	if comp == nil {
		return nil
	}
	for _, asset := range comp.Assets {
		if _, err := fmt.Fprintf(out, "emitted %s (%d bytes)\n", formatPathForOutput(root, asset.Path), asset.Size); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "%d modules, %d cached, %d chunks in %s\n",
		len(comp.Modules()), comp.CachedModules(), len(comp.Assets), comp.Duration.Round(time.Millisecond))
	return err
}

func printWarnings(out io.Writer, comp *compiler.Compilation) {
	if comp == nil || comp.Warnings == nil {
		return
	}
	warn := color.New(color.FgYellow)
	for _, d := range comp.Warnings.Items() {
		_, _ = warn.Fprintln(out, d.String())
	}
}
