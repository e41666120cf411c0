package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bale/internal/cache"
	"bale/internal/project"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove the output directory",
	Long:  "Remove the configured output directory. With --cache the loader cache is dropped too.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().Bool("cache", false, "also drop the on-disk loader cache")
}

func runClean(cmd *cobra.Command, args []string) error {
	dropCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return err
	}
	cfg, err := loadProjectConfig(cmd, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	outPath := cfg.File.Output.Path
	if outPath == "" {
		outPath = "dist"
	}
	targetDir := filepath.FromSlash(project.Join(filepath.ToSlash(cfg.Root), outPath))
	if err := removeDir(targetDir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		fmt.Fprintln(out, "output directory not found")
	} else {
		fmt.Fprintf(out, "removed %s\n", formatPathForOutput(cfg.Root, targetDir))
	}

	if !dropCache {
		return nil
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return err
	}
	disk, err := cache.OpenDisk(dir)
	if err != nil {
		return err
	}
	if err := disk.DropAll(); err != nil {
		return fmt.Errorf("failed to drop cache: %w", err)
	}
	fmt.Fprintf(out, "dropped cache %s\n", disk.Dir())
	return nil
}

func removeDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %q: %w", dir, err)
	}
	return nil
}
