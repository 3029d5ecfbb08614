package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pohlang/plhub/internal/config"
)

func cleanCmd() *cobra.Command {
	var artifacts bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the build cache",
		Long: `Remove the build cache so the next build starts cold.

With --artifacts, compiled .pbc files under the watch roots are removed
as well.

Examples:
  plhub clean
  plhub clean --artifacts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(artifacts)
		},
	}

	cmd.Flags().BoolVarP(&artifacts, "artifacts", "a", false, "Also remove compiled .pbc files")

	return cmd
}

func runClean(artifacts bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	cachePath := cfg.CachePath()
	if err := os.Remove(cachePath); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		info("No build cache at %s", cachePath)
	} else {
		success("Removed build cache %s", cachePath)
	}

	if !artifacts {
		return nil
	}

	removed := 0
	for _, root := range cfg.WatchRoots() {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			if strings.EqualFold(filepath.Ext(path), ".pbc") {
				if err := os.Remove(path); err != nil {
					warn("Could not remove %s: %v", path, err)
					return nil
				}
				removed++
			}
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	success("Removed %d compiled artifacts", removed)
	return nil
}
