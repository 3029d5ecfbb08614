package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pohlang/plhub/internal/build"
	"github.com/pohlang/plhub/internal/config"
	"github.com/pohlang/plhub/internal/watch"
)

func buildCmd() *cobra.Command {
	var (
		force   bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the project once",
		Long: `Compile the project's sources incrementally and exit.

Only files that changed since the last build (and their dependents) are
recompiled; --force rebuilds everything from scratch.

Examples:
  plhub build
  plhub build --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(force, verbose)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Rebuild every file regardless of the cache")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

func runBuild(force, verbose bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	compiler, err := build.NewPohCompiler(build.PohCompilerConfig{
		ProjectRoot: cfg.Dir(),
		Binary:      cfg.Build.Compiler,
	})
	if err != nil {
		return err
	}

	orchestrator := build.New(build.Options{
		ProjectRoot: cfg.Dir(),
		CachePath:   cfg.CachePath(),
		Roots:       cfg.WatchRoots(),
		Filter:      watch.NewFilter(cfg.Watch.Include, cfg.Watch.Exclude),
		Compiler:    compiler,
		Logger:      newLogger(verbose),
	})

	fmt.Println("  Building...")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	start := time.Now()
	result, err := orchestrator.BuildAll(ctx, force)
	if err != nil {
		return err
	}

	if result.Empty() {
		success("Nothing to build, everything up to date")
		return nil
	}

	for _, failure := range result.Failed {
		errorMsg("%s", failure.Path)
		for _, diag := range failure.Diagnostics {
			info("  %s", diag)
		}
	}

	if !result.OK() {
		return fmt.Errorf("build failed: %d of %d files did not compile",
			len(result.Failed), len(result.Failed)+len(result.Succeeded))
	}

	success("Built %d files in %s", len(result.Succeeded), time.Since(start).Round(time.Millisecond))
	return nil
}
