package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pohlang/plhub/internal/config"
	"github.com/pohlang/plhub/internal/dev"
)

func devCmd() *cobra.Command {
	var (
		port    int
		host    string
		poll    bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development loop",
		Long: `Start the development loop with incremental builds and hot reload.

PLHub watches your source roots, recompiles only the files affected by
each change, and pushes reload instructions to connected runner clients
over WebSocket.

Examples:
  plhub dev
  plhub dev --port=9000
  plhub dev --poll`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(port, host, poll, verbose)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to serve on (default from plhub.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from plhub.json)")
	cmd.Flags().BoolVar(&poll, "poll", false, "Force polling instead of native file watching")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

func runDev(port int, host string, poll, verbose bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	// Apply command-line overrides
	if port > 0 {
		cfg.Dev.Port = port
	}
	if host != "" {
		cfg.Dev.Host = host
	}
	if poll {
		cfg.Watch.Poll = true
	}

	printBanner()
	fmt.Println("  dev")
	fmt.Println()

	server, err := dev.NewServer(dev.ServerOptions{
		Config: cfg,
		Logger: newLogger(verbose),
	})
	if err != nil {
		return err
	}

	info("Project:  %s", cfg.Name)
	info("Watching: %s", cfg.Watch.Roots)
	info("Serving:  %s", cfg.DevURL())
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\n\n  Shutting down...")
		cancel()
	}()

	return server.Run(ctx)
}

// newLogger builds the CLI's structured logger.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
