package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	plherr "github.com/pohlang/plhub/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔═╗╦  ╦ ╦┬ ┬┌┐
  ╠═╝║  ╠═╣│ │├┴┐
  ╩  ╩═╝╩ ╩└─┘└─┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "plhub",
		Short: "The PohLang development hub",
		Long: `PLHub is the project tool for the PohLang language.

It watches your sources, rebuilds only what changed, and hot-reloads
connected runner clients. Features include:

  • Incremental builds driven by a dependency graph
  • Content-hash build cache persisted across runs
  • Hot reload over WebSocket with per-platform strategies
  • Native file watching with a polling fallback`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		createCmd(),
		devCmd(),
		buildCmd(),
		cleanCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		var perr *plherr.PlhubError
		if errors.As(err, &perr) {
			fmt.Fprintln(os.Stderr, perr.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

// printBanner prints the PLHub ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
