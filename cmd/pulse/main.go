package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔═╗┬ ┬┬  ┌─┐┌─┐
  ╠═╝│ ││  └─┐├┤
  ╩  └─┘┴─┘└─┘└─┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "pulse",
		Short: "Reactive document tooling",
		Long: `Pulse renders reactive document trees on the server.

Signal-driven state feeds bindings that keep regions of a node
tree current; trees serialize to HTML for initial paint and to
JSON for live updates over WebSocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		renderCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func printBanner() {
	fmt.Print(banner)
}

func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
