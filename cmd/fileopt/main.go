package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/namuan/dev-boost-sub001/internal/cli"
)

func main() {
	if err := run(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			// Partial or cancelled batch; the formatter already reported.
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "fileopt",
		Short: "Optimize images, videos and PDFs",
		Long: `fileopt shrinks images, videos and PDF documents using the best
available tools on the system. File types are detected from content,
quality presets control the size/fidelity trade-off and large batches
are processed in parallel.`,
		Version:       cli.VersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	cli.AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(cli.NewOptimizeCommand())
	rootCmd.AddCommand(cli.NewDetectCommand())
	rootCmd.AddCommand(cli.NewPresetsCommand())
	rootCmd.AddCommand(cli.NewToolsCommand())
	rootCmd.AddCommand(cli.NewConfigCommand())
	rootCmd.AddCommand(cli.NewVersionCommand())

	return rootCmd.Execute()
}
