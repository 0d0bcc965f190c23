package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for blurcheck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blurcheck",
		Short: "Score photos for blur",
		Long: `blurcheck measures how sharp a photo is from the spread of its edge
response around the strongest edge, and tells you whether to retake it.

Images can be local files, file:// URLs, http(s) URLs or Azure blob URLs.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .blurinspector.yaml in current directory, then the user config directory)")

	cmd.AddCommand(NewScoreCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
