// Package cli implements the webgenie command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X webgenie/internal/cli.version=...".
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "webgenie",
	Short: "Build websites from a prompt, preview them live and score their SEO",
	Long: `WebGenie generates responsive websites from a description, previews them
on mobile, tablet and desktop viewports and scores every document for SEO.

Run "webgenie serve" to start the web application.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
