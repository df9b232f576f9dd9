package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"webgenie/internal/config"
	"webgenie/internal/generator"
	"webgenie/internal/logging"
)

var (
	generateFrom string
	generateOut  string
)

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate a website from a description",
	Long: `Asks the generation service for a complete HTML document built from the
prompt. With --from the document in that file is revised instead of starting
from scratch. Requires GEMINI_API_KEY or ai.api_key in the config file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateFrom, "from", "f", "", "existing HTML file to revise")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "write the document to this file instead of stdout")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Read(configPath)
	if err != nil {
		return err
	}
	if !cfg.AI.IsEnabled() {
		return errors.New("site generation is not configured: set GEMINI_API_KEY")
	}

	var existing string
	if generateFrom != "" {
		data, err := os.ReadFile(generateFrom)
		if err != nil {
			return fmt.Errorf("reading %s: %w", generateFrom, err)
		}
		existing = string(data)
	}

	logger := logging.New(cfg.Log.Level, "text", cmd.ErrOrStderr())
	client := generator.NewClient(logger, cfg.AI)

	html, err := client.Generate(cmd.Context(), strings.Join(args, " "), existing)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if generateOut == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), html)
		return err
	}
	if err := os.WriteFile(generateOut, []byte(html), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", generateOut, err)
	}
	cmd.PrintErrf("Wrote %s\n", generateOut)
	return nil
}
