package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"webgenie/internal/analyzer"
	"webgenie/internal/logging"
)

var (
	analyzeJSON  bool
	analyzeWatch bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|url|-]",
	Short: "Score a document for SEO",
	Long: `Runs the SEO checks on an HTML file, a live page (http or https URL) or
standard input ("-" or no argument). With --watch the file is analyzed again
every time it is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the result as JSON")
	analyzeCmd.Flags().BoolVarP(&analyzeWatch, "watch", "w", false, "re-analyze the file whenever it changes")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	source := "-"
	if len(args) == 1 {
		source = args[0]
	}

	ctx := cmd.Context()
	logger := logging.New("warn", "text", cmd.ErrOrStderr())

	if analyzeWatch {
		if source == "-" || isPageURL(source) {
			return errors.New("--watch needs a file")
		}
		return watchFile(ctx, cmd, logger, source)
	}

	result, err := analyzeSource(ctx, logger, cmd.InOrStdin(), source)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), source, result)
}

func analyzeSource(ctx context.Context, logger *slog.Logger, stdin io.Reader, source string) (*analyzer.AnalysisResult, error) {
	switch {
	case source == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return analyzer.Analyze(ctx, logger, string(data)), nil
	case isPageURL(source):
		return analyzer.AnalyzePage(ctx, logger, source)
	default:
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", source, err)
		}
		return analyzer.Analyze(ctx, logger, string(data)), nil
	}
}

func printResult(w io.Writer, source string, result *analyzer.AnalysisResult) error {
	if analyzeJSON {
		return writeJSONReport(w, result)
	}
	if source == "-" {
		source = "stdin"
	}
	writeReport(w, source, result)
	return nil
}

// watchFile analyzes path once and again after every write until ctx is done.
// The parent directory is watched so editors that replace the file on save
// keep triggering.
func watchFile(ctx context.Context, cmd *cobra.Command, logger *slog.Logger, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	report := func() {
		result, err := analyzeSource(ctx, logger, nil, abs)
		if err != nil {
			cmd.PrintErrln("Error:", err)
			return
		}
		if err := printResult(cmd.OutOrStdout(), path, result); err != nil {
			cmd.PrintErrln("Error:", err)
		}
	}

	report()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if shouldReanalyze(event, abs) {
				report()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WarnContext(ctx, "File watcher error", slog.Any("error", err))
		}
	}
}

func shouldReanalyze(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func isPageURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
