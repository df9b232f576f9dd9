package analyzer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseDocument is swapped out in tests to exercise the parse failure path.
var parseDocument = func(r io.Reader) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(r)
}

type check func(context.Context, *slog.Logger, *goquery.Document, *Metrics) checkOutcome

// Analyze scores an HTML document. It never fails: markup that cannot be
// parsed yields a zero score with a single suggestion.
func Analyze(ctx context.Context, logger *slog.Logger, markup string) (result *AnalysisResult) {
	logger = logger.With(slog.Int("document_length", len(markup)))
	logger.DebugContext(ctx, "Starting document analysis")

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "Document analysis panicked", slog.Any("panic", r))
			result = invalidMarkupResult()
		}
	}()

	doc, err := parseDocument(strings.NewReader(markup))
	if err != nil {
		logger.WarnContext(ctx, "Failed to parse HTML document", slog.Any("error", err))
		return invalidMarkupResult()
	}

	result = &AnalysisResult{
		Score:       maxScore,
		Suggestions: []string{},
	}

	checks := []struct {
		passed *bool
		run    check
	}{
		{&result.Checks.Title, checkTitle},
		{&result.Checks.Description, checkDescription},
		{&result.Checks.Headings, checkHeadings},
		{&result.Checks.Images, checkImages},
		{&result.Checks.Links, checkLinks},
		{&result.Checks.Keywords, checkContentLength},
	}

	for _, c := range checks {
		outcome := c.run(ctx, logger, doc, &result.Metrics)
		*c.passed = outcome.passed
		if outcome.suggestion != "" {
			result.Suggestions = append(result.Suggestions, outcome.suggestion)
			result.Score -= outcome.penalty
		}
	}

	result.Score = clampScore(result.Score)

	logger.InfoContext(ctx, "Document analysis complete",
		slog.Group("results",
			slog.Int("score", result.Score),
			slog.Int("suggestions", len(result.Suggestions)),
			slog.Any("checks", result.Checks.Map()),
		),
	)

	return result
}

// AnalyzePage fetches a live page and analyzes its markup.
func AnalyzePage(ctx context.Context, logger *slog.Logger, pageURL string) (*AnalysisResult, error) {
	logger = logger.With(slog.String("analyzing_page_url", pageURL))

	if !isValidURL(pageURL) {
		logger.WarnContext(ctx, "Rejected page url")
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, pageURL)
	}

	markup, err := FetchPage(ctx, logger, pageURL)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load web page", slog.Any("error", err))
		return nil, err
	}

	return Analyze(ctx, logger, markup), nil
}

func invalidMarkupResult() *AnalysisResult {
	return &AnalysisResult{
		Score:       0,
		Suggestions: []string{SuggestionInvalidMarkup},
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
