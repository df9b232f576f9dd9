package analyzer

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// checkOutcome is what a single check contributes to the result.
type checkOutcome struct {
	passed     bool
	suggestion string
	penalty    int
}

func textLength(s string) int {
	return utf8.RuneCountInString(s)
}

func checkTitle(ctx context.Context, logger *slog.Logger, doc *goquery.Document, metrics *Metrics) checkOutcome {
	title := doc.Find("title").First()
	if title.Length() == 0 || title.Text() == "" {
		logger.DebugContext(ctx, "No title found")
		return checkOutcome{passed: false, suggestion: SuggestionAddTitle, penalty: penaltyMissingTitle}
	}

	length := textLength(title.Text())
	metrics.TitleLength = length
	logger.DebugContext(ctx, "Found title", slog.Int("length", length))

	if length < minTitleLength || length > maxTitleLength {
		return checkOutcome{passed: true, suggestion: SuggestionTitleLength, penalty: penaltyTitleLength}
	}

	return checkOutcome{passed: true}
}

func checkDescription(ctx context.Context, logger *slog.Logger, doc *goquery.Document, metrics *Metrics) checkOutcome {
	meta := doc.Find(`meta[name="description"]`).First()
	content, exists := meta.Attr("content")
	if meta.Length() == 0 || !exists || content == "" {
		logger.DebugContext(ctx, "No meta description found")
		return checkOutcome{passed: false, suggestion: SuggestionAddDescription, penalty: penaltyMissingDescription}
	}

	length := textLength(content)
	metrics.DescriptionLength = length
	logger.DebugContext(ctx, "Found meta description", slog.Int("length", length))

	if length < minDescriptionLength || length > maxDescriptionLength {
		return checkOutcome{passed: true, suggestion: SuggestionDescriptionLength, penalty: penaltyDescriptionLength}
	}

	return checkOutcome{passed: true}
}

func checkHeadings(ctx context.Context, logger *slog.Logger, doc *goquery.Document, metrics *Metrics) checkOutcome {
	count := doc.Find("h1").Length()
	metrics.H1Count = count

	logger.DebugContext(ctx, "Counted h1 headings", slog.Int("count", count))

	switch {
	case count == 0:
		return checkOutcome{passed: false, suggestion: SuggestionAddH1, penalty: penaltyMissingH1}
	case count > 1:
		return checkOutcome{passed: false, suggestion: SuggestionSingleH1, penalty: penaltyMultipleH1}
	default:
		return checkOutcome{passed: true}
	}
}

// checkImages penalizes the document once, however many images lack alt text.
func checkImages(ctx context.Context, logger *slog.Logger, doc *goquery.Document, metrics *Metrics) checkOutcome {
	images := doc.Find("img")
	metrics.ImageCount = images.Length()

	images.Each(func(i int, s *goquery.Selection) {
		if alt, _ := s.Attr("alt"); alt == "" {
			metrics.ImagesMissingAlt++
		}
	})

	logger.DebugContext(ctx, "Scanned images",
		slog.Int("total", metrics.ImageCount),
		slog.Int("missing_alt", metrics.ImagesMissingAlt),
	)

	if metrics.ImagesMissingAlt > 0 {
		return checkOutcome{passed: false, suggestion: SuggestionImageAlt, penalty: penaltyImageAlt}
	}
	return checkOutcome{passed: true}
}

// checkLinks penalizes the document once, however many links have no text.
func checkLinks(ctx context.Context, logger *slog.Logger, doc *goquery.Document, metrics *Metrics) checkOutcome {
	links := doc.Find("a")
	metrics.LinkCount = links.Length()

	links.Each(func(i int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) == "" {
			metrics.LinksWithoutText++
		}
	})

	logger.DebugContext(ctx, "Scanned links",
		slog.Int("total", metrics.LinkCount),
		slog.Int("without_text", metrics.LinksWithoutText),
	)

	if metrics.LinksWithoutText > 0 {
		return checkOutcome{passed: false, suggestion: SuggestionLinkText, penalty: penaltyLinkText}
	}
	return checkOutcome{passed: true}
}

func checkContentLength(ctx context.Context, logger *slog.Logger, doc *goquery.Document, metrics *Metrics) checkOutcome {
	length := textLength(visibleBodyText(doc))
	metrics.BodyTextLength = length

	logger.DebugContext(ctx, "Measured body text", slog.Int("length", length))

	if length < minBodyTextLength {
		return checkOutcome{passed: false, suggestion: SuggestionMoreContent, penalty: penaltyThinContent}
	}
	return checkOutcome{passed: true}
}

// visibleBodyText concatenates the text nodes under <body>, skipping
// elements whose content is never rendered as text.
func visibleBodyText(doc *goquery.Document) string {
	var sb strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				return
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, body := range doc.Find("body").Nodes {
		walk(body)
	}

	return sb.String()
}
