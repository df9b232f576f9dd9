package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// textOfLength repeats base and cuts it to exactly n runes.
func textOfLength(base string, n int) string {
	r := []rune(strings.Repeat(base, n/len([]rune(base))+1))
	return string(r[:n])
}

type pageOptions struct {
	title       *string
	description *string
	h1Count     int
	images      []string
	links       []string
	bodyText    string
}

func strPtr(s string) *string { return &s }

func buildPage(o pageOptions) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html><html><head>")
	if o.title != nil {
		fmt.Fprintf(&sb, "<title>%s</title>", *o.title)
	}
	if o.description != nil {
		fmt.Fprintf(&sb, `<meta name="description" content="%s">`, *o.description)
	}
	sb.WriteString("</head><body>")
	for i := 0; i < o.h1Count; i++ {
		fmt.Fprintf(&sb, "<h1>Heading %d</h1>", i+1)
	}
	for _, img := range o.images {
		sb.WriteString(img)
	}
	for _, a := range o.links {
		sb.WriteString(a)
	}
	fmt.Fprintf(&sb, "<p>%s</p>", o.bodyText)
	sb.WriteString("</body></html>")
	return sb.String()
}

func perfectPage() pageOptions {
	return pageOptions{
		title:       strPtr(textOfLength("Handmade ceramics studio ", 45)),
		description: strPtr(textOfLength("Small batch stoneware mugs and bowls, glazed by hand. ", 140)),
		h1Count:     1,
		images:      []string{`<img src="a.png" alt="Blue mug">`, `<img src="b.png" alt="Bowl">`},
		links:       []string{`<a href="/shop">Shop</a>`, `<a href="/about">About us</a>`},
		bodyText:    textOfLength("Every piece is thrown on the wheel in our studio. ", 320),
	}
}

func TestAnalyze_PerfectDocument(t *testing.T) {
	result := Analyze(context.Background(), newTestLogger(), buildPage(perfectPage()))

	if result.Score != 100 {
		t.Errorf("Analyze() score = %d, want 100 (suggestions: %v)", result.Score, result.Suggestions)
	}
	if len(result.Suggestions) != 0 {
		t.Errorf("Analyze() suggestions = %v, want none", result.Suggestions)
	}
	for name, passed := range result.Checks.Map() {
		if !passed {
			t.Errorf("check %q = false, want true", name)
		}
	}
	if result.Metrics.TitleLength != 45 {
		t.Errorf("title length = %d, want 45", result.Metrics.TitleLength)
	}
	if result.Metrics.DescriptionLength != 140 {
		t.Errorf("description length = %d, want 140", result.Metrics.DescriptionLength)
	}
}

func TestAnalyze_Checks(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	testCases := []struct {
		name            string
		mutate          func(o *pageOptions)
		wantScore       int
		wantSuggestions []string
		wantChecks      Checks
	}{
		{
			name:            "Missing Title",
			mutate:          func(o *pageOptions) { o.title = nil },
			wantScore:       85,
			wantSuggestions: []string{SuggestionAddTitle},
			wantChecks:      Checks{Title: false, Description: true, Headings: true, Images: true, Links: true, Keywords: true},
		},
		{
			name:            "Empty Title",
			mutate:          func(o *pageOptions) { o.title = strPtr("") },
			wantScore:       85,
			wantSuggestions: []string{SuggestionAddTitle},
			wantChecks:      Checks{Title: false, Description: true, Headings: true, Images: true, Links: true, Keywords: true},
		},
		{
			name:            "Short Title Still Passes",
			mutate:          func(o *pageOptions) { o.title = strPtr(textOfLength("Short ", 29)) },
			wantScore:       90,
			wantSuggestions: []string{SuggestionTitleLength},
			wantChecks:      Checks{Title: true, Description: true, Headings: true, Images: true, Links: true, Keywords: true},
		},
		{
			name:            "Long Title Still Passes",
			mutate:          func(o *pageOptions) { o.title = strPtr(textOfLength("Long ", 61)) },
			wantScore:       90,
			wantSuggestions: []string{SuggestionTitleLength},
			wantChecks:      Checks{Title: true, Description: true, Headings: true, Images: true, Links: true, Keywords: true},
		},
		{
			name:            "Title At Bounds",
			mutate:          func(o *pageOptions) { o.title = strPtr(textOfLength("Edge ", 30)) },
			wantScore:       100,
			wantSuggestions: []string{},
			wantChecks:      Checks{Title: true, Description: true, Headings: true, Images: true, Links: true, Keywords: true},
		},
		{
			name:            "Missing Description",
			mutate:          func(o *pageOptions) { o.description = nil },
			wantScore:       85,
			wantSuggestions: []string{SuggestionAddDescription},
			wantChecks:      Checks{Title: true, Description: false, Headings: true, Images: true, Links: true, Keywords: true},
		},
		{
			name:            "Empty Description Content",
			mutate:          func(o *pageOptions) { o.description = strPtr("") },
			wantScore:       85,
			wantSuggestions: []string{SuggestionAddDescription},
			wantChecks:      Checks{Title: true, Description: false, Headings: true, Images: true, Links: true, Keywords: true},
		},
		{
			name:            "Short Description",
			mutate:          func(o *pageOptions) { o.description = strPtr(textOfLength("Too short. ", 119)) },
			wantScore:       90,
			wantSuggestions: []string{SuggestionDescriptionLength},
			wantChecks:      Checks{Title: true, Description: true, Headings: true, Images: true, Links: true, Keywords: true},
		},
		{
			name:            "Long Description",
			mutate:          func(o *pageOptions) { o.description = strPtr(textOfLength("Too long. ", 161)) },
			wantScore:       90,
			wantSuggestions: []string{SuggestionDescriptionLength},
			wantChecks:      Checks{Title: true, Description: true, Headings: true, Images: true, Links: true, Keywords: true},
		},
		{
			name:            "No H1",
			mutate:          func(o *pageOptions) { o.h1Count = 0 },
			wantScore:       90,
			wantSuggestions: []string{SuggestionAddH1},
			wantChecks:      Checks{Title: true, Description: true, Headings: false, Images: true, Links: true, Keywords: true},
		},
		{
			name:            "Two H1",
			mutate:          func(o *pageOptions) { o.h1Count = 2 },
			wantScore:       95,
			wantSuggestions: []string{SuggestionSingleH1},
			wantChecks:      Checks{Title: true, Description: true, Headings: false, Images: true, Links: true, Keywords: true},
		},
		{
			name: "Three Images Missing Alt",
			mutate: func(o *pageOptions) {
				o.images = []string{`<img src="1.png">`, `<img src="2.png" alt="">`, `<img src="3.png">`}
			},
			wantScore:       90,
			wantSuggestions: []string{SuggestionImageAlt},
			wantChecks:      Checks{Title: true, Description: true, Headings: true, Images: false, Links: true, Keywords: true},
		},
		{
			name:            "No Images",
			mutate:          func(o *pageOptions) { o.images = nil },
			wantScore:       100,
			wantSuggestions: []string{},
			wantChecks:      Checks{Title: true, Description: true, Headings: true, Images: true, Links: true, Keywords: true},
		},
		{
			name: "Links Without Text",
			mutate: func(o *pageOptions) {
				o.links = []string{`<a href="/x"></a>`, `<a href="/y">   </a>`, `<a href="/z"><img src="z.png" alt="Z"></a>`}
			},
			wantScore:       95,
			wantSuggestions: []string{SuggestionLinkText},
			wantChecks:      Checks{Title: true, Description: true, Headings: true, Images: true, Links: false, Keywords: true},
		},
		{
			name:            "Thin Content",
			mutate:          func(o *pageOptions) { o.bodyText = "Just a few words." },
			wantScore:       90,
			wantSuggestions: []string{SuggestionMoreContent},
			wantChecks:      Checks{Title: true, Description: true, Headings: true, Images: true, Links: true, Keywords: false},
		},
		{
			name: "Every Check Fails",
			mutate: func(o *pageOptions) {
				o.title = nil
				o.description = nil
				o.h1Count = 0
				o.images = []string{`<img src="1.png">`}
				o.links = []string{`<a href="/"></a>`}
				o.bodyText = ""
			},
			wantScore: 35,
			wantSuggestions: []string{
				SuggestionAddTitle,
				SuggestionAddDescription,
				SuggestionAddH1,
				SuggestionImageAlt,
				SuggestionLinkText,
				SuggestionMoreContent,
			},
			wantChecks: Checks{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := perfectPage()
			tc.mutate(&opts)

			result := Analyze(ctx, logger, buildPage(opts))

			if result.Score != tc.wantScore {
				t.Errorf("Analyze() score = %d, want %d", result.Score, tc.wantScore)
			}
			if !reflect.DeepEqual(result.Suggestions, tc.wantSuggestions) {
				t.Errorf("Analyze() suggestions = %v, want %v", result.Suggestions, tc.wantSuggestions)
			}
			if result.Checks != tc.wantChecks {
				t.Errorf("Analyze() checks = %+v, want %+v", result.Checks, tc.wantChecks)
			}
		})
	}
}

func TestAnalyze_EmptyAndFragmentInput(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	inputs := map[string]string{
		"Empty":            ``,
		"Text Only":        `hello`,
		"Fragment":         `<div><p>No head or body here</p></div>`,
		"Unclosed Tags":    `<div><p><span>unterminated`,
		"Garbage Brackets": `<<<>>><//>`,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			result := Analyze(ctx, logger, input)

			if result.Checks.Title || result.Checks.Description {
				t.Errorf("expected title and description checks to fail, got %+v", result.Checks)
			}
			if result.Score > 70 {
				t.Errorf("score = %d, want <= 70", result.Score)
			}
			if !contains(result.Suggestions, SuggestionAddTitle) || !contains(result.Suggestions, SuggestionAddDescription) {
				t.Errorf("suggestions = %v, want title and description suggestions", result.Suggestions)
			}
		})
	}
}

func TestAnalyze_ImageSuggestionEmittedOnce(t *testing.T) {
	page := `<html><body><h1>x</h1><img src="1"><img src="2"><img src="3"></body></html>`
	result := Analyze(context.Background(), newTestLogger(), page)

	if n := count(result.Suggestions, SuggestionImageAlt); n != 1 {
		t.Errorf("image suggestion emitted %d times, want 1", n)
	}
	if result.Metrics.ImagesMissingAlt != 3 {
		t.Errorf("images missing alt = %d, want 3", result.Metrics.ImagesMissingAlt)
	}
	// title 15 + description 15 + images 10 + content 10
	if result.Score != 50 {
		t.Errorf("score = %d, want 50", result.Score)
	}
}

func TestAnalyze_ScriptAndStyleAreNotContent(t *testing.T) {
	opts := perfectPage()
	opts.bodyText = "Short visible text." +
		"<script>" + strings.Repeat("var x = 1;", 50) + "</script>" +
		"<style>" + strings.Repeat("p { color: red; }", 50) + "</style>"

	result := Analyze(context.Background(), newTestLogger(), buildPage(opts))

	if result.Checks.Keywords {
		t.Errorf("keywords check passed on %d chars of visible text", result.Metrics.BodyTextLength)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	inputs := []string{``, buildPage(perfectPage()), `<title>t</title><h1>a</h1><h1>b</h1><a></a>`}

	for _, input := range inputs {
		first := Analyze(ctx, logger, input)
		second := Analyze(ctx, logger, input)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Analyze() not deterministic for %q: %+v vs %+v", input, first, second)
		}
		if first.Score < 0 || first.Score > 100 {
			t.Errorf("score %d out of range", first.Score)
		}
	}
}

func TestAnalyze_ParseFailure(t *testing.T) {
	original := parseDocument
	defer func() { parseDocument = original }()

	parseDocument = func(io.Reader) (*goquery.Document, error) {
		return nil, errors.New("boom")
	}

	result := Analyze(context.Background(), newTestLogger(), "<html>")

	want := &AnalysisResult{Score: 0, Suggestions: []string{SuggestionInvalidMarkup}}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("Analyze() = %+v, want %+v", result, want)
	}
}

func TestAnalyze_PanicBecomesSentinel(t *testing.T) {
	original := parseDocument
	defer func() { parseDocument = original }()

	parseDocument = func(io.Reader) (*goquery.Document, error) {
		panic("parser exploded")
	}

	result := Analyze(context.Background(), newTestLogger(), "<html>")

	if result.Score != 0 || len(result.Suggestions) != 1 || result.Suggestions[0] != SuggestionInvalidMarkup {
		t.Errorf("Analyze() = %+v, want sentinel result", result)
	}
	if result.Checks != (Checks{}) {
		t.Errorf("checks = %+v, want all false", result.Checks)
	}
}

func TestClampScore(t *testing.T) {
	testCases := []struct {
		in, want int
	}{
		{-20, 0},
		{0, 0},
		{55, 55},
		{100, 100},
		{130, 100},
	}
	for _, tc := range testCases {
		if got := clampScore(tc.in); got != tc.want {
			t.Errorf("clampScore(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func contains(list []string, s string) bool {
	return count(list, s) > 0
}

func count(list []string, s string) int {
	n := 0
	for _, v := range list {
		if v == s {
			n++
		}
	}
	return n
}
