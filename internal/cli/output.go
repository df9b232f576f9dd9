package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"webgenie/internal/analyzer"
)

// reportStyles styles the human readable analysis report. Styles come from a
// renderer bound to the output so pipes and files get plain text.
type reportStyles struct {
	title    lipgloss.Style
	good     lipgloss.Style
	fair     lipgloss.Style
	poor     lipgloss.Style
	pass     lipgloss.Style
	fail     lipgloss.Style
	muted    lipgloss.Style
	sections lipgloss.Style
}

func newReportStyles(w io.Writer) reportStyles {
	r := lipgloss.NewRenderer(w)
	return reportStyles{
		title:    r.NewStyle().Bold(true),
		good:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		fair:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		poor:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		pass:     r.NewStyle().Foreground(lipgloss.Color("42")),
		fail:     r.NewStyle().Foreground(lipgloss.Color("196")),
		muted:    r.NewStyle().Foreground(lipgloss.Color("245")),
		sections: r.NewStyle().Bold(true).Underline(true).MarginTop(1),
	}
}

func (s reportStyles) score(score int) lipgloss.Style {
	switch {
	case score >= 80:
		return s.good
	case score >= 50:
		return s.fair
	default:
		return s.poor
	}
}

func writeReport(w io.Writer, source string, result *analyzer.AnalysisResult) {
	s := newReportStyles(w)

	fmt.Fprintf(w, "%s %s\n", s.title.Render("SEO report for"), source)
	fmt.Fprintf(w, "Score: %s\n", s.score(result.Score).Render(fmt.Sprintf("%d/100", result.Score)))

	fmt.Fprintln(w, s.sections.Render("Checks"))
	for _, name := range analyzer.CheckNames {
		if result.Checks.Passed(name) {
			fmt.Fprintf(w, "  %s %s\n", s.pass.Render("PASS"), name)
		} else {
			fmt.Fprintf(w, "  %s %s\n", s.fail.Render("FAIL"), name)
		}
	}

	fmt.Fprintln(w, s.sections.Render("Suggestions"))
	if len(result.Suggestions) == 0 {
		fmt.Fprintf(w, "  %s\n", s.muted.Render("None, nice work."))
	}
	for _, suggestion := range result.Suggestions {
		fmt.Fprintf(w, "  - %s\n", suggestion)
	}

	m := result.Metrics
	fmt.Fprintln(w, s.muted.Render(strings.Join([]string{
		fmt.Sprintf("title %d chars", m.TitleLength),
		fmt.Sprintf("description %d chars", m.DescriptionLength),
		fmt.Sprintf("%d h1", m.H1Count),
		fmt.Sprintf("%d/%d images without alt", m.ImagesMissingAlt, m.ImageCount),
		fmt.Sprintf("%d/%d links without text", m.LinksWithoutText, m.LinkCount),
		fmt.Sprintf("%d chars of body text", m.BodyTextLength),
	}, ", ")))
}

func writeJSONReport(w io.Writer, result *analyzer.AnalysisResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
