// Package site renders the static marketing pages from embedded Markdown.
package site

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

//go:embed content/*.md
var contentFS embed.FS

var ErrPageNotFound = errors.New("page not found")

// Page is a rendered Markdown document.
type Page struct {
	Slug  string
	Title string
	Body  template.HTML
}

// Pages holds every rendered page, keyed by slug.
type Pages struct {
	bySlug map[string]Page
}

// Load renders all embedded pages.
func Load() (*Pages, error) {
	return LoadFS(contentFS, "content")
}

// LoadFS renders every .md file under dir of fsys. The slug is the file name
// without extension; the title is the first level-one heading.
func LoadFS(fsys fs.FS, dir string) (*Pages, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Typographer),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading page directory: %w", err)
	}

	pages := &Pages{bySlug: make(map[string]Page)}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".md" {
			continue
		}

		src, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading page %s: %w", name, err)
		}

		var buf bytes.Buffer
		if err := md.Convert(src, &buf); err != nil {
			return nil, fmt.Errorf("rendering page %s: %w", name, err)
		}

		slug := strings.TrimSuffix(name, ".md")
		pages.bySlug[slug] = Page{
			Slug:  slug,
			Title: titleOf(src, slug),
			// Content is compiled into the binary, never user supplied.
			Body: template.HTML(buf.String()), //nolint:gosec
		}
	}
	return pages, nil
}

func (p *Pages) Get(slug string) (Page, error) {
	page, ok := p.bySlug[slug]
	if !ok {
		return Page{}, fmt.Errorf("%w: %s", ErrPageNotFound, slug)
	}
	return page, nil
}

// Slugs returns the page slugs in sorted order.
func (p *Pages) Slugs() []string {
	slugs := make([]string, 0, len(p.bySlug))
	for slug := range p.bySlug {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

func titleOf(src []byte, fallback string) string {
	for _, line := range strings.Split(string(src), "\n") {
		if title, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return strings.TrimSpace(title)
		}
	}
	return fallback
}
