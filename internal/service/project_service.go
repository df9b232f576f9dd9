// Package service holds the project use cases shared by the HTTP and CLI
// surfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"webgenie/internal/analyzer"
	"webgenie/internal/cache"
	"webgenie/internal/model"
	"webgenie/internal/repository"
)

const (
	defaultProjectName = "Untitled Project"
	maxProjectName     = 200
	downloadFallback   = "untitled"
)

var (
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidProject = errors.New("invalid project")
)

// CreateProjectRequest is the payload accepted by Create.
type CreateProjectRequest struct {
	Name     string `json:"name"`
	HTMLCode string `json:"htmlCode"`
	CSSCode  string `json:"cssCode"`
	JSCode   string `json:"jsCode"`
	IsPublic bool   `json:"isPublic"`
}

type ProjectService struct {
	projects repository.ProjectRepo
	cache    cache.AnalysisCache
	logger   *slog.Logger
	newID    func() string
}

func NewProjectService(logger *slog.Logger, projects repository.ProjectRepo, analysisCache cache.AnalysisCache) *ProjectService {
	return &ProjectService{
		projects: projects,
		cache:    analysisCache,
		logger:   logger.With("component", "projects"),
		newID:    uuid.NewString,
	}
}

func (s *ProjectService) Create(ctx context.Context, userID string, req CreateProjectRequest) (*model.Project, error) {
	name, err := normalizeName(req.Name)
	if err != nil {
		return nil, err
	}
	html := req.HTMLCode
	if strings.TrimSpace(html) == "" {
		html = StarterTemplate
	}

	p := &model.Project{
		ID:       s.newID(),
		UserID:   userID,
		Name:     name,
		HTMLCode: html,
		CSSCode:  req.CSSCode,
		JSCode:   req.JSCode,
		IsPublic: req.IsPublic,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.logger.InfoContext(ctx, "Project created", slog.String("project_id", p.ID), slog.String("user_id", userID))
	return p, nil
}

// Get returns the project if userID owns it or it is public.
func (s *ProjectService) Get(ctx context.Context, userID, id string) (*model.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID && !p.IsPublic {
		return nil, ErrForbidden
	}
	return p, nil
}

// GetPublic returns a public project. Private projects are reported as not found.
func (s *ProjectService) GetPublic(ctx context.Context, id string) (*model.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsPublic {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

// List returns the user's projects, newest first, scored by the analyzer.
func (s *ProjectService) List(ctx context.Context, userID string) ([]model.ProjectSummary, error) {
	projects, err := s.projects.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	items := make([]analyzer.BatchItem, len(projects))
	for i, p := range projects {
		items[i] = analyzer.BatchItem{ID: p.ID, HTML: Document(&p)}
	}
	results := analyzer.AnalyzeBatch(ctx, s.logger, items)

	summaries := make([]model.ProjectSummary, len(projects))
	for i, p := range projects {
		summaries[i] = model.ProjectSummary{
			ID:        p.ID,
			Name:      p.Name,
			IsPublic:  p.IsPublic,
			Score:     results[i].Result.Score,
			UpdatedAt: p.UpdatedAt,
		}
		s.storeAnalysis(ctx, items[i].HTML, results[i].Result)
	}
	return summaries, nil
}

func (s *ProjectService) Update(ctx context.Context, userID, id string, upd model.ProjectUpdate) (*model.Project, error) {
	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name, err := normalizeName(*upd.Name)
		if err != nil {
			return nil, err
		}
		p.Name = name
	}
	if upd.HTMLCode != nil {
		p.HTMLCode = *upd.HTMLCode
	}
	if upd.CSSCode != nil {
		p.CSSCode = *upd.CSSCode
	}
	if upd.JSCode != nil {
		p.JSCode = *upd.JSCode
	}
	if upd.IsPublic != nil {
		p.IsPublic = *upd.IsPublic
	}

	if err := s.projects.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	s.logger.InfoContext(ctx, "Project updated", slog.String("project_id", p.ID))
	return p, nil
}

func (s *ProjectService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	s.logger.InfoContext(ctx, "Project deleted", slog.String("project_id", id))
	return nil
}

// Analyze runs the SEO analysis on the project's assembled document.
func (s *ProjectService) Analyze(ctx context.Context, userID, id string) (*analyzer.AnalysisResult, error) {
	p, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeHTML(ctx, Document(p)), nil
}

// AnalyzeHTML analyzes html through the cache. Cache failures are logged and
// never affect the result.
func (s *ProjectService) AnalyzeHTML(ctx context.Context, html string) *analyzer.AnalysisResult {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, html)
		if err != nil {
			s.logger.WarnContext(ctx, "Analysis cache read failed", slog.Any("error", err))
		} else if ok {
			return cached
		}
	}

	result := analyzer.Analyze(ctx, s.logger, html)
	s.storeAnalysis(ctx, html, result)
	return result
}

// Download returns the file name and contents of the project as a single
// HTML file.
func (s *ProjectService) Download(ctx context.Context, userID, id string) (string, []byte, error) {
	p, err := s.Get(ctx, userID, id)
	if err != nil {
		return "", nil, err
	}
	return DownloadName(p.Name), []byte(Document(p)), nil
}

func (s *ProjectService) owned(ctx context.Context, userID, id string) (*model.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *ProjectService) storeAnalysis(ctx context.Context, html string, result *analyzer.AnalysisResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, html, result); err != nil {
		s.logger.WarnContext(ctx, "Analysis cache write failed", slog.Any("error", err))
	}
}

// Document assembles the project into one HTML document: CSS goes into a
// style element at the end of the head, JS into a script element at the end
// of the body.
func Document(p *model.Project) string {
	doc := p.HTMLCode
	if css := strings.TrimSpace(p.CSSCode); css != "" {
		doc = insertBefore(doc, "</head>", "<style>\n"+css+"\n</style>\n", true)
	}
	if js := strings.TrimSpace(p.JSCode); js != "" {
		doc = insertBefore(doc, "</body>", "<script>\n"+js+"\n</script>\n", false)
	}
	return doc
}

// insertBefore places snippet before the last occurrence of tag. Without the
// tag the snippet is prepended or appended.
func insertBefore(doc, tag, snippet string, prepend bool) string {
	for i := len(doc) - len(tag); i >= 0; i-- {
		if strings.EqualFold(doc[i:i+len(tag)], tag) {
			return doc[:i] + snippet + doc[i:]
		}
	}
	if prepend {
		return snippet + doc
	}
	return doc + snippet
}

// DownloadName turns a project name into a safe "<name>.html" file name.
func DownloadName(name string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case r == '-' || r == '_' || unicode.IsSpace(r):
			if b.Len() > 0 && !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = downloadFallback
	}
	return slug + ".html"
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultProjectName, nil
	}
	if utf8.RuneCountInString(name) > maxProjectName {
		return "", fmt.Errorf("%w: name is longer than %d characters", ErrInvalidProject, maxProjectName)
	}
	return name, nil
}
