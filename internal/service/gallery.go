package service

import (
	"context"
	"fmt"
	"log/slog"

	"webgenie/internal/model"
	"webgenie/internal/repository"
)

// TemplateService serves the read-only template gallery.
type TemplateService struct {
	templates repository.TemplateRepo
	logger    *slog.Logger
}

func NewTemplateService(logger *slog.Logger, templates repository.TemplateRepo) *TemplateService {
	return &TemplateService{
		templates: templates,
		logger:    logger.With("component", "templates"),
	}
}

func (s *TemplateService) List(ctx context.Context) ([]model.Template, error) {
	templates, err := s.templates.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	return templates, nil
}

func (s *TemplateService) Get(ctx context.Context, id string) (*model.Template, error) {
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading template %s: %w", id, err)
	}
	return t, nil
}

// TemplateDocument is the template with its stylesheet inlined, the document
// the editor opens.
func TemplateDocument(t *model.Template) string {
	return Document(&model.Project{HTMLCode: t.HTML, CSSCode: t.CSS})
}

// ProjectFromTemplate is the create request that copies t into a new project.
func ProjectFromTemplate(t *model.Template) CreateProjectRequest {
	return CreateProjectRequest{
		Name:     t.Name,
		HTMLCode: t.HTML,
		CSSCode:  t.CSS,
	}
}
