package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"webgenie/internal/model"
	"webgenie/internal/repository"
)

const templateColumns = `id, name, description, html, css, thumbnail_url, created_at`

type templateRepo struct {
	db *sql.DB
}

var _ repository.TemplateRepo = (*templateRepo)(nil)

func (r *templateRepo) List(ctx context.Context) ([]model.Template, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM templates ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	templates := []model.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating templates: %w", err)
	}
	return templates, nil
}

func (r *templateRepo) GetByID(ctx context.Context, id string) (*model.Template, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = ?`, id)

	t, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scanning template: %w", err)
	}
	return t, nil
}

// seedTemplates inserts the built-in templates that are missing.
func (s *Store) seedTemplates(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, t := range repository.SeedTemplates() {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO templates (`+templateColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, t.ID, t.Name, t.Description, t.HTML, t.CSS, t.ThumbnailURL, t.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("seeding template %s: %w", t.Name, err)
		}
	}
	return tx.Commit()
}

func scanTemplate(row rowScanner) (*model.Template, error) {
	var t model.Template
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.HTML, &t.CSS, &t.ThumbnailURL, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
