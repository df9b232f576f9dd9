package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"webgenie/internal/model"
	"webgenie/internal/repository"
)

const projectColumns = `id, user_id, name, html_code, css_code, js_code, is_public, created_at, updated_at`

type projectRepo struct {
	db *sql.DB
}

var _ repository.ProjectRepo = (*projectRepo)(nil)

func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.UserID, p.Name, p.HTMLCode, p.CSSCode, p.JSCode, p.IsPublic,
		p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("creating project %s: %w", p.ID, repository.ErrDuplicate)
		}
		return fmt.Errorf("creating project: %w", err)
	}
	return nil
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)

	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	return p, nil
}

func (r *projectRepo) ListByUser(ctx context.Context, userID string) ([]model.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects WHERE user_id = ?
		ORDER BY updated_at DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func (r *projectRepo) Update(ctx context.Context, p *model.Project) error {
	p.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET
			name = ?, html_code = ?, css_code = ?, js_code = ?, is_public = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.HTMLCode, p.CSSCode, p.JSCode, p.IsPublic, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

func (r *projectRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*model.Project, error) {
	var p model.Project
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.HTMLCode, &p.CSSCode, &p.JSCode,
		&p.IsPublic, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
