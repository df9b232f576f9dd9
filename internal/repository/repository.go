// Package repository declares the persistence contracts shared by the
// SQLite and MongoDB drivers.
package repository

import (
	"context"
	"errors"

	"webgenie/internal/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate record")
)

type ProjectRepo interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	// ListByUser returns the user's projects, most recently updated first.
	ListByUser(ctx context.Context, userID string) ([]model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id string) error
}

type UserRepo interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// TemplateRepo reads the template gallery.
type TemplateRepo interface {
	// List returns every template ordered by name.
	List(ctx context.Context) ([]model.Template, error)
	GetByID(ctx context.Context, id string) (*model.Template, error)
}

// Store bundles the repositories of one driver.
type Store interface {
	Projects() ProjectRepo
	Users() UserRepo
	Templates() TemplateRepo
	Close(ctx context.Context) error
}
