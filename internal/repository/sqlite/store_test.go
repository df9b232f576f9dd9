package sqlite

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webgenie/internal/model"
	"webgenie/internal/repository"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "webgenie-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close(context.Background()))
		assert.NoError(t, os.RemoveAll(tempDir))
	})
	return store
}

// createTestUser creates a user to satisfy foreign key constraints.
func createTestUser(t *testing.T, store *Store, id, email string) *model.User {
	t.Helper()
	u := &model.User{ID: id, Email: email, Name: "Test " + id, PasswordHash: "hash"}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	tempDir := t.TempDir()

	first, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, first.Close(context.Background()))

	second, err := NewStore(tempDir)
	require.NoError(t, err)
	defer second.Close(context.Background())

	var version int
	require.NoError(t, second.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 2, version)

	templates, err := second.Templates().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, templates, len(repository.SeedTemplates()), "seeding twice adds nothing")
}

func TestTemplateRepo(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	templates, err := store.Templates().List(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 3)
	assert.Equal(t, []string{"Bakery", "Landing Page", "Portfolio"},
		[]string{templates[0].Name, templates[1].Name, templates[2].Name})

	seed := repository.SeedTemplates()[0]
	got, err := store.Templates().GetByID(ctx, seed.ID)
	require.NoError(t, err)
	assert.Equal(t, seed.HTML, got.HTML)
	assert.Equal(t, seed.CSS, got.CSS)
	assert.Equal(t, seed.ThumbnailURL, got.ThumbnailURL)
	assert.True(t, seed.CreatedAt.Equal(got.CreatedAt))

	_, err = store.Templates().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	users := store.Users()

	created := createTestUser(t, store, "user-1", "Ada@Example.com")
	assert.False(t, created.UpdatedAt.IsZero())

	t.Run("Get By ID", func(t *testing.T) {
		got, err := users.GetByID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "Ada@Example.com", got.Email)
		assert.Equal(t, "hash", got.PasswordHash)
	})

	t.Run("Get By Email Is Case Insensitive", func(t *testing.T) {
		got, err := users.GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, "user-1", got.ID)
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		err := users.Create(ctx, &model.User{ID: "user-2", Email: "ada@example.com", PasswordHash: "x"})
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("Not Found", func(t *testing.T) {
		_, err := users.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = users.GetByEmail(ctx, "missing@example.com")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestProjectRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	projects := store.Projects()
	createTestUser(t, store, "owner", "owner@example.com")

	p := &model.Project{
		ID:       "proj-1",
		UserID:   "owner",
		Name:     "Landing",
		HTMLCode: "<h1>Hi</h1>",
		IsPublic: true,
	}
	require.NoError(t, projects.Create(ctx, p))
	assert.False(t, p.CreatedAt.IsZero())

	got, err := projects.GetByID(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "Landing", got.Name)
	assert.Equal(t, "<h1>Hi</h1>", got.HTMLCode)
	assert.True(t, got.IsPublic)
	assert.WithinDuration(t, p.CreatedAt, got.CreatedAt, time.Second)

	assert.ErrorIs(t, projects.Create(ctx, p), repository.ErrDuplicate)

	got.Name = "Landing v2"
	got.IsPublic = false
	require.NoError(t, projects.Update(ctx, got))

	updated, err := projects.GetByID(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "Landing v2", updated.Name)
	assert.False(t, updated.IsPublic)

	require.NoError(t, projects.Delete(ctx, "proj-1"))
	_, err = projects.GetByID(ctx, "proj-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, projects.Delete(ctx, "proj-1"), repository.ErrNotFound)
	assert.ErrorIs(t, projects.Update(ctx, &model.Project{ID: "proj-1"}), repository.ErrNotFound)
}

func TestProjectRepo_ListByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	projects := store.Projects()
	createTestUser(t, store, "a", "a@example.com")
	createTestUser(t, store, "b", "b@example.com")

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"old", "newest", "middle"} {
		offset := map[string]time.Duration{"old": 0, "middle": time.Hour, "newest": 2 * time.Hour}[name]
		require.NoError(t, projects.Create(ctx, &model.Project{
			ID:        "a-" + name,
			UserID:    "a",
			Name:      name,
			CreatedAt: base,
			UpdatedAt: base.Add(offset),
		}), "project %d", i)
	}
	require.NoError(t, projects.Create(ctx, &model.Project{ID: "b-only", UserID: "b", Name: "other"}))

	list, err := projects.ListByUser(ctx, "a")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"newest", "middle", "old"}, []string{list[0].Name, list[1].Name, list[2].Name})

	empty, err := projects.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestProjectRepo_ForeignKey(t *testing.T) {
	store := setupTestStore(t)
	err := store.Projects().Create(context.Background(), &model.Project{ID: "orphan", UserID: "ghost", Name: "x"})
	assert.Error(t, err)
}
