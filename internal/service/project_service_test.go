package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webgenie/internal/analyzer"
	"webgenie/internal/cache"
	"webgenie/internal/model"
	"webgenie/internal/repository"
	"webgenie/internal/repository/sqlite"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, analysisCache cache.AnalysisCache) *ProjectService {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(ctx) })

	for _, id := range []string{"alice", "bob"} {
		require.NoError(t, store.Users().Create(ctx, &model.User{ID: id, Email: id + "@example.com", PasswordHash: "x"}))
	}
	return NewProjectService(newTestLogger(), store.Projects(), analysisCache)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool     { return &b }

func TestCreate_Defaults(t *testing.T) {
	s := newTestService(t, nil)

	p, err := s.Create(context.Background(), "alice", CreateProjectRequest{})
	require.NoError(t, err)
	assert.Equal(t, defaultProjectName, p.Name)
	assert.Equal(t, StarterTemplate, p.HTMLCode)
	assert.False(t, p.IsPublic)
	assert.NotEmpty(t, p.ID)

	_, err = s.Create(context.Background(), "alice", CreateProjectRequest{Name: string(make([]rune, maxProjectName+1))})
	assert.ErrorIs(t, err, ErrInvalidProject)
}

func TestOwnership(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil)

	private, err := s.Create(ctx, "alice", CreateProjectRequest{Name: "Private"})
	require.NoError(t, err)
	public, err := s.Create(ctx, "alice", CreateProjectRequest{Name: "Public", IsPublic: true})
	require.NoError(t, err)

	_, err = s.Get(ctx, "bob", private.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := s.Get(ctx, "bob", public.ID)
	require.NoError(t, err)
	assert.Equal(t, "Public", got.Name)

	_, err = s.Update(ctx, "bob", public.ID, model.ProjectUpdate{Name: strPtr("Hijacked")})
	assert.ErrorIs(t, err, ErrForbidden, "public projects are read-only for others")
	assert.ErrorIs(t, s.Delete(ctx, "bob", public.ID), ErrForbidden)

	_, err = s.GetPublic(ctx, private.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.GetPublic(ctx, public.ID)
	assert.NoError(t, err)

	_, err = s.Get(ctx, "alice", "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil)

	p, err := s.Create(ctx, "alice", CreateProjectRequest{Name: "Site", HTMLCode: "<p>v1</p>"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, "alice", p.ID, model.ProjectUpdate{
		HTMLCode: strPtr("<p>v2</p>"),
		IsPublic: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "Site", updated.Name, "nil fields are untouched")
	assert.Equal(t, "<p>v2</p>", updated.HTMLCode)
	assert.True(t, updated.IsPublic)

	require.NoError(t, s.Delete(ctx, "alice", p.ID))
	_, err = s.Get(ctx, "alice", p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAnalyze_MatchesAnalyzer(t *testing.T) {
	ctx := context.Background()
	memCache := cache.NewMemoryCache(0)
	s := newTestService(t, memCache)

	p, err := s.Create(ctx, "alice", CreateProjectRequest{Name: "Site", HTMLCode: "<html><head><title>Hi</title></head><body><p>x</p></body></html>"})
	require.NoError(t, err)

	got, err := s.Analyze(ctx, "alice", p.ID)
	require.NoError(t, err)

	want := analyzer.Analyze(ctx, newTestLogger(), Document(p))
	assert.Equal(t, want, got)
	assert.Equal(t, 1, memCache.Len())

	again, err := s.Analyze(ctx, "alice", p.ID)
	require.NoError(t, err)
	assert.Equal(t, want, again)
	assert.Equal(t, 1, memCache.Len())
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (*analyzer.AnalysisResult, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, *analyzer.AnalysisResult) error {
	return errors.New("cache down")
}

func (failingCache) Close() error { return nil }

func TestAnalyzeHTML_CacheFailureIgnored(t *testing.T) {
	s := newTestService(t, failingCache{})
	result := s.AnalyzeHTML(context.Background(), "<h1>Hello</h1>")
	require.NotNil(t, result)
	assert.Equal(t, analyzer.Analyze(context.Background(), newTestLogger(), "<h1>Hello</h1>"), result)
}

func TestList_WithScores(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil)

	first, err := s.Create(ctx, "alice", CreateProjectRequest{Name: "First", HTMLCode: "<h1>One</h1>"})
	require.NoError(t, err)
	_, err = s.Create(ctx, "bob", CreateProjectRequest{Name: "Bob's"})
	require.NoError(t, err)

	list, err := s.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, analyzer.Analyze(ctx, newTestLogger(), "<h1>One</h1>").Score, list[0].Score)

	empty, err := s.List(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDownload(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil)

	p, err := s.Create(ctx, "alice", CreateProjectRequest{
		Name:     "My Landing Page!",
		HTMLCode: "<html><head></head><body><p>x</p></body></html>",
		CSSCode:  "p { color: red; }",
		JSCode:   "console.log('hi')",
	})
	require.NoError(t, err)

	name, content, err := s.Download(ctx, "alice", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "my-landing-page.html", name)
	assert.Equal(t,
		"<html><head><style>\np { color: red; }\n</style>\n</head><body><p>x</p><script>\nconsole.log('hi')\n</script>\n</body></html>",
		string(content),
	)
}

func TestDownloadName(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{"Landing", "landing.html"},
		{"  Two  Words ", "two-words.html"},
		{"../../etc/passwd", "etcpasswd.html"},
		{"snake_case-name", "snake-case-name.html"},
		{"", "untitled.html"},
		{"!!!", "untitled.html"},
		{"Café Menu", "café-menu.html"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, DownloadName(tc.input))
		})
	}
}

func TestDocument_NoHeadOrBody(t *testing.T) {
	p := &model.Project{HTMLCode: "<p>x</p>", CSSCode: "p{}", JSCode: "go()"}
	assert.Equal(t, "<style>\np{}\n</style>\n<p>x</p><script>\ngo()\n</script>\n", Document(p))
}

func TestTemplateService(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(ctx) })

	s := NewTemplateService(newTestLogger(), store.Templates())

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, list)

	tmpl, err := s.Get(ctx, list[0].ID)
	require.NoError(t, err)

	doc := TemplateDocument(tmpl)
	assert.Contains(t, doc, "<style>\n"+tmpl.CSS+"\n</style>\n</head>")
	assert.Contains(t, doc, "<h1>")

	req := ProjectFromTemplate(tmpl)
	assert.Equal(t, tmpl.Name, req.Name)
	assert.Equal(t, tmpl.HTML, req.HTMLCode)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
