package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webgenie/internal/analyzer"
	"webgenie/internal/config"
)

const samplePage = `<!DOCTYPE html><html><head><title>Short</title></head>
<body><h1>Bakery</h1><img src="bread.png"></body></html>`

// execute runs the root command with args and resets the package flags
// afterwards.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(func() {
		analyzeJSON, analyzeWatch = false, false
		generateFrom, generateOut = "", ""
		configPath = ""
		rootCmd.SetArgs(nil)
	})

	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "webgenie version test-version-1.0.0")
}

func TestAnalyzeCmd_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte(samplePage), 0o644))

	out, _, err := execute(t, "", "analyze", path)
	require.NoError(t, err)

	expected := analyzer.Analyze(context.Background(), discardLogger(), samplePage)
	assert.Contains(t, out, "SEO report for "+path)
	assert.Contains(t, out, "FAIL description")
	assert.Contains(t, out, "PASS headings")
	for _, suggestion := range expected.Suggestions {
		assert.Contains(t, out, suggestion)
	}
}

func TestAnalyzeCmd_StdinJSON(t *testing.T) {
	out, _, err := execute(t, samplePage, "analyze", "--json")
	require.NoError(t, err)

	var got analyzer.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, *analyzer.Analyze(context.Background(), discardLogger(), samplePage), got)
}

func TestAnalyzeCmd_Errors(t *testing.T) {
	_, _, err := execute(t, "", "analyze", filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)

	_, _, err = execute(t, "", "analyze", "--watch", "-")
	assert.EqualError(t, err, "--watch needs a file")

	_, _, err = execute(t, "", "analyze", "a.html", "b.html")
	assert.Error(t, err)
}

func TestShouldReanalyze(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{"create after rename", fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{"write and chmod", fsnotify.Event{Name: path, Op: fsnotify.Write | fsnotify.Chmod}, true},
		{"chmod only", fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: path, Op: fsnotify.Remove}, false},
		{"other file", fsnotify.Event{Name: path + ".swp", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldReanalyze(tt.event, path))
		})
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	writeReport(&buf, "page.html", &analyzer.AnalysisResult{
		Score:  100,
		Checks: analyzer.Checks{Title: true, Description: true, Headings: true, Images: true, Links: true, Keywords: true},
	})

	out := buf.String()
	assert.Contains(t, out, "Score: 100/100")
	assert.Contains(t, out, "None, nice work.")
	assert.NotContains(t, out, "FAIL")
	assert.NotContains(t, out, "\x1b[", "non-terminal output is plain")
}

func newGeminiServer(t *testing.T, text string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{"content": map[string]any{"parts": []any{map[string]string{"text": text}}}},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGenerateCmd(t *testing.T) {
	server := newGeminiServer(t, "Here you go:\n```html\n<!DOCTYPE html><html><body>Bakery</body></html>\n```")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_BASE_URL", server.URL)

	out, _, err := execute(t, "", "generate", "a", "bakery")
	require.NoError(t, err)
	assert.Equal(t, "<!DOCTYPE html><html><body>Bakery</body></html>\n", out)

	dest := filepath.Join(t.TempDir(), "site.html")
	_, errOut, err := execute(t, "", "generate", "--out", dest, "a bakery")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Wrote "+dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "<!DOCTYPE html><html><body>Bakery</body></html>", string(data))
}

func TestGenerateCmd_Disabled(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, _, err := execute(t, "", "generate", "a bakery")
	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}

func TestNewApp_ServesHealth(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.SQLiteDir = t.TempDir()
	cfg.Auth.JWTSecret = "test-secret"
	require.NoError(t, cfg.Validate())

	app, err := newApp(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer app.close(context.Background())

	rec := httptest.NewRecorder()
	app.server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, cfg.Server.Addr, app.server.Addr)
}

func TestOpenStore_UnknownMongo(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = config.DriverMongo
	cfg.Storage.MongoURI = "not-a-uri"

	_, err := openStore(context.Background(), cfg)
	assert.Error(t, err)
}
