package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"webgenie/internal/preview"
)

// SandboxCSP is served with every user document. The browser applies it on
// top of the frame's sandbox attribute and also when the document is opened
// outside a frame.
const SandboxCSP = "sandbox " + preview.DocumentSandbox

// DocumentOrigin is where user documents (preview surfaces and public
// projects) are served. The zero value serves them from the app host.
type DocumentOrigin struct {
	base string
	host string
}

// NewDocumentOrigin parses an origin such as https://preview.example.com.
// An empty string yields the zero DocumentOrigin.
func NewDocumentOrigin(raw string) (DocumentOrigin, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return DocumentOrigin{}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return DocumentOrigin{}, fmt.Errorf("preview origin: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || u.Path != "" || u.RawQuery != "" {
		return DocumentOrigin{}, fmt.Errorf("preview origin %q must be scheme://host[:port]", raw)
	}
	return DocumentOrigin{base: u.Scheme + "://" + u.Host, host: u.Host}, nil
}

// String returns the origin, or "" for the app host.
func (o DocumentOrigin) String() string {
	return o.base
}

// URL returns the absolute URL of path on the document origin.
func (o DocumentOrigin) URL(path string) string {
	return o.base + path
}

// redirect sends a request that reached another host to the document origin
// and reports whether it did.
func (o DocumentOrigin) redirect(w http.ResponseWriter, r *http.Request) bool {
	if o.host == "" || strings.EqualFold(r.Host, o.host) {
		return false
	}
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, o.base+r.URL.RequestURI(), http.StatusFound)
	return true
}

// SurfacePath is where the document of a surface is served.
func SurfacePath(sessionID, surfaceID string) string {
	return "/preview/" + sessionID + "/surfaces/" + surfaceID
}

// writeDocument serves a user document under the sandbox policy. The frame
// restriction of app pages does not apply, since the editor may frame it from
// another origin.
func writeDocument(w http.ResponseWriter, html string) {
	h := w.Header()
	h.Del("X-Frame-Options")
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Content-Security-Policy", SandboxCSP)
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}
