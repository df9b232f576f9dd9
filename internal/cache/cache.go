// Package cache memoizes analysis results keyed by document content.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"webgenie/internal/analyzer"
)

const keyPrefix = "webgenie:analysis:"

// AnalysisCache stores analysis results by the SHA-256 of the analyzed html.
// A miss is (nil, false, nil).
type AnalysisCache interface {
	Get(ctx context.Context, html string) (*analyzer.AnalysisResult, bool, error)
	Set(ctx context.Context, html string, result *analyzer.AnalysisResult) error
	Close() error
}

// Key returns the cache key of html.
func Key(html string) string {
	sum := sha256.Sum256([]byte(html))
	return keyPrefix + hex.EncodeToString(sum[:])
}
