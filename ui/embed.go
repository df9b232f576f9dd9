// Package ui embeds the page templates and static assets.
package ui

import "embed"

// Files holds html/*.html templates and static/* assets.
//
//go:embed html static
var Files embed.FS
