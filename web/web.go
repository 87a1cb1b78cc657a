// Package web embeds the HTML templates and static assets served by cmd/server.
package web

import "embed"

// Templates holds the page templates under templates/.
//
//go:embed templates/*.html
var Templates embed.FS

// Static holds the stylesheet and other assets under static/.
//
//go:embed static
var Static embed.FS
