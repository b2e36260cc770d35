// Package ui holds the page templates and static assets served by the web application.
package ui

import "embed"

// Files contains templates/*.gohtml and static/*.
//
//go:embed templates/*.gohtml static/*
var Files embed.FS
