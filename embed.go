package courseengine

import "embed"

// EmbeddedAssets contains static assets shipped with the framework:
// progress.js, the client for the reader-progress API.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
