package govdesk

import "embed"

// EmbeddedAssets contains static assets shipped with the console:
// console.css, charts.js
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
