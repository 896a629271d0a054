// Package catalog is the client for the video catalog that hosts trailer
// pages. It fetches an access token from the storefront page, resolves
// content URLs to trailer metadata, and exposes the catalog's structured
// search endpoint.
//
// Response bodies are deeply nested and change shape without notice, so
// parsing is defensive throughout: missing fields default instead of
// failing, and nested structures are walked with an explicit worklist.
package catalog
