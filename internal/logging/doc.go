// Package logging wires log/slog with the handlers and helpers the rest of
// trailgrab uses: a human-oriented console handler, a JSON handler for log
// files, typed attribute constructors, and standardized field names so the
// pipeline stages emit consistent structured output.
package logging
