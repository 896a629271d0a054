// Package services defines the shared error taxonomy for pipeline stages and
// external collaborators. Stages tag failures with a sentinel marker so the
// orchestrator can decide between retrying with an exclusion and surfacing a
// terminal failure.
package services
