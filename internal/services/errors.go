package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoMatch marks discovery exhaustion: no candidate passed validation.
	ErrNoMatch = errors.New("no match found")
	// ErrNetwork marks transient network failures after SSL-fallback retries.
	ErrNetwork = errors.New("network failure")
	// ErrParse marks malformed manifests or response bodies.
	ErrParse = errors.New("parse failure")
	// ErrValidation marks candidates rejected below the score threshold or excluded.
	ErrValidation = errors.New("validation rejected")
	// ErrDownload marks segment assembly or remux failures.
	ErrDownload = errors.New("download failed")
	// ErrExternalTool marks encoding tool invocation failures.
	ErrExternalTool = errors.New("external tool error")
	// ErrConfiguration marks invalid or missing configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrDownload
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether the orchestrator should burn a retry attempt on
// this failure. Discovery exhaustion and configuration problems will not
// improve on a retry; everything else might once the bad source is excluded.
func Retryable(err error) bool {
	switch {
	case errors.Is(err, ErrNoMatch), errors.Is(err, ErrConfiguration):
		return false
	default:
		return true
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
