package logging

import (
	"context"
	"log/slog"
)

// NoopHandler drops every record. Used as the default logger in tests and as
// the base for component loggers when no logger was supplied.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h NoopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h NoopHandler) WithGroup(string) slog.Handler           { return h }
