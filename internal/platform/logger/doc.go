// Package logger provides structured logging functionality for the application.
//
// It builds JSON log/slog loggers with a configurable level and carries a
// request-scoped logger through context.Context so that every log line of a
// request shares its trace ID.
package logger
