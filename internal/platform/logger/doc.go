// Package logger provides structured logging for the application.
//
// It configures a log/slog handler from config.LogConfig and carries
// request-scoped loggers through context.Context.
package logger
