// Package logger provides structured logging for padbreak.
//
//   - logger.go: slog handler configuration and the global default logger
//   - context.go: context propagation of run and batch IDs
//   - redact.go: masking of key material and recovered plaintext
package logger
