// Package logger builds the node's *slog.Logger.
//
//   - logger.go: handler selection (json or text), one level shared by all
//     loggers and changed at runtime with SetLevel
//   - context.go: request id propagation; records logged with a context
//     carry its request_id
//   - redact.go: masking of key material before it reaches the output
//
// Components take a *slog.Logger and derive their own with
// With("component", ...).
package logger
