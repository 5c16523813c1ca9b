// Package httpserver provides the operational HTTP server of the
// validator node.
//
// It uses the Go standard library net/http for serving:
//
//   - server.go: listener lifecycle and graceful shutdown
//   - router.go: route table and middleware wiring
//   - middleware.go: request id, panic recovery, access log, rate limit
//
// Endpoint handlers live in the handler subpackage.
package httpserver
