// Package handler provides the HTTP handlers of the validator node's
// operational endpoints.
//
//   - GET /health: liveness of the network client
//   - GET /metrics: one relayed histogram batch per scrape
package handler
