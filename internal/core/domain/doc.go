// Package domain defines the core domain types of the validator node.
//
// Domain types are pure values without IO dependencies or framework
// coupling. This package contains:
//
//   - Identity: the 32-byte public identifier of a primary or worker
//   - Messages: the requests exchanged between a primary and its workers
//   - Errors: structured error codes, including the local client errors
//     surfaced by the network client
package domain
