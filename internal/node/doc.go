// Package node wires one validator node: a primary, its workers, the
// shared in-process network client and the batch store.
//
// The primary and the workers start concurrently and register their
// handlers with the network client when they are ready. Lookups made
// before the peer has registered wait through the client's bounded
// discovery, so start order does not matter.
package node
