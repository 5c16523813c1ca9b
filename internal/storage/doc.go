// Package storage provides the node's persistent table store.
//
// BadgerStore keeps named tables in a single Badger v3 database. A key
// is stored as <table>\x00<key>, so a table is a key prefix and dropping
// a table is a prefix drop.
//
//   - kv.go: configuration, table names, shared types
//   - badger.go: open/close, point operations, scans, GC and metrics
//   - inspect.go: table listing, paging, size summaries, duplicate
//     detection and reset to genesis, used by validator-tool
package storage
