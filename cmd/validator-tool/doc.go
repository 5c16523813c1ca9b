// Command validator-tool inspects and maintains a validator node
// database offline.
//
// Usage:
//
//	validator-tool --db-path /var/lib/validator-node/db db list-tables
//	validator-tool -o yaml db table-summary --table our_batches
//	validator-tool db reset-db --keep genesis --yes
package main
