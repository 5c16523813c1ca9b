// Command validator-node runs one validator node: a primary and its
// workers sharing an in-process network client, backed by a badger
// table store.
//
// Configuration is read from an optional YAML file and VALIDATOR_*
// environment variables. The operational HTTP endpoint serves /health,
// /metrics (histogram relay) and /metrics/node (full registry).
package main
