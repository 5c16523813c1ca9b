// Package command defines the validator-tool command tree.
//
// Commands are built with urfave/cli/v2. Every database command opens the
// node's badger store directly, so the node must not be running against
// the same directory while a command that writes (reset-db) executes.
package command
