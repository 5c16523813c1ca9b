// Package confloader loads the node configuration with koanf.
//
// Sources, lowest to highest priority:
//
//  1. Values already present in the target struct (defaults)
//  2. A YAML configuration file
//  3. VALIDATOR_ prefixed environment variables
//  4. Explicit maps (flags, tests)
//
// Watcher reports changes to the configuration file so that runtime
// settings such as log.level can be reloaded.
package confloader
