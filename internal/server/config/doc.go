// Package config provides the validator node configuration.
//
//   - spec.go: NodeConfig struct definition
//   - default.go: default configuration values
//   - verify.go: validation (ranges, addresses, key material)
//   - sanitize.go: log sanitization (hide the inline seed)
//
// Configuration is loaded via internal/infra/confloader from a YAML file
// and VALIDATOR_ prefixed environment variables.
package config
