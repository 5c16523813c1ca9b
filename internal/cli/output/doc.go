// Package output renders validator-tool results.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: aligned columns via text/tabwriter
//   - json.go: indented JSON
//   - yaml.go: YAML via gopkg.in/yaml.v3
//   - spinner.go: progress animation for long scans
package output
