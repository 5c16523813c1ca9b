// Package metric provides Prometheus metrics for the validator node.
//
//   - prometheus.go: node registry with runtime collectors and its HTTP handler
//   - relay.go: HistogramRelay, a FIFO of gathered histogram batches
//   - pump.go: periodic transfer from the node registry into the relay
//
// The relay is scraped at /metrics; every scrape consumes one batch.
package metric
