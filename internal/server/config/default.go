package config

import (
	"time"

	"github.com/yndnr/validator-node/internal/network"
	"github.com/yndnr/validator-node/internal/telemetry/metric"
)

// Default configuration values.
const (
	DefaultKeyFile = "/var/lib/validator-node/primary.key"
	DefaultWorkers = 4

	DefaultMetricsAddr = "127.0.0.1:9184"
	DefaultRateLimit   = 100

	DefaultDataDir    = "/var/lib/validator-node/db"
	DefaultGCInterval = 10 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// MaxWorkers bounds node.workers.
const MaxWorkers = 64

// Default returns the default node configuration.
func Default() *NodeConfig {
	return &NodeConfig{
		Node: NodeSection{
			KeyFile: DefaultKeyFile,
			Workers: DefaultWorkers,
		},
		Network: NetworkSection{
			DiscoveryAttempts: network.DefaultMaxAttempts,
			DiscoveryInterval: network.DefaultRetryInterval,
		},
		Metrics: MetricsSection{
			Addr:          DefaultMetricsAddr,
			RelayInterval: metric.DefaultRelayInterval,
			RateLimit:     DefaultRateLimit,
		},
		Storage: StorageSection{
			DataDir:    DefaultDataDir,
			SyncWrites: true,
			GCInterval: DefaultGCInterval,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
