package config

import "time"

// NodeConfig is the root configuration for validator-node.
type NodeConfig struct {
	Node    NodeSection    `koanf:"node"`
	Network NetworkSection `koanf:"network"`
	Metrics MetricsSection `koanf:"metrics"`
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
}

// NodeSection configures the node's identity and worker count.
type NodeSection struct {
	// KeyFile holds the hex encoded 32-byte ed25519 seed of the primary.
	// Created with a fresh seed if it does not exist.
	KeyFile string `koanf:"key_file"`

	// Seed is an inline hex seed. Takes precedence over KeyFile.
	Seed string `koanf:"seed"`

	// Workers is the number of workers started next to the primary.
	Workers int `koanf:"workers"`
}

// NetworkSection configures handler discovery of the in-process client.
type NetworkSection struct {
	// DiscoveryAttempts is the number of lookups before giving up.
	DiscoveryAttempts int `koanf:"discovery_attempts"`

	// DiscoveryInterval is the wait between two failed lookups.
	DiscoveryInterval time.Duration `koanf:"discovery_interval"`
}

// MetricsSection configures the operational HTTP endpoint.
type MetricsSection struct {
	// Addr is the listen address; empty disables the endpoint.
	Addr string `koanf:"addr"`

	// RelayInterval is how often histograms are pushed into the relay.
	RelayInterval time.Duration `koanf:"relay_interval"`

	// RateLimit caps requests per second (0 = unlimited).
	RateLimit int `koanf:"rate_limit"`
}

// StorageSection configures the table store.
type StorageSection struct {
	DataDir    string        `koanf:"data_dir"`
	SyncWrites bool          `koanf:"sync_writes"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
