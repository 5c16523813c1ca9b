package storage

import (
	"errors"
	"time"
)

// Tables written by the node.
const (
	TableGenesis       = "genesis"
	TableOurBatches    = "our_batches"
	TableOthersBatches = "others_batches"
	TableWorkerBatches = "worker_batches"
	TableSyncRequests  = "sync_requests"
)

// GenesisTables are the tables ResetToGenesis keeps when none are given.
var GenesisTables = []string{TableGenesis}

// tableSeparator splits the table name from the user key.
const tableSeparator = 0x00

// Common errors
var (
	ErrKeyNotFound  = errors.New("key not found")
	ErrClosed       = errors.New("store closed")
	ErrInvalidTable = errors.New("invalid table name")
)

// Entry is a single key/value pair of a table.
type Entry struct {
	Key   []byte
	Value []byte
}

// KVStats contains storage engine statistics.
type KVStats struct {
	// TotalSize is the total disk usage in bytes.
	TotalSize uint64

	// LSMSize is the LSM tree size.
	LSMSize uint64

	// ValueLogSize is the value log size.
	ValueLogSize uint64

	// LastGCTime is the last GC run timestamp (Unix milliseconds).
	LastGCTime int64

	// GCRuns is the number of value log files rewritten by GC.
	GCRuns uint64
}

// KVConfig configures the embedded store.
type KVConfig struct {
	// Dir is the storage directory.
	Dir string

	// InMemory keeps all data in memory; Dir is ignored.
	InMemory bool

	// ReadOnly opens an existing directory without write access.
	ReadOnly bool

	Badger BadgerConfig
}

// BadgerConfig contains Badger-specific tuning parameters.
type BadgerConfig struct {
	// GCInterval is the interval between automatic GC runs.
	// Zero disables the GC loop. Default: 10m
	GCInterval time.Duration

	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Default: 0.5 (rewrite a value log file when 50% of it is stale)
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 64MB
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 256MB
	ValueLogFileSize int64

	// NumMemtables is the number of memtables.
	// Default: 2
	NumMemtables int

	// SyncWrites enables sync writes (fsync after each write).
	// Default: true (batch reports must survive a crash)
	SyncWrites bool
}

// DefaultKVConfig returns the default KV configuration.
func DefaultKVConfig(dir string) KVConfig {
	return KVConfig{
		Dir:    dir,
		Badger: DefaultBadgerConfig(),
	}
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCInterval:       10 * time.Minute,
		GCThreshold:      0.5,
		CacheSize:        64 << 20,  // 64MB
		ValueLogFileSize: 256 << 20, // 256MB
		NumMemtables:     2,
		SyncWrites:       true,
	}
}
