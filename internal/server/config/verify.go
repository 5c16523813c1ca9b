package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"os"
	"slices"
	"strings"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "warning", "error"}
	validLogFormats = []string{"json", "text", "console"}
)

// Verify validates the configuration.
func Verify(cfg *NodeConfig) error {
	if err := verifyNode(&cfg.Node); err != nil {
		return err
	}
	if err := verifyNetwork(&cfg.Network); err != nil {
		return err
	}
	if err := verifyMetrics(&cfg.Metrics); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyNode(cfg *NodeSection) error {
	if cfg.Workers < 1 || cfg.Workers > MaxWorkers {
		return fmt.Errorf("node.workers must be between 1 and %d", MaxWorkers)
	}
	if cfg.Seed != "" {
		b, err := hex.DecodeString(cfg.Seed)
		if err != nil || len(b) != 32 {
			return errors.New("node.seed must be 64 hex characters")
		}
		return nil
	}
	if cfg.KeyFile == "" {
		return errors.New("node.key_file is required when node.seed is empty")
	}
	return nil
}

func verifyNetwork(cfg *NetworkSection) error {
	if cfg.DiscoveryAttempts < 1 {
		return errors.New("network.discovery_attempts must be at least 1")
	}
	if cfg.DiscoveryInterval <= 0 {
		return errors.New("network.discovery_interval must be positive")
	}
	return nil
}

func verifyMetrics(cfg *MetricsSection) error {
	if cfg.Addr != "" {
		if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
			return fmt.Errorf("metrics.addr: %w", err)
		}
	}
	if cfg.RelayInterval <= 0 {
		return errors.New("metrics.relay_interval must be positive")
	}
	if cfg.RateLimit < 0 {
		return errors.New("metrics.rate_limit must not be negative")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.DataDir == "" {
		return errors.New("storage.data_dir is required")
	}

	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return errors.New("cannot create data directory: " + err.Error())
	}

	if cfg.GCInterval < 0 {
		return errors.New("storage.gc_interval must not be negative")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !slices.Contains(validLogLevels, strings.ToLower(cfg.Level)) {
		return fmt.Errorf("log.level %q is not one of %v", cfg.Level, validLogLevels)
	}
	if !slices.Contains(validLogFormats, strings.ToLower(cfg.Format)) {
		return fmt.Errorf("log.format %q is not one of %v", cfg.Format, validLogFormats)
	}
	return nil
}
