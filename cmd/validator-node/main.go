package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/validator-node/internal/infra/buildinfo"
	"github.com/yndnr/validator-node/internal/infra/confloader"
	"github.com/yndnr/validator-node/internal/infra/shutdown"
	"github.com/yndnr/validator-node/internal/network"
	"github.com/yndnr/validator-node/internal/node"
	"github.com/yndnr/validator-node/internal/server/config"
	"github.com/yndnr/validator-node/internal/server/httpserver"
	"github.com/yndnr/validator-node/internal/storage"
	"github.com/yndnr/validator-node/internal/telemetry/logger"
	"github.com/yndnr/validator-node/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("validator-node %s\n", buildinfo.String())
		return nil
	}

	loader, cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting validator-node",
		slog.Group("build", buildinfo.Attrs()...),
		slog.String("config", *configFile))
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	reg := metric.NewRegistry()

	store, err := initStorage(cfg, reg, log)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	n, err := initNode(cfg, store, reg, log)
	if err != nil {
		store.Close()
		return fmt.Errorf("init node: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownHandler := shutdown.NewHandler(30*time.Second, log)

	// Hooks run in reverse registration order: HTTP first, node last.
	shutdownHandler.OnShutdown("node", func(context.Context) error {
		return n.Stop()
	})
	shutdownHandler.OnShutdown("metrics pump", func(context.Context) error {
		cancel()
		return nil
	})

	relay := metric.NewHistogramRelay(log)
	pump := metric.NewPump(reg, relay, cfg.Metrics.RelayInterval, nil, log)
	go func() {
		if err := pump.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("metrics pump stopped", "error", err)
		}
	}()

	if cfg.Metrics.Addr != "" {
		httpServer := httpserver.New(cfg.Metrics.Addr, httpserver.NewRouter(&httpserver.RouterConfig{
			Health:          n.Client(),
			Relay:           relay,
			NodeRegistry:    reg,
			Logger:          log,
			GlobalRateLimit: cfg.Metrics.RateLimit,
		}))
		shutdownHandler.OnShutdown("http server", httpServer.Shutdown)

		go func() {
			log.Info("HTTP server listening", "addr", cfg.Metrics.Addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("HTTP server error", "error", err)
			}
		}()
	}

	if loader.FilePath() != "" {
		stop, err := watchConfig(loader, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
				return stop()
			})
		}
	}

	if err := n.Start(ctx); err != nil {
		shutdownHandler.Shutdown()
		return fmt.Errorf("start node: %w", err)
	}

	log.Info("node running, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(context.Background()); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("node stopped gracefully")
	return nil
}

// loadConfig loads configuration from defaults, file and environment.
func loadConfig(configFile string) (*confloader.Loader, *config.NodeConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	loader := confloader.NewLoader(opts...)

	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return loader, cfg, nil
}

// initLogger initializes the structured logger and installs it as the
// process default.
func initLogger(cfg *config.NodeConfig) (*slog.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)
	return log, nil
}

// initStorage opens the table store and registers its gauges.
func initStorage(cfg *config.NodeConfig, reg prometheus.Registerer, log *slog.Logger) (*storage.BadgerStore, error) {
	kvCfg := storage.DefaultKVConfig(cfg.Storage.DataDir)
	kvCfg.Badger.SyncWrites = cfg.Storage.SyncWrites
	kvCfg.Badger.GCInterval = cfg.Storage.GCInterval

	store, err := storage.Open(kvCfg, log)
	if err != nil {
		return nil, err
	}
	return store.RegisterMetrics(reg), nil
}

// initNode resolves the primary seed and builds the node.
func initNode(cfg *config.NodeConfig, store *storage.BadgerStore, reg prometheus.Registerer, log *slog.Logger) (*node.Node, error) {
	var seed []byte
	if cfg.Node.Seed != "" {
		s, err := node.ParseSeed(cfg.Node.Seed)
		if err != nil {
			return nil, err
		}
		seed = s
	} else {
		s, created, err := node.LoadOrCreateSeed(cfg.Node.KeyFile)
		if err != nil {
			return nil, err
		}
		if created {
			log.Warn("generated new primary key", "key_file", cfg.Node.KeyFile)
		}
		seed = s
	}

	return node.New(node.Config{
		Seed:    seed,
		Workers: cfg.Node.Workers,
		Logger:  log,
		Network: []network.Option{
			network.WithMaxAttempts(cfg.Network.DiscoveryAttempts),
			network.WithRetryInterval(cfg.Network.DiscoveryInterval),
			network.WithMetrics(network.NewMetrics(reg)),
		},
	}, store)
}

// watchConfig reloads log.level when the config file changes. Other
// settings need a restart.
func watchConfig(loader *confloader.Loader, log *slog.Logger) (func() error, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(loader.FilePath()); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(path string) {
		next := config.Default()
		if err := loader.Reload(next); err != nil {
			log.Warn("config reload failed", "path", path, "error", err)
			return
		}
		if err := config.Verify(next); err != nil {
			log.Warn("reloaded config is invalid", "path", path, "error", err)
			return
		}
		prev := logger.Level()
		if err := logger.SetLevel(next.Log.Level); err != nil {
			log.Warn("log level not changed", "level", next.Log.Level, "error", err)
			return
		}
		if cur := logger.Level(); cur != prev {
			log.Info("log level changed", "from", prev, "to", cur)
		}
	})
	w.StartAsync()
	return w.Stop, nil
}
