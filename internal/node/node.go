package node

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/yndnr/validator-node/internal/core/domain"
	"github.com/yndnr/validator-node/internal/network"
	"github.com/yndnr/validator-node/internal/storage"
)

// genesisKey is the key of the committee record in the genesis table.
var genesisKey = []byte("committee")

// Store is the batch store owned by a node.
type Store interface {
	BatchStore
	Close() error
}

// Config configures a node.
type Config struct {
	// Seed is the primary key seed. Worker keys are derived from it.
	Seed []byte

	// Workers is the number of workers to run.
	Workers int

	Clock  clock.Clock
	Logger *slog.Logger

	// Network options are applied after the node's own clock and logger.
	Network []network.Option
}

// Node runs one primary and its workers over a shared network client.
type Node struct {
	client  *network.NetworkClient
	store   Store
	primary *Primary
	workers []*Worker
	clock   clock.Clock
	logger  *slog.Logger

	stopOnce sync.Once
	stopErr  error
}

// genesisRecord describes the committee a database was created for.
type genesisRecord struct {
	Primary   domain.Identity   `json:"primary"`
	Workers   []domain.Identity `json:"workers"`
	CreatedAt int64             `json:"created_at"`
}

// New builds a node over store. The node owns store and closes it on Stop.
func New(cfg Config, store Store) (*Node, error) {
	if len(cfg.Seed) != SeedSize {
		return nil, domain.ErrInvalidArgument.WithDetails(
			fmt.Sprintf("seed must be %d bytes, got %d", SeedSize, len(cfg.Seed)))
	}
	if cfg.Workers < 1 {
		return nil, domain.ErrInvalidArgument.WithDetails("node needs at least one worker")
	}
	if store == nil {
		return nil, domain.ErrInvalidArgument.WithDetails("store is required")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := make([]network.Option, 0, len(cfg.Network)+2)
	opts = append(opts, network.WithClock(clk), network.WithLogger(logger))
	opts = append(opts, cfg.Network...)

	client, err := network.NewFromKeyPair(ed25519.NewKeyFromSeed(cfg.Seed), opts...)
	if err != nil {
		return nil, err
	}

	n := &Node{
		client:  client,
		store:   store,
		primary: NewPrimary(client.PrimaryIdentity(), store, client, logger),
		clock:   clk,
		logger:  logger.With("component", "node"),
	}

	for i := range cfg.Workers {
		id := uint32(i)
		key, err := DeriveWorkerKey(cfg.Seed, id)
		if err != nil {
			return nil, err
		}
		w, err := NewWorker(id, key, store, client, clk, logger)
		if err != nil {
			return nil, err
		}
		n.workers = append(n.workers, w)
	}
	return n, nil
}

// Client returns the node's network client.
func (n *Node) Client() *network.NetworkClient {
	return n.client
}

// Primary returns the node's primary.
func (n *Node) Primary() *Primary {
	return n.primary
}

// Workers returns the node's workers ordered by id.
func (n *Node) Workers() []*Worker {
	return n.workers
}

// Start launches the primary and the workers concurrently. Each registers
// its handlers and then waits until the peers it talks to are reachable.
// Start returns the first discovery failure, if any.
func (n *Node) Start(ctx context.Context) error {
	if err := n.writeGenesis(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n.client.SetWorkerToPrimaryLocalHandler(n.primary)
		for _, w := range n.workers {
			if _, err := n.client.GetPrimaryToWorkerHandler(gctx, w.Identity()); err != nil {
				return fmt.Errorf("primary: waiting for worker %d: %w", w.ID(), err)
			}
		}
		return nil
	})

	for _, w := range n.workers {
		g.Go(func() error {
			n.client.SetPrimaryToWorkerLocalHandler(w.Identity(), w)
			n.client.SetWorkerToWorkerLocalHandler(w.Identity(), w)
			if _, err := n.client.GetWorkerToPrimaryHandler(gctx); err != nil {
				return fmt.Errorf("worker %d: waiting for primary: %w", w.ID(), err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	n.logger.Info("node started",
		"primary", n.primary.Identity().String(),
		"workers", len(n.workers))
	return nil
}

// writeGenesis records the committee on first start.
func (n *Node) writeGenesis(ctx context.Context) error {
	_, err := n.store.Get(ctx, storage.TableGenesis, genesisKey)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrKeyNotFound) {
		return fmt.Errorf("read genesis: %w", err)
	}

	rec := genesisRecord{
		Primary:   n.primary.Identity(),
		CreatedAt: n.clock.Now().UnixMilli(),
	}
	for _, w := range n.workers {
		rec.Workers = append(rec.Workers, w.Identity())
	}
	return putJSON(ctx, n.store, storage.TableGenesis, genesisKey, rec)
}

// Stop shuts the network client down and closes the store. Calls after
// the first return the first call's result.
func (n *Node) Stop() error {
	n.stopOnce.Do(func() {
		n.client.Shutdown()
		n.stopErr = n.store.Close()
		n.logger.Info("node stopped")
	})
	return n.stopErr
}
