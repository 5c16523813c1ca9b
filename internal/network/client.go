package network

import (
	"crypto/ed25519"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/validator-node/internal/core/domain"
)

// role identifies one of the three handler relations.
type role int

const (
	roleWorkerToPrimary role = iota
	rolePrimaryToWorker
	roleWorkerToWorker
)

func (r role) String() string {
	switch r {
	case roleWorkerToPrimary:
		return "worker_to_primary"
	case rolePrimaryToWorker:
		return "primary_to_worker"
	case roleWorkerToWorker:
		return "worker_to_worker"
	default:
		return "unknown"
	}
}

// registry is the shared state of a NetworkClient. It is only accessed
// under NetworkClient.mu.
type registry struct {
	workerToPrimary WorkerToPrimary
	primaryToWorker map[domain.Identity]PrimaryToWorker
	workerToWorker  map[domain.Identity]WorkerToWorker
	shutdown        bool

	// changed is closed and replaced on every mutation so that waiting
	// lookups re-check immediately.
	changed chan struct{}
}

// NetworkClient is the local handler registry shared by the primary and
// the workers of one node. A *NetworkClient is safe for concurrent use;
// copies of the pointer share the same state.
type NetworkClient struct {
	primary domain.Identity
	cfg     Config
	logger  *slog.Logger

	mu  sync.RWMutex
	reg registry

	waitLog rate.Sometimes
}

// New creates a client for the node whose primary has the given identity.
func New(primary domain.Identity, opts ...Option) *NetworkClient {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &NetworkClient{
		primary: primary,
		cfg:     cfg,
		logger:  cfg.Logger.With("component", "network_client", "primary", primary.ShortString()),
		reg: registry{
			primaryToWorker: make(map[domain.Identity]PrimaryToWorker),
			workerToWorker:  make(map[domain.Identity]WorkerToWorker),
			changed:         make(chan struct{}),
		},
		waitLog: rate.Sometimes{First: 1, Interval: 2 * time.Second},
	}
}

// NewFromKeyPair creates a client whose primary identity is derived from
// the primary's network key pair.
func NewFromKeyPair(priv ed25519.PrivateKey, opts ...Option) (*NetworkClient, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, domain.ErrInvalidArgument.WithDetails(
			fmt.Sprintf("private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(priv)))
	}
	pub, _ := priv.Public().(ed25519.PublicKey)
	id, err := domain.IdentityFromPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return New(id, opts...), nil
}

// NewWithZeroIdentity creates a placeholder client bound to ZeroIdentity.
func NewWithZeroIdentity(opts ...Option) *NetworkClient {
	return New(domain.ZeroIdentity, opts...)
}

// PrimaryIdentity returns the identity of the node's primary.
func (c *NetworkClient) PrimaryIdentity() domain.Identity {
	return c.primary
}

// IsShutdown reports whether Shutdown has been called.
func (c *NetworkClient) IsShutdown() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reg.shutdown
}

// SetWorkerToPrimaryLocalHandler installs the primary's handler for calls
// from its workers, replacing any previous one.
func (c *NetworkClient) SetWorkerToPrimaryLocalHandler(h WorkerToPrimary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reg.shutdown {
		c.logger.Warn("ignoring handler registration after shutdown", "role", roleWorkerToPrimary.String())
		return
	}
	c.reg.workerToPrimary = h
	c.cfg.Metrics.setHandlers(roleWorkerToPrimary, 1)
	c.notifyLocked()

	c.logger.Info("local handler registered", "role", roleWorkerToPrimary.String())
}

// SetPrimaryToWorkerLocalHandler installs the handler of the given worker
// for calls from the primary, replacing any previous one.
func (c *NetworkClient) SetPrimaryToWorkerLocalHandler(worker domain.Identity, h PrimaryToWorker) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reg.shutdown {
		c.logger.Warn("ignoring handler registration after shutdown",
			"role", rolePrimaryToWorker.String(), "worker", worker.ShortString())
		return
	}
	c.reg.primaryToWorker[worker] = h
	c.cfg.Metrics.setHandlers(rolePrimaryToWorker, len(c.reg.primaryToWorker))
	c.notifyLocked()

	c.logger.Info("local handler registered", "role", rolePrimaryToWorker.String(), "worker", worker.ShortString())
}

// SetWorkerToWorkerLocalHandler installs the handler of the given worker
// for calls from the node's other workers, replacing any previous one.
func (c *NetworkClient) SetWorkerToWorkerLocalHandler(worker domain.Identity, h WorkerToWorker) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reg.shutdown {
		c.logger.Warn("ignoring handler registration after shutdown",
			"role", roleWorkerToWorker.String(), "worker", worker.ShortString())
		return
	}
	c.reg.workerToWorker[worker] = h
	c.cfg.Metrics.setHandlers(roleWorkerToWorker, len(c.reg.workerToWorker))
	c.notifyLocked()

	c.logger.Info("local handler registered", "role", roleWorkerToWorker.String(), "worker", worker.ShortString())
}

// Shutdown drops every registered handler and makes all further lookups
// fail with domain.ErrShuttingDown. It is idempotent.
func (c *NetworkClient) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reg.shutdown {
		return
	}

	c.reg.workerToPrimary = nil
	clear(c.reg.primaryToWorker)
	clear(c.reg.workerToWorker)
	c.reg.shutdown = true
	c.notifyLocked()

	for _, r := range []role{roleWorkerToPrimary, rolePrimaryToWorker, roleWorkerToWorker} {
		c.cfg.Metrics.setHandlers(r, 0)
	}

	c.logger.Info("network client shut down")
}

// notifyLocked wakes every waiting lookup. Callers must hold mu for writing.
func (c *NetworkClient) notifyLocked() {
	close(c.reg.changed)
	c.reg.changed = make(chan struct{})
}
