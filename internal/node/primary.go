package node

import (
	"context"
	"crypto/ed25519"
	"log/slog"
	"sync/atomic"

	"github.com/yndnr/validator-node/internal/core/domain"
	"github.com/yndnr/validator-node/internal/network"
	"github.com/yndnr/validator-node/internal/storage"
)

// Primary records the batches reported by the workers and drives their
// synchronization.
type Primary struct {
	identity domain.Identity
	store    BatchStore
	workers  network.PrimaryToOwnWorkerClient
	logger   *slog.Logger

	ourBatches    atomic.Uint64
	othersBatches atomic.Uint64
}

var _ network.WorkerToPrimary = (*Primary)(nil)

// NewPrimary creates the primary. workers is normally the node's
// *network.NetworkClient.
func NewPrimary(identity domain.Identity, store BatchStore, workers network.PrimaryToOwnWorkerClient, logger *slog.Logger) *Primary {
	if logger == nil {
		logger = slog.Default()
	}
	return &Primary{
		identity: identity,
		store:    store,
		workers:  workers,
		logger:   logger.With("component", "primary"),
	}
}

// Identity returns the primary's network identity.
func (p *Primary) Identity() domain.Identity {
	return p.identity
}

// ReportOurBatch persists a batch sealed by one of the node's workers.
func (p *Primary) ReportOurBatch(ctx context.Context, msg *domain.WorkerOurBatchMessage) error {
	if msg == nil {
		return domain.ErrInvalidArgument.WithDetails("nil batch report")
	}
	if err := putJSON(ctx, p.store, storage.TableOurBatches, batchKey(msg.WorkerID, msg.Digest), msg); err != nil {
		return err
	}
	p.ourBatches.Add(1)
	p.logger.Debug("own batch recorded", "worker_id", msg.WorkerID, "digest", msg.Digest.String())
	return nil
}

// ReportOthersBatch persists a batch a worker received from another
// authority.
func (p *Primary) ReportOthersBatch(ctx context.Context, msg *domain.WorkerOthersBatchMessage) error {
	if msg == nil {
		return domain.ErrInvalidArgument.WithDetails("nil batch report")
	}
	if err := putJSON(ctx, p.store, storage.TableOthersBatches, batchKey(msg.WorkerID, msg.Digest), msg); err != nil {
		return err
	}
	p.othersBatches.Add(1)
	p.logger.Debug("others batch recorded", "worker_id", msg.WorkerID, "digest", msg.Digest.String())
	return nil
}

// SendSynchronize asks the worker owning key worker to fetch digests from
// target. It waits for the worker to register if it has not yet.
func (p *Primary) SendSynchronize(ctx context.Context, worker ed25519.PublicKey, target domain.Identity, digests []domain.BatchDigest, certified bool) error {
	msg := &domain.WorkerSynchronizeMessage{
		Digests:     digests,
		Target:      target,
		IsCertified: certified,
	}
	return p.workers.Synchronize(ctx, worker, msg)
}

// BatchCounts returns how many own and others batches were recorded.
func (p *Primary) BatchCounts() (ours, others uint64) {
	return p.ourBatches.Load(), p.othersBatches.Load()
}
