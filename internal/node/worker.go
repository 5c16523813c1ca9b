package node

import (
	"context"
	"crypto/ed25519"
	"log/slog"

	"github.com/benbjohnson/clock"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/yndnr/validator-node/internal/core/domain"
	"github.com/yndnr/validator-node/internal/network"
	"github.com/yndnr/validator-node/internal/storage"
)

// Worker seals batches and serves synchronization requests from the
// primary and batch reports from peer workers.
type Worker struct {
	id       uint32
	identity domain.Identity
	store    BatchStore
	primary  network.WorkerToOwnPrimaryClient
	clock    clock.Clock
	logger   *slog.Logger
}

var (
	_ network.PrimaryToWorker = (*Worker)(nil)
	_ network.WorkerToWorker  = (*Worker)(nil)
)

// NewWorker creates worker id with network key key. primary is normally
// the node's *network.NetworkClient.
func NewWorker(id uint32, key ed25519.PrivateKey, store BatchStore, primary network.WorkerToOwnPrimaryClient, clk clock.Clock, logger *slog.Logger) (*Worker, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, domain.ErrInvalidArgument.WithDetails("worker key must be an ed25519 private key")
	}
	pub, _ := key.Public().(ed25519.PublicKey)
	identity, err := domain.IdentityFromPublicKey(pub)
	if err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		id:       id,
		identity: identity,
		store:    store,
		primary:  primary,
		clock:    clk,
		logger:   logger.With("component", "worker", "worker_id", id),
	}, nil
}

// ID returns the worker index within the node.
func (w *Worker) ID() uint32 {
	return w.id
}

// Identity returns the worker's network identity.
func (w *Worker) Identity() domain.Identity {
	return w.identity
}

// PublicKey returns the worker's network public key.
func (w *Worker) PublicKey() ed25519.PublicKey {
	return w.identity.PublicKey()
}

// syncRecord is the stored form of a synchronize request.
type syncRecord struct {
	WorkerID   uint32 `json:"worker_id"`
	ReceivedAt int64  `json:"received_at"`
	*domain.WorkerSynchronizeMessage
}

// Synchronize records a synchronize request from the primary. Requests
// are keyed by ULID so a scan returns them in arrival order.
func (w *Worker) Synchronize(ctx context.Context, msg *domain.WorkerSynchronizeMessage) error {
	if msg == nil {
		return domain.ErrInvalidArgument.WithDetails("nil synchronize message")
	}
	now := w.clock.Now()
	id := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy())
	rec := syncRecord{WorkerID: w.id, ReceivedAt: now.UnixMilli(), WorkerSynchronizeMessage: msg}
	if err := putJSON(ctx, w.store, storage.TableSyncRequests, id[:], rec); err != nil {
		return err
	}
	w.logger.Debug("synchronize request recorded",
		"digests", len(msg.Digests),
		"target", msg.Target.ShortString(),
		"certified", msg.IsCertified)
	return nil
}

// ReportBatch handles a batch announced by another authority's worker and
// reports it to the node's primary under this worker's id.
func (w *Worker) ReportBatch(ctx context.Context, msg *domain.WorkerOthersBatchMessage) error {
	if msg == nil {
		return domain.ErrInvalidArgument.WithDetails("nil batch report")
	}
	return w.primary.ReportOthersBatch(ctx, &domain.WorkerOthersBatchMessage{
		Digest:   msg.Digest,
		WorkerID: w.id,
	})
}

// SealBatch stores payload as a new batch and reports its digest to the
// primary. The digest is the BLAKE2b-256 hash of the payload.
func (w *Worker) SealBatch(ctx context.Context, payload []byte) (domain.BatchDigest, error) {
	digest := domain.BatchDigest(blake2b.Sum256(payload))
	if err := w.store.Put(ctx, storage.TableWorkerBatches, digest[:], payload); err != nil {
		return digest, domain.ErrStorageError.WithDetails("write " + storage.TableWorkerBatches).WithCause(err)
	}

	msg := &domain.WorkerOurBatchMessage{
		Digest:   digest,
		WorkerID: w.id,
		Metadata: domain.NewBatchMetadata(w.clock.Now()),
	}
	if err := w.primary.ReportOurBatch(ctx, msg); err != nil {
		return digest, err
	}
	w.logger.Debug("batch sealed", "digest", digest.String(), "size", len(payload))
	return digest, nil
}

// Batch returns a sealed batch payload by digest.
func (w *Worker) Batch(ctx context.Context, digest domain.BatchDigest) ([]byte, error) {
	return w.store.Get(ctx, storage.TableWorkerBatches, digest[:])
}
