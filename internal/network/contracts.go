package network

import (
	"context"
	"crypto/ed25519"

	"github.com/yndnr/validator-node/internal/core/domain"
)

// PrimaryToWorker is served by a worker and called by its own primary.
type PrimaryToWorker interface {
	Synchronize(ctx context.Context, msg *domain.WorkerSynchronizeMessage) error
}

// WorkerToWorker is served by a worker and called by the node's other
// workers.
type WorkerToWorker interface {
	ReportBatch(ctx context.Context, msg *domain.WorkerOthersBatchMessage) error
}

// WorkerToPrimary is served by the primary and called by its own workers.
type WorkerToPrimary interface {
	ReportOurBatch(ctx context.Context, msg *domain.WorkerOurBatchMessage) error
	ReportOthersBatch(ctx context.Context, msg *domain.WorkerOthersBatchMessage) error
}

// PrimaryToOwnWorkerClient is used by the primary to reach its own workers.
type PrimaryToOwnWorkerClient interface {
	Synchronize(ctx context.Context, worker ed25519.PublicKey, msg *domain.WorkerSynchronizeMessage) error
}

// WorkerToOwnPrimaryClient is used by a worker to reach its own primary.
type WorkerToOwnPrimaryClient interface {
	ReportOurBatch(ctx context.Context, msg *domain.WorkerOurBatchMessage) error
	ReportOthersBatch(ctx context.Context, msg *domain.WorkerOthersBatchMessage) error
}

var (
	_ PrimaryToOwnWorkerClient = (*NetworkClient)(nil)
	_ WorkerToOwnPrimaryClient = (*NetworkClient)(nil)
)
