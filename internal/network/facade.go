package network

import (
	"context"
	"crypto/ed25519"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/validator-node/internal/core/domain"
	"github.com/yndnr/validator-node/internal/telemetry/logger"
)

// Synchronize asks one of the node's own workers, identified by its network
// public key, to synchronize the listed batches. A key that is not 32 bytes
// fails with domain.ErrInvalidArgument before any discovery is attempted.
func (c *NetworkClient) Synchronize(ctx context.Context, worker ed25519.PublicKey, msg *domain.WorkerSynchronizeMessage) error {
	id, err := domain.IdentityFromPublicKey(worker)
	if err != nil {
		return err
	}

	h, err := c.GetPrimaryToWorkerHandler(ctx, id)
	if err != nil {
		return err
	}

	return c.forward(ctx, "synchronize", func(ctx context.Context) error {
		return h.Synchronize(ctx, msg)
	})
}

// ReportOurBatch reports a batch sealed by this worker to the node's primary.
func (c *NetworkClient) ReportOurBatch(ctx context.Context, msg *domain.WorkerOurBatchMessage) error {
	h, err := c.GetWorkerToPrimaryHandler(ctx)
	if err != nil {
		return err
	}

	return c.forward(ctx, "report_our_batch", func(ctx context.Context) error {
		return h.ReportOurBatch(ctx, msg)
	})
}

// ReportOthersBatch reports a batch received from another authority to the
// node's primary.
func (c *NetworkClient) ReportOthersBatch(ctx context.Context, msg *domain.WorkerOthersBatchMessage) error {
	h, err := c.GetWorkerToPrimaryHandler(ctx)
	if err != nil {
		return err
	}

	return c.forward(ctx, "report_others_batch", func(ctx context.Context) error {
		return h.ReportOthersBatch(ctx, msg)
	})
}

// forward calls a resolved handler. Handler failures are wrapped in
// domain.ErrInternal and not retried.
func (c *NetworkClient) forward(ctx context.Context, method string, call func(context.Context) error) error {
	if logger.RequestIDFromContext(ctx) == "" {
		ctx = logger.WithRequestID(ctx, ulid.Make().String())
	}

	if err := call(ctx); err != nil {
		c.cfg.Metrics.forwardError(method)
		c.logger.DebugContext(ctx, "local handler call failed",
			"method", method,
			"error", err)
		return domain.ErrInternal.Wrap(err)
	}
	return nil
}
