package network

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/validator-node/internal/core/domain"
)

// recordingWorker is a PrimaryToWorker and WorkerToWorker that records
// every call it receives.
type recordingWorker struct {
	name string
	err  error

	mu      sync.Mutex
	syncs   []*domain.WorkerSynchronizeMessage
	reports []*domain.WorkerOthersBatchMessage
}

func (w *recordingWorker) Synchronize(_ context.Context, msg *domain.WorkerSynchronizeMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.syncs = append(w.syncs, msg)
	return w.err
}

func (w *recordingWorker) ReportBatch(_ context.Context, msg *domain.WorkerOthersBatchMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reports = append(w.reports, msg)
	return w.err
}

func (w *recordingWorker) syncCalls() []*domain.WorkerSynchronizeMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*domain.WorkerSynchronizeMessage, len(w.syncs))
	copy(out, w.syncs)
	return out
}

// recordingPrimary is a WorkerToPrimary that records every call it
// receives.
type recordingPrimary struct {
	err error

	mu     sync.Mutex
	ours   []*domain.WorkerOurBatchMessage
	others []*domain.WorkerOthersBatchMessage
}

func (p *recordingPrimary) ReportOurBatch(_ context.Context, msg *domain.WorkerOurBatchMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ours = append(p.ours, msg)
	return p.err
}

func (p *recordingPrimary) ReportOthersBatch(_ context.Context, msg *domain.WorkerOthersBatchMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.others = append(p.others, msg)
	return p.err
}

func (p *recordingPrimary) counts() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ours), len(p.others)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient returns a client with a fast discovery budget.
func newTestClient(t *testing.T, primary domain.Identity, opts ...Option) *NetworkClient {
	t.Helper()
	base := []Option{
		WithMaxAttempts(5),
		WithRetryInterval(10 * time.Millisecond),
		WithLogger(discardLogger()),
	}
	return New(primary, append(base, opts...)...)
}

func newKey(t *testing.T) (ed25519.PublicKey, domain.Identity) {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	id, err := domain.IdentityFromPublicKey(pub)
	if err != nil {
		t.Fatalf("IdentityFromPublicKey() error = %v", err)
	}
	return pub, id
}

func testIdentity(b byte) domain.Identity {
	var id domain.Identity
	for i := range id {
		id[i] = b
	}
	return id
}
