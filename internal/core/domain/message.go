package domain

import (
	"encoding/hex"
	"fmt"
	"time"
)

// BatchDigest is the content hash of a worker batch.
type BatchDigest [32]byte

// String returns the hex encoding of the digest.
func (d BatchDigest) String() string {
	return hex.EncodeToString(d[:])
}

// MarshalText implements encoding.TextMarshaler.
func (d BatchDigest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *BatchDigest) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return ErrInvalidArgument.WithDetails("digest is not hex").WithCause(err)
	}
	if len(b) != len(d) {
		return ErrInvalidArgument.WithDetails(fmt.Sprintf("digest must be %d bytes, got %d", len(d), len(b)))
	}
	copy(d[:], b)
	return nil
}

// BatchMetadata describes a batch sealed by a worker.
type BatchMetadata struct {
	// CreatedAt is the seal time in Unix milliseconds.
	CreatedAt int64 `json:"created_at"`
}

// NewBatchMetadata returns metadata stamped with t.
func NewBatchMetadata(t time.Time) BatchMetadata {
	return BatchMetadata{CreatedAt: t.UnixMilli()}
}

// WorkerSynchronizeMessage asks a worker to fetch the listed batches from
// the target worker.
type WorkerSynchronizeMessage struct {
	Digests     []BatchDigest `json:"digests"`
	Target      Identity      `json:"target"`
	IsCertified bool          `json:"is_certified"`
}

// WorkerOurBatchMessage reports a batch sealed by one of the node's own
// workers to the primary.
type WorkerOurBatchMessage struct {
	Digest   BatchDigest   `json:"digest"`
	WorkerID uint32        `json:"worker_id"`
	Metadata BatchMetadata `json:"metadata"`
}

// WorkerOthersBatchMessage reports a batch received from another
// authority's worker.
type WorkerOthersBatchMessage struct {
	Digest   BatchDigest `json:"digest"`
	WorkerID uint32      `json:"worker_id"`
}
