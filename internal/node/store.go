package node

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/yndnr/validator-node/internal/core/domain"
)

// BatchStore is the storage the node services write to.
type BatchStore interface {
	Put(ctx context.Context, table string, key, value []byte) error
	Get(ctx context.Context, table string, key []byte) ([]byte, error)
}

// batchKey orders batch records by worker, then digest.
func batchKey(workerID uint32, digest domain.BatchDigest) []byte {
	key := make([]byte, 4+len(digest))
	binary.BigEndian.PutUint32(key, workerID)
	copy(key[4:], digest[:])
	return key
}

func putJSON(ctx context.Context, store BatchStore, table string, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", table, err)
	}
	if err := store.Put(ctx, table, key, data); err != nil {
		return domain.ErrStorageError.WithDetails("write " + table).WithCause(err)
	}
	return nil
}
