package storage

import (
	"context"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v3"
	"github.com/spaolacci/murmur3"
)

// SummaryQuantiles are the percentiles reported by TableSummary.
var SummaryQuantiles = []int{25, 50, 75, 90, 99}

// TableSummary describes the size distribution of one table.
type TableSummary struct {
	Table           string         `json:"table" yaml:"table"`
	NumKeys         uint64         `json:"num_keys" yaml:"num_keys"`
	KeyBytesTotal   uint64         `json:"key_bytes_total" yaml:"key_bytes_total"`
	ValueBytesTotal uint64         `json:"value_bytes_total" yaml:"value_bytes_total"`
	KeyQuantiles    map[int]uint64 `json:"key_quantiles" yaml:"key_quantiles"`
	ValueQuantiles  map[int]uint64 `json:"value_quantiles" yaml:"value_quantiles"`
}

// DuplicatesSummary counts values stored more than once across tables.
type DuplicatesSummary struct {
	TotalCount      uint64 `json:"total_count" yaml:"total_count"`
	DuplicateCount  uint64 `json:"duplicate_count" yaml:"duplicate_count"`
	TotalBytes      uint64 `json:"total_bytes" yaml:"total_bytes"`
	DuplicatedBytes uint64 `json:"duplicated_bytes" yaml:"duplicated_bytes"`
}

// ListTables returns the distinct table names, sorted.
func (s *BadgerStore) ListTables(ctx context.Context) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	var tables []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Rewind()
		for it.Valid() {
			if err := ctx.Err(); err != nil {
				return err
			}
			table, _, ok := splitKey(it.Item().Key())
			if !ok {
				it.Next()
				continue
			}
			tables = append(tables, table)
			// Skip the rest of this table: the separator is 0x00, so
			// 0x01 sorts after every key in it.
			next := append([]byte(table), tableSeparator+1)
			it.Seek(next)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

// DumpTable returns page pageNumber (zero-based) of table, pageSize
// entries per page. A page past the end is empty.
func (s *BadgerStore) DumpTable(ctx context.Context, table string, pageSize uint16, pageNumber int) ([]Entry, error) {
	if pageSize == 0 || pageNumber < 0 {
		return nil, fmt.Errorf("invalid page: size %d, number %d", pageSize, pageNumber)
	}

	skip := int(pageSize) * pageNumber
	var out []Entry
	err := s.Scan(ctx, table, func(key, value []byte) bool {
		if skip > 0 {
			skip--
			return true
		}
		out = append(out, Entry{Key: key, Value: value})
		return len(out) < int(pageSize)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TableSummary computes key and value size statistics for table.
func (s *BadgerStore) TableSummary(ctx context.Context, table string) (*TableSummary, error) {
	if err := s.check(ctx, table); err != nil {
		return nil, err
	}

	prefix := tablePrefix(table)
	sum := &TableSummary{Table: table}
	var keySizes, valueSizes []uint64

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			k := uint64(len(item.Key()) - len(prefix))
			v := uint64(item.ValueSize())

			sum.NumKeys++
			sum.KeyBytesTotal += k
			sum.ValueBytesTotal += v
			keySizes = append(keySizes, k)
			valueSizes = append(valueSizes, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sum.KeyQuantiles = quantiles(keySizes, SummaryQuantiles)
	sum.ValueQuantiles = quantiles(valueSizes, SummaryQuantiles)
	return sum, nil
}

// quantiles returns the nearest-rank percentile of each q in qs.
// An empty sample yields zeros.
func quantiles(samples []uint64, qs []int) map[int]uint64 {
	out := make(map[int]uint64, len(qs))
	if len(samples) == 0 {
		for _, q := range qs {
			out[q] = 0
		}
		return out
	}

	slices.Sort(samples)
	for _, q := range qs {
		rank := (q*len(samples) + 99) / 100
		rank = max(1, min(rank, len(samples)))
		out[q] = samples[rank-1]
	}
	return out
}

// DuplicatesSummary hashes every stored value and counts those whose
// content was already seen, across all tables.
func (s *BadgerStore) DuplicatesSummary(ctx context.Context) (*DuplicatesSummary, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	type digest struct{ hi, lo uint64 }
	seen := make(map[digest]struct{})
	sum := &DuplicatesSummary{}

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			if _, _, ok := splitKey(item.Key()); !ok {
				continue
			}
			err := item.Value(func(v []byte) error {
				hi, lo := murmur3.Sum128(v)
				d := digest{hi, lo}
				size := uint64(len(v))

				sum.TotalCount++
				sum.TotalBytes += size
				if _, dup := seen[d]; dup {
					sum.DuplicateCount++
					sum.DuplicatedBytes += size
					return nil
				}
				seen[d] = struct{}{}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}

// ResetToGenesis drops every table not listed in keep. A nil keep
// selects GenesisTables. Returns the dropped table names.
func (s *BadgerStore) ResetToGenesis(ctx context.Context, keep []string) ([]string, error) {
	if keep == nil {
		keep = GenesisTables
	}

	tables, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	var prefixes [][]byte
	var dropped []string
	for _, t := range tables {
		if slices.Contains(keep, t) {
			continue
		}
		prefixes = append(prefixes, tablePrefix(t))
		dropped = append(dropped, t)
	}
	if len(prefixes) == 0 {
		return nil, nil
	}

	if err := s.db.DropPrefix(prefixes...); err != nil {
		return nil, fmt.Errorf("drop tables: %w", err)
	}
	s.logger.Info("database reset to genesis", "kept", keep, "dropped", dropped)
	return dropped, nil
}
