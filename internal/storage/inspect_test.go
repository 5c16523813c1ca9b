package storage

import (
	"context"
	"fmt"
	"slices"
	"testing"
)

func fill(t *testing.T, s *BadgerStore, table string, n int, value func(i int) []byte) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		if err := s.Put(ctx, table, []byte(fmt.Sprintf("k%03d", i)), value(i)); err != nil {
			t.Fatal(err)
		}
	}
}

func TestListTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tables, err := s.ListTables(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 0 {
		t.Errorf("ListTables() on empty store = %v, want none", tables)
	}

	fill(t, s, TableOurBatches, 5, func(int) []byte { return []byte("v") })
	fill(t, s, TableGenesis, 1, func(int) []byte { return []byte("g") })
	fill(t, s, TableSyncRequests, 3, func(int) []byte { return []byte("s") })

	tables, err = s.ListTables(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{TableGenesis, TableOurBatches, TableSyncRequests}
	if !slices.Equal(tables, want) {
		t.Errorf("ListTables() = %v, want %v", tables, want)
	}
}

func TestDumpTable(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	fill(t, s, TableWorkerBatches, 7, func(i int) []byte { return []byte{byte(i)} })

	tests := []struct {
		name     string
		pageSize uint16
		page     int
		wantKeys []string
	}{
		{"first page", 3, 0, []string{"k000", "k001", "k002"}},
		{"second page", 3, 1, []string{"k003", "k004", "k005"}},
		{"partial last page", 3, 2, []string{"k006"}},
		{"past the end", 3, 5, nil},
		{"single page", 100, 0, []string{"k000", "k001", "k002", "k003", "k004", "k005", "k006"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := s.DumpTable(ctx, TableWorkerBatches, tt.pageSize, tt.page)
			if err != nil {
				t.Fatal(err)
			}
			var keys []string
			for _, e := range entries {
				keys = append(keys, string(e.Key))
			}
			if !slices.Equal(keys, tt.wantKeys) {
				t.Errorf("DumpTable() keys = %v, want %v", keys, tt.wantKeys)
			}
		})
	}
}

func TestDumpTable_InvalidPage(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.DumpTable(ctx, TableGenesis, 0, 0); err == nil {
		t.Error("DumpTable() with zero page size should fail")
	}
	if _, err := s.DumpTable(ctx, TableGenesis, 10, -1); err == nil {
		t.Error("DumpTable() with negative page should fail")
	}
}

func TestTableSummary(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	// Keys are 4 bytes; value i has i+1 bytes.
	fill(t, s, TableOurBatches, 100, func(i int) []byte { return make([]byte, i+1) })

	sum, err := s.TableSummary(ctx, TableOurBatches)
	if err != nil {
		t.Fatal(err)
	}

	if sum.NumKeys != 100 {
		t.Errorf("NumKeys = %d, want 100", sum.NumKeys)
	}
	if sum.KeyBytesTotal != 400 {
		t.Errorf("KeyBytesTotal = %d, want 400", sum.KeyBytesTotal)
	}
	if sum.ValueBytesTotal != 5050 {
		t.Errorf("ValueBytesTotal = %d, want 5050", sum.ValueBytesTotal)
	}
	for q, want := range map[int]uint64{25: 25, 50: 50, 75: 75, 90: 90, 99: 99} {
		if got := sum.ValueQuantiles[q]; got != want {
			t.Errorf("ValueQuantiles[%d] = %d, want %d", q, got, want)
		}
		if got := sum.KeyQuantiles[q]; got != 4 {
			t.Errorf("KeyQuantiles[%d] = %d, want 4", q, got)
		}
	}
}

func TestTableSummary_EmptyTable(t *testing.T) {
	s := openTestStore(t)

	sum, err := s.TableSummary(context.Background(), TableOthersBatches)
	if err != nil {
		t.Fatal(err)
	}
	if sum.NumKeys != 0 || sum.ValueQuantiles[99] != 0 {
		t.Errorf("empty summary = %+v", sum)
	}
}

func TestQuantiles(t *testing.T) {
	tests := []struct {
		name    string
		samples []uint64
		q       int
		want    uint64
	}{
		{"single", []uint64{7}, 50, 7},
		{"unsorted", []uint64{5, 1, 3}, 50, 3},
		{"p99 of two", []uint64{1, 9}, 99, 9},
		{"p25 of four", []uint64{10, 20, 30, 40}, 25, 10},
		{"empty", nil, 90, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := quantiles(tt.samples, []int{tt.q})[tt.q]; got != tt.want {
				t.Errorf("quantile p%d = %d, want %d", tt.q, got, tt.want)
			}
		})
	}
}

func TestDuplicatesSummary(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// The same payload reported by a worker and stored by the primary.
	fill(t, s, TableWorkerBatches, 3, func(i int) []byte { return []byte(fmt.Sprintf("batch-%d", i)) })
	fill(t, s, TableOurBatches, 2, func(i int) []byte { return []byte(fmt.Sprintf("batch-%d", i)) })
	fill(t, s, TableGenesis, 1, func(int) []byte { return []byte("unique") })

	sum, err := s.DuplicatesSummary(ctx)
	if err != nil {
		t.Fatal(err)
	}

	want := DuplicatesSummary{
		TotalCount:      6,
		DuplicateCount:  2,
		TotalBytes:      5*7 + 6,
		DuplicatedBytes: 2 * 7,
	}
	if *sum != want {
		t.Errorf("DuplicatesSummary() = %+v, want %+v", *sum, want)
	}
}

func TestResetToGenesis(t *testing.T) {
	tests := []struct {
		name        string
		keep        []string
		wantTables  []string
		wantDropped []string
	}{
		{
			name:        "default keeps genesis",
			keep:        nil,
			wantTables:  []string{TableGenesis},
			wantDropped: []string{TableOurBatches, TableWorkerBatches},
		},
		{
			name:        "explicit keep list",
			keep:        []string{TableGenesis, TableWorkerBatches},
			wantTables:  []string{TableGenesis, TableWorkerBatches},
			wantDropped: []string{TableOurBatches},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openTestStore(t)
			ctx := context.Background()
			fill(t, s, TableGenesis, 2, func(int) []byte { return []byte("g") })
			fill(t, s, TableOurBatches, 4, func(int) []byte { return []byte("o") })
			fill(t, s, TableWorkerBatches, 4, func(int) []byte { return []byte("w") })

			dropped, err := s.ResetToGenesis(ctx, tt.keep)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(dropped, tt.wantDropped) {
				t.Errorf("dropped = %v, want %v", dropped, tt.wantDropped)
			}

			tables, err := s.ListTables(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(tables, tt.wantTables) {
				t.Errorf("tables after reset = %v, want %v", tables, tt.wantTables)
			}

			got, err := s.Get(ctx, TableGenesis, []byte("k000"))
			if err != nil || string(got) != "g" {
				t.Errorf("genesis entry = %q, %v; want g", got, err)
			}
		})
	}
}

func TestResetToGenesis_NothingToDrop(t *testing.T) {
	s := openTestStore(t)
	fill(t, s, TableGenesis, 1, func(int) []byte { return []byte("g") })

	dropped, err := s.ResetToGenesis(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(dropped) != 0 {
		t.Errorf("dropped = %v, want none", dropped)
	}
}
