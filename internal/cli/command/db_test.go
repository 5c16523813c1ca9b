package command

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/validator-node/internal/storage"
)

// seedStore creates a database in a temp dir and fills it with entries.
func seedStore(t *testing.T, entries map[string][]storage.Entry) string {
	t.Helper()
	dir := t.TempDir()

	cfg := storage.DefaultKVConfig(dir)
	cfg.Badger.GCInterval = 0
	cfg.Badger.SyncWrites = false
	store, err := storage.Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	ctx := context.Background()
	for table, list := range entries {
		for _, e := range list {
			if err := store.Put(ctx, table, e.Key, e.Value); err != nil {
				t.Fatalf("Put(%s) error = %v", table, err)
			}
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return dir
}

// runTool runs the app and returns stdout.
func runTool(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"validator-tool"}, args...))
	return stdout.String(), err
}

func testEntries() map[string][]storage.Entry {
	return map[string][]storage.Entry{
		storage.TableGenesis: {
			{Key: []byte("committee"), Value: []byte("genesis-committee")},
		},
		storage.TableOurBatches: {
			{Key: []byte{0x01}, Value: []byte("batch-a")},
			{Key: []byte{0x02}, Value: []byte("batch-b")},
			{Key: []byte{0x03}, Value: []byte("batch-c")},
		},
		storage.TableWorkerBatches: {
			{Key: []byte{0x01}, Value: []byte("batch-a")},
		},
	}
}

func TestDBCommand(t *testing.T) {
	cmd := DBCommand()
	if cmd.Name != "db" {
		t.Errorf("Name = %q, want db", cmd.Name)
	}

	names := make(map[string]bool)
	for _, sub := range cmd.Subcommands {
		names[sub.Name] = true
		if sub.Action == nil {
			t.Errorf("%s has no action", sub.Name)
		}
	}
	for _, want := range []string{"list-tables", "dump", "table-summary", "duplicates-summary", "reset-db"} {
		if !names[want] {
			t.Errorf("missing subcommand %s", want)
		}
	}
}

func TestListTables(t *testing.T) {
	dir := seedStore(t, testEntries())

	out, err := runTool(t, "--db-path", dir, "-o", "json", "db", "list-tables")
	if err != nil {
		t.Fatalf("list-tables error = %v", err)
	}

	var got tableList
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	want := []string{storage.TableGenesis, storage.TableOurBatches, storage.TableWorkerBatches}
	if strings.Join(got.Tables, ",") != strings.Join(want, ",") {
		t.Errorf("tables = %v, want %v", got.Tables, want)
	}

	out, err = runTool(t, "--db-path", dir, "db", "list-tables")
	if err != nil {
		t.Fatalf("list-tables (table) error = %v", err)
	}
	if !strings.HasPrefix(out, "TABLE") || !strings.Contains(out, storage.TableOurBatches) {
		t.Errorf("table output:\n%s", out)
	}
}

func TestDump(t *testing.T) {
	dir := seedStore(t, testEntries())

	tests := []struct {
		name    string
		args    []string
		want    []dumpRow
		wantErr bool
	}{
		{
			name: "first page",
			args: []string{"--page-size", "2"},
			want: []dumpRow{
				{Key: "01", Value: "62617463682d61"},
				{Key: "02", Value: "62617463682d62"},
			},
		},
		{
			name: "second page",
			args: []string{"--page-size", "2", "--page-num", "1"},
			want: []dumpRow{{Key: "03", Value: "62617463682d63"}},
		},
		{
			name: "past the end",
			args: []string{"--page-size", "2", "--page-num", "5"},
			want: []dumpRow{},
		},
		{
			name:    "zero page size",
			args:    []string{"--page-size", "0"},
			wantErr: true,
		},
		{
			name:    "page size overflow",
			args:    []string{"--page-size", "70000"},
			wantErr: true,
		},
		{
			name:    "negative page",
			args:    []string{"--page-num", "-1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--db-path", dir, "-o", "json", "db", "dump", "--table", storage.TableOurBatches}, tt.args...)
			out, err := runTool(t, args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("dump error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			var got []dumpRow
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("decode output: %v\n%s", err, out)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("rows = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("row %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDump_RequiresTable(t *testing.T) {
	dir := seedStore(t, testEntries())
	if _, err := runTool(t, "--db-path", dir, "db", "dump"); err == nil {
		t.Error("dump without --table should fail")
	}
}

func TestTableSummary(t *testing.T) {
	dir := seedStore(t, testEntries())

	out, err := runTool(t, "--db-path", dir, "-o", "yaml", "db", "table-summary", "--table", storage.TableOurBatches)
	if err != nil {
		t.Fatalf("table-summary error = %v", err)
	}

	var got storage.TableSummary
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if got.NumKeys != 3 {
		t.Errorf("num_keys = %d, want 3", got.NumKeys)
	}
	if got.ValueBytesTotal != 21 {
		t.Errorf("value_bytes_total = %d, want 21", got.ValueBytesTotal)
	}
	if got.ValueQuantiles[50] != 7 {
		t.Errorf("value p50 = %d, want 7", got.ValueQuantiles[50])
	}

	out, err = runTool(t, "--db-path", dir, "db", "table-summary", "--table", storage.TableOurBatches)
	if err != nil {
		t.Fatalf("table-summary (table) error = %v", err)
	}
	for _, s := range []string{"num_keys", "key_p99", "value_p25"} {
		if !strings.Contains(out, s) {
			t.Errorf("table output missing %q:\n%s", s, out)
		}
	}
}

func TestDuplicatesSummary(t *testing.T) {
	dir := seedStore(t, testEntries())

	out, err := runTool(t, "--db-path", dir, "-o", "json", "db", "duplicates-summary")
	if err != nil {
		t.Fatalf("duplicates-summary error = %v", err)
	}

	var got storage.DuplicatesSummary
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if got.TotalCount != 5 {
		t.Errorf("total_count = %d, want 5", got.TotalCount)
	}
	if got.DuplicateCount != 1 {
		t.Errorf("duplicate_count = %d, want 1", got.DuplicateCount)
	}
	if got.DuplicatedBytes != 7 {
		t.Errorf("duplicated_bytes = %d, want 7", got.DuplicatedBytes)
	}
}

func TestResetDB(t *testing.T) {
	t.Run("requires confirmation", func(t *testing.T) {
		dir := seedStore(t, testEntries())
		if _, err := runTool(t, "--db-path", dir, "db", "reset-db"); err == nil {
			t.Fatal("reset-db without --yes should fail")
		}
		out, err := runTool(t, "--db-path", dir, "-o", "json", "db", "list-tables")
		if err != nil {
			t.Fatalf("list-tables error = %v", err)
		}
		if !strings.Contains(out, storage.TableOurBatches) {
			t.Error("tables dropped without confirmation")
		}
	})

	t.Run("keeps genesis by default", func(t *testing.T) {
		dir := seedStore(t, testEntries())
		out, err := runTool(t, "--db-path", dir, "-o", "json", "db", "reset-db", "--yes")
		if err != nil {
			t.Fatalf("reset-db error = %v", err)
		}
		var res resetResult
		if err := json.Unmarshal([]byte(out), &res); err != nil {
			t.Fatalf("decode output: %v\n%s", err, out)
		}
		if len(res.Dropped) != 2 {
			t.Errorf("dropped = %v, want 2 tables", res.Dropped)
		}

		out, err = runTool(t, "--db-path", dir, "-o", "json", "db", "list-tables")
		if err != nil {
			t.Fatalf("list-tables error = %v", err)
		}
		var tables tableList
		if err := json.Unmarshal([]byte(out), &tables); err != nil {
			t.Fatalf("decode output: %v", err)
		}
		if len(tables.Tables) != 1 || tables.Tables[0] != storage.TableGenesis {
			t.Errorf("tables after reset = %v, want [genesis]", tables.Tables)
		}
	})

	t.Run("explicit keep list", func(t *testing.T) {
		dir := seedStore(t, testEntries())
		_, err := runTool(t, "--db-path", dir, "-o", "json", "db", "reset-db", "--yes",
			"--keep", storage.TableGenesis, "--keep", storage.TableWorkerBatches)
		if err != nil {
			t.Fatalf("reset-db error = %v", err)
		}
		out, err := runTool(t, "--db-path", dir, "-o", "json", "db", "list-tables")
		if err != nil {
			t.Fatalf("list-tables error = %v", err)
		}
		if strings.Contains(out, storage.TableOurBatches) || !strings.Contains(out, storage.TableWorkerBatches) {
			t.Errorf("unexpected tables after reset:\n%s", out)
		}
	})
}

func TestGlobalFlags(t *testing.T) {
	t.Run("missing database", func(t *testing.T) {
		if _, err := runTool(t, "--db-path", t.TempDir()+"/missing", "db", "list-tables"); err == nil {
			t.Error("expected error for missing database directory")
		}
	})

	t.Run("bad output format", func(t *testing.T) {
		dir := seedStore(t, testEntries())
		if _, err := runTool(t, "--db-path", dir, "-o", "xml", "db", "list-tables"); err == nil {
			t.Error("expected error for unknown output format")
		}
	})

	t.Run("env var", func(t *testing.T) {
		dir := seedStore(t, testEntries())
		t.Setenv("VALIDATOR_DB_PATH", dir)
		out, err := runTool(t, "-o", "json", "db", "list-tables")
		if err != nil {
			t.Fatalf("list-tables error = %v", err)
		}
		if !strings.Contains(out, storage.TableGenesis) {
			t.Errorf("output = %s", out)
		}
	})
}
