package command

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/validator-node/internal/cli/output"
	"github.com/yndnr/validator-node/internal/storage"
)

// DefaultPageSize is the dump page size when --page-size is not given.
const DefaultPageSize = 20

// DBCommand returns the db subcommand group.
func DBCommand() *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "Database inspection and maintenance",
		Subcommands: []*cli.Command{
			{
				Name:   "list-tables",
				Usage:  "List the tables present in the database",
				Action: dbListTables,
			},
			{
				Name:  "dump",
				Usage: "Dump one page of a table as hex",
				Flags: []cli.Flag{
					tableFlag(),
					&cli.UintFlag{
						Name:  "page-size",
						Usage: "Entries per page",
						Value: DefaultPageSize,
					},
					&cli.IntFlag{
						Name:  "page-num",
						Usage: "Zero-based page number",
					},
				},
				Action: dbDump,
			},
			{
				Name:   "table-summary",
				Usage:  "Show key and value size statistics of a table",
				Flags:  []cli.Flag{tableFlag()},
				Action: dbTableSummary,
			},
			{
				Name:   "duplicates-summary",
				Usage:  "Count values stored more than once across all tables",
				Action: dbDuplicatesSummary,
			},
			{
				Name:  "reset-db",
				Usage: "Drop every table except the genesis tables",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "keep",
						Usage: "Tables to keep (default: genesis)",
					},
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm the destructive reset",
					},
				},
				Action: dbReset,
			},
		},
	}
}

func tableFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "table",
		Aliases:  []string{"t"},
		Usage:    "Table name",
		Required: true,
	}
}

// dumpRow is one hex-encoded table entry.
type dumpRow struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// tableList is the structured form of list-tables output.
type tableList struct {
	Tables []string `json:"tables" yaml:"tables"`
}

// resetResult is the structured form of reset-db output.
type resetResult struct {
	Kept    []string `json:"kept" yaml:"kept"`
	Dropped []string `json:"dropped" yaml:"dropped"`
}

func dbListTables(c *cli.Context) error {
	store, err := openStore(c, true)
	if err != nil {
		return err
	}
	defer store.Close()

	tables, err := store.ListTables(c.Context)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}

	t := &output.Table{}
	t.SetHeaders("TABLE")
	for _, name := range tables {
		t.AddRow(name)
	}
	return renderAs(c, tableList{Tables: tables}, t)
}

func dbDump(c *cli.Context) error {
	pageSize := c.Uint("page-size")
	if pageSize == 0 || pageSize > math.MaxUint16 {
		return fmt.Errorf("--page-size must be between 1 and %d", math.MaxUint16)
	}
	pageNum := c.Int("page-num")
	if pageNum < 0 {
		return fmt.Errorf("--page-num must not be negative")
	}

	store, err := openStore(c, true)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.DumpTable(c.Context, c.String("table"), uint16(pageSize), pageNum)
	if err != nil {
		return fmt.Errorf("dump table: %w", err)
	}

	rows := make([]dumpRow, 0, len(entries))
	t := &output.Table{}
	t.SetHeaders("KEY", "VALUE")
	for _, e := range entries {
		r := dumpRow{Key: hex.EncodeToString(e.Key), Value: hex.EncodeToString(e.Value)}
		rows = append(rows, r)
		t.AddRow(r.Key, r.Value)
	}
	return renderAs(c, rows, t)
}

func dbTableSummary(c *cli.Context) error {
	store, err := openStore(c, true)
	if err != nil {
		return err
	}
	defer store.Close()

	sum, err := store.TableSummary(c.Context, c.String("table"))
	if err != nil {
		return fmt.Errorf("table summary: %w", err)
	}
	return renderAs(c, sum, summaryTable(sum))
}

// summaryTable flattens a TableSummary into field/value rows, one row
// per quantile.
func summaryTable(sum *storage.TableSummary) *output.Table {
	t := &output.Table{}
	t.SetHeaders("FIELD", "VALUE")
	t.AddRow("table", sum.Table)
	t.AddRow("num_keys", strconv.FormatUint(sum.NumKeys, 10))
	t.AddRow("key_bytes_total", strconv.FormatUint(sum.KeyBytesTotal, 10))
	t.AddRow("value_bytes_total", strconv.FormatUint(sum.ValueBytesTotal, 10))
	for _, q := range storage.SummaryQuantiles {
		t.AddRow(fmt.Sprintf("key_p%d", q), strconv.FormatUint(sum.KeyQuantiles[q], 10))
	}
	for _, q := range storage.SummaryQuantiles {
		t.AddRow(fmt.Sprintf("value_p%d", q), strconv.FormatUint(sum.ValueQuantiles[q], 10))
	}
	return t
}

func dbDuplicatesSummary(c *cli.Context) error {
	store, err := openStore(c, true)
	if err != nil {
		return err
	}
	defer store.Close()

	var spinner *output.Spinner
	if tableOutput(c) {
		spinner = output.NewSpinner(errWriter(c), "Hashing values...")
		spinner.Start()
	}

	sum, err := store.DuplicatesSummary(c.Context)
	if spinner != nil {
		if err != nil {
			spinner.Fail("Scan failed")
		} else {
			spinner.Success(fmt.Sprintf("Scanned %d values", sum.TotalCount))
		}
	}
	if err != nil {
		return fmt.Errorf("duplicates summary: %w", err)
	}
	return render(c, sum)
}

func dbReset(c *cli.Context) error {
	if !c.Bool("yes") {
		return fmt.Errorf("reset-db deletes data; pass --yes to confirm")
	}

	keep := c.StringSlice("keep")
	if len(keep) == 0 {
		keep = storage.GenesisTables
	}

	store, err := openStore(c, false)
	if err != nil {
		return err
	}
	defer store.Close()

	dropped, err := store.ResetToGenesis(c.Context, keep)
	if err != nil {
		return fmt.Errorf("reset database: %w", err)
	}

	t := &output.Table{}
	t.SetHeaders("TABLE", "ACTION")
	for _, name := range keep {
		t.AddRow(name, "kept")
	}
	for _, name := range dropped {
		t.AddRow(name, "dropped")
	}
	return renderAs(c, resetResult{Kept: keep, Dropped: dropped}, t)
}

// renderAs writes table in table mode and data otherwise.
func renderAs(c *cli.Context, data any, table *output.Table) error {
	if tableOutput(c) {
		return render(c, table)
	}
	return render(c, data)
}

func tableOutput(c *cli.Context) bool {
	f, err := output.ParseFormat(ParseGlobalFlags(c).Output)
	return err == nil && f == output.FormatTable
}
