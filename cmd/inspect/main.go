package main

import (
	"callsign-relay/repositories"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run prints the newest journal entries, one page of -limit rows.
func run() error {
	dbPath := flag.String("db", "", "Path to the journal (JOURNAL_PATH of the relay)")
	limit := flag.Int("limit", 50, "Maximum number of entries")
	cursor := flag.String("cursor", "", "Start after this key, as printed by a previous run")
	flag.Parse()

	if *dbPath == "" {
		return fmt.Errorf("-db is required, an in-memory journal cannot be inspected")
	}

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
	if err != nil {
		return fmt.Errorf("journal opening failed: %w", err)
	}
	defer db.Close()

	repository := repositories.NewJournalRepository(db, logs.GetLoggerFromLevel(slog.LevelWarn), limit)
	var start *string
	if *cursor != "" {
		start = cursor
	}
	entries, next, err := repository.GetEntries(start)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"At", "Event", "Audience", "Target", "Text", "Roster"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, entry := range entries {
		table.Append([]string{
			entry.At.Format("2006-01-02 15:04:05.000"),
			entry.Name,
			entry.Audience,
			entry.Target,
			entry.Text,
			strings.Join(entry.Callsigns, ", "),
		})
	}
	table.Render()

	if next != nil && *next != "" && len(entries) == *limit {
		fmt.Printf("\nnext page: -cursor %s\n", *next)
	}
	return nil
}
