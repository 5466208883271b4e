// Command tradelens-export loads a trade CSV once and publishes the
// derived views as JSON files, for consumers that want the aggregates
// without running the dashboard.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"tradelens/internal/cli"
	"tradelens/internal/core"
	"tradelens/internal/ingest"
	applog "tradelens/internal/log"
)

func main() {
	var (
		in       = flag.String("in", "", "input CSV file (required)")
		encoding = flag.String("encoding", "utf-8", "input encoding: utf-8 or cp949")
		out      = flag.String("out", "export", "output directory for JSON files")
	)
	flag.Parse()

	logger := cli.SetupLogger().WithComponent(applog.ComponentExport)
	cli.LoadEnvFile()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	enc, err := ingest.ParseEncoding(*encoding)
	if err != nil {
		logger.Error("Unknown encoding", "encoding", *encoding)
		os.Exit(1)
	}

	res, err := ingest.LoadFile(*in, ingest.Options{Encoding: enc})
	if err != nil {
		logger.Error("Failed to load dataset", "path", *in, "error", err)
		os.Exit(1)
	}
	logger.Info("Dataset loaded",
		"path", *in,
		"variant", string(res.Variant),
		"records", res.Ledger.Len(),
		"dropped", res.RowsDropped,
		"sentinels", res.SentinelRows)

	if err := os.MkdirAll(*out, 0o755); err != nil {
		logger.Error("Failed to create output directory", "dir", *out, "error", err)
		os.Exit(1)
	}

	ledger := res.Ledger

	type meta struct {
		Source       string `json:"source"`
		Variant      string `json:"variant"`
		Records      int    `json:"records"`
		RowsRead     int    `json:"rows_read"`
		RowsDropped  int    `json:"rows_dropped"`
		SentinelRows int    `json:"sentinel_rows"`
		Earliest     string `json:"earliest,omitempty"`
		Latest       string `json:"latest,omitempty"`
	}
	m := meta{
		Source:       *in,
		Variant:      string(res.Variant),
		Records:      ledger.Len(),
		RowsRead:     res.RowsRead,
		RowsDropped:  res.RowsDropped,
		SentinelRows: res.SentinelRows,
	}
	if earliest, latest, ok := ledger.Span(); ok {
		m.Earliest = earliest.String()
		m.Latest = latest.String()
	}

	// Each view is independent once the ledger is loaded, so the files
	// are produced concurrently.
	var g errgroup.Group
	g.Go(func() error {
		return writeJSON(filepath.Join(*out, "meta.json"), m)
	})
	g.Go(func() error {
		return writeJSON(filepath.Join(*out, "periods.json"), core.RollupByPeriod(ledger, true))
	})
	g.Go(func() error {
		return writeJSON(filepath.Join(*out, "countries.json"), core.RollupByCountry(ledger, core.CountryFilter{}))
	})
	g.Go(func() error {
		return writeJSON(filepath.Join(*out, "balance.json"), core.TradeBalance(core.RollupByPeriod(ledger, true)))
	})
	g.Go(func() error {
		series, err := core.PeriodGrowthSeries(core.RollupByPeriod(ledger, false), core.MeasureAmount)
		if err != nil {
			// A single-period dataset has no growth series; skip the file.
			logger.Warn("Skipping growth export", "reason", err)
			return nil
		}
		return writeJSON(filepath.Join(*out, "growth.json"), series)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Export failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Export complete", "dir", *out)
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
