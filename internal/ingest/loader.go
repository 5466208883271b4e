// Package ingest parses delimited trade-ledger files into the core domain.
//
// It handles the two dataset variants (monthly rows tagged with a flow
// direction, and yearly rows carrying separate export/import columns), the
// legacy Korean single-byte encoding used by older revisions, grand-total
// sentinel rows and the footer rows whose period column does not parse.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"tradelens/internal/core"
)

// ErrDataUnavailable marks a source that cannot be located or read at all.
// It aborts the whole analysis; there is no partial load.
var ErrDataUnavailable = errors.New("ingest: data source unavailable")

// ErrSchemaMismatch marks a source that was readable but is missing an
// expected column. Surfaced distinctly from ErrDataUnavailable.
var ErrSchemaMismatch = errors.New("ingest: schema mismatch")

// SchemaError lists the columns that could not be resolved in the header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "ingest: missing columns: " + strings.Join(e.Missing, ", ")
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaMismatch
}

// Encoding names a supported source text encoding.
type Encoding string

const (
	EncodingUTF8  Encoding = "utf-8"
	EncodingCP949 Encoding = "cp949"
)

// ParseEncoding resolves the encoding labels that appear in configuration
// and upload forms. The empty string means UTF-8.
func ParseEncoding(value string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "cp949", "euc-kr", "euckr", "ks_c_5601-1987":
		return EncodingCP949, nil
	default:
		return "", fmt.Errorf("ingest: unsupported encoding %q", value)
	}
}

// Variant identifies the source table layout.
type Variant string

const (
	VariantMonthly Variant = "monthly"
	VariantYearly  Variant = "yearly"
)

// Options declares how the source should be decoded.
type Options struct {
	Encoding Encoding
}

// Result is a loaded ledger plus cleaning statistics for logging.
type Result struct {
	Ledger       *core.Ledger
	Variant      Variant
	RowsRead     int
	RowsDropped  int
	SentinelRows int
}

// Period sentinels marking a grand-total row. These are not a trading
// period and would double every total if retained.
var totalSentinels = map[string]struct{}{
	"총계":          {},
	"합계":          {},
	"소계":          {},
	"total":       {},
	"grand total": {},
}

func isTotalSentinel(value string) bool {
	_, ok := totalSentinels[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// Column aliases across dataset revisions. Headers are matched after
// trimming; the first alias found wins.
var (
	colPeriod       = []string{"기준년월", "연도", "기간", "period", "year"}
	colCountry      = []string{"국가명", "국가", "country"}
	colFlow         = []string{"수출입구분명", "수출입구분", "flow"}
	colWeight       = []string{"당월수출입중량(킬로그램)", "중량(킬로그램)", "weight_kg"}
	colAmount       = []string{"당월수출입미화금액(달러)", "금액(달러)", "amount_usd"}
	colCumWeight    = []string{"당해누계수출입중량(킬로그램)", "누계중량(킬로그램)"}
	colCumAmount    = []string{"당해누계수출입미화금액(달러)", "누계금액(달러)"}
	colExportAmount = []string{"수출금액", "수출금액(달러)", "export_amount"}
	colImportAmount = []string{"수입금액", "수입금액(달러)", "import_amount"}
	colExportCount  = []string{"수출건수", "export_count"}
	colImportCount  = []string{"수입건수", "import_count"}
)

// LoadFile opens and parses a ledger file from disk. A path that cannot be
// opened is reported as ErrDataUnavailable, never as a schema problem.
func LoadFile(path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrDataUnavailable, path, err)
	}
	defer f.Close()
	return Load(f, opts)
}

// Load parses a ledger from a reader using the declared encoding.
func Load(r io.Reader, opts Options) (*Result, error) {
	if opts.Encoding == EncodingCP949 {
		r = transform.NewReader(r, korean.EUCKR.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrDataUnavailable, err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	cols := indexHeader(header)
	variant, layout, err := resolveLayout(cols)
	if err != nil {
		return nil, err
	}

	result := &Result{Variant: variant}
	records := make([]core.TradeRecord, 0, 256)

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read row: %v", ErrDataUnavailable, err)
		}
		result.RowsRead++

		periodCell := cell(row, layout.period)
		if isTotalSentinel(periodCell) {
			result.SentinelRows++
			continue
		}
		period, ok := core.ParsePeriod(periodCell)
		if !ok {
			result.RowsDropped++
			continue
		}

		switch variant {
		case VariantMonthly:
			rec, ok := parseMonthlyRow(row, layout, period)
			if !ok {
				result.RowsDropped++
				continue
			}
			records = append(records, rec)
		case VariantYearly:
			recs, ok := parseYearlyRow(row, layout, period)
			if !ok {
				result.RowsDropped++
				continue
			}
			records = append(records, recs...)
		}
	}

	result.Ledger = core.NewLedger(records)
	return result, nil
}

type layout struct {
	period, country, flow      int
	weight, amount             int
	cumWeight, cumAmount       int
	exportAmount, importAmount int
	exportCount, importCount   int
}

func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

func findColumn(cols map[string]int, aliases []string) int {
	for _, alias := range aliases {
		if i, ok := cols[alias]; ok {
			return i
		}
	}
	return -1
}

// resolveLayout detects the variant from the header: a flow-direction
// column means monthly rows, separate export/import amount columns mean
// yearly rows. Whatever the variant, every required column must resolve.
func resolveLayout(cols map[string]int) (Variant, layout, error) {
	l := layout{
		period:       findColumn(cols, colPeriod),
		country:      findColumn(cols, colCountry),
		flow:         findColumn(cols, colFlow),
		weight:       findColumn(cols, colWeight),
		amount:       findColumn(cols, colAmount),
		cumWeight:    findColumn(cols, colCumWeight),
		cumAmount:    findColumn(cols, colCumAmount),
		exportAmount: findColumn(cols, colExportAmount),
		importAmount: findColumn(cols, colImportAmount),
		exportCount:  findColumn(cols, colExportCount),
		importCount:  findColumn(cols, colImportCount),
	}

	if l.flow >= 0 {
		missing := missingColumns(map[string]int{
			"period":  l.period,
			"country": l.country,
			"weight":  l.weight,
			"amount":  l.amount,
		})
		if len(missing) > 0 {
			return "", layout{}, &SchemaError{Missing: missing}
		}
		return VariantMonthly, l, nil
	}

	missing := missingColumns(map[string]int{
		"period":        l.period,
		"country":       l.country,
		"export amount": l.exportAmount,
		"import amount": l.importAmount,
	})
	if len(missing) > 0 {
		return "", layout{}, &SchemaError{Missing: missing}
	}
	return VariantYearly, l, nil
}

func missingColumns(required map[string]int) []string {
	missing := make([]string, 0)
	for name, idx := range required {
		if idx < 0 {
			missing = append(missing, name)
		}
	}
	// Deterministic order for error messages and tests.
	sort.Strings(missing)
	return missing
}

func parseMonthlyRow(row []string, l layout, period core.Period) (core.TradeRecord, bool) {
	country := strings.TrimSpace(cell(row, l.country))
	if country == "" {
		return core.TradeRecord{}, false
	}
	flow, ok := core.ParseFlow(cell(row, l.flow))
	if !ok {
		return core.TradeRecord{}, false
	}
	weight, ok := parseMeasure(cell(row, l.weight))
	if !ok {
		return core.TradeRecord{}, false
	}
	amount, ok := parseMeasure(cell(row, l.amount))
	if !ok {
		return core.TradeRecord{}, false
	}

	rec := core.TradeRecord{
		Period:    period,
		Country:   country,
		Flow:      flow,
		WeightKg:  weight,
		AmountUSD: amount,
	}
	// Cumulative columns are optional; a missing or blank cell stays zero.
	if v, ok := parseMeasure(cell(row, l.cumWeight)); ok {
		rec.CumWeightKg = v
	}
	if v, ok := parseMeasure(cell(row, l.cumAmount)); ok {
		rec.CumAmountUSD = v
	}
	return rec, true
}

// parseYearlyRow normalizes one yearly source row into an export record and
// an import record, so downstream aggregation only deals in one shape.
func parseYearlyRow(row []string, l layout, period core.Period) ([]core.TradeRecord, bool) {
	country := strings.TrimSpace(cell(row, l.country))
	if country == "" {
		return nil, false
	}
	exportAmount, ok := parseMeasure(cell(row, l.exportAmount))
	if !ok {
		return nil, false
	}
	importAmount, ok := parseMeasure(cell(row, l.importAmount))
	if !ok {
		return nil, false
	}
	exportCount, _ := parseCount(cell(row, l.exportCount))
	importCount, _ := parseCount(cell(row, l.importCount))

	return []core.TradeRecord{
		{Period: period, Country: country, Flow: core.FlowExport, AmountUSD: exportAmount, Count: exportCount},
		{Period: period, Country: country, Flow: core.FlowImport, AmountUSD: importAmount, Count: importCount},
	}, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parseMeasure reads a non-negative numeric cell, tolerating thousands
// separators. Blank cells parse as zero; negatives reject the row.
func parseMeasure(value string) (float64, bool) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f, true
}

func parseCount(value string) (int64, bool) {
	f, ok := parseMeasure(value)
	if !ok {
		return 0, false
	}
	return int64(f), true
}
