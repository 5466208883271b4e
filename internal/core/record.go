package core

import (
	"sort"
	"strings"
)

// Flow classifies a trade record as export or import.
type Flow string

const (
	FlowExport Flow = "export"
	FlowImport Flow = "import"
)

// ParseFlow maps the flow labels used by the source files onto the enum.
func ParseFlow(value string) (Flow, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "수출", "export", "x":
		return FlowExport, true
	case "수입", "import", "m":
		return FlowImport, true
	default:
		return "", false
	}
}

// Measure selects which numeric column a ranking or comparison runs on.
type Measure string

const (
	MeasureWeight Measure = "weight"
	MeasureAmount Measure = "amount"
	MeasureCount  Measure = "count"
)

func ParseMeasure(value string) (Measure, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "amount":
		return MeasureAmount, true
	case "weight":
		return MeasureWeight, true
	case "count":
		return MeasureCount, true
	default:
		return "", false
	}
}

// TradeRecord is one cleaned row of the ledger. The yearly source variant
// (separate export/import columns per row) is normalized by the loader into
// two flow-tagged records, so the aggregator only ever sees this shape.
// Cumulative measures are zero for variants that do not carry them.
type TradeRecord struct {
	Period       Period
	Country      string
	Flow         Flow
	WeightKg     float64
	AmountUSD    float64
	Count        int64
	CumWeightKg  float64
	CumAmountUSD float64
}

// Ledger is the immutable cleaned table held for the lifetime of an
// analysis session. Records are never mutated after construction; every
// derived view is computed fresh from the same snapshot.
type Ledger struct {
	records []TradeRecord
}

func NewLedger(records []TradeRecord) *Ledger {
	owned := make([]TradeRecord, len(records))
	copy(owned, records)
	return &Ledger{records: owned}
}

func (l *Ledger) Len() int {
	return len(l.records)
}

// Records returns a copy so callers cannot mutate the snapshot.
func (l *Ledger) Records() []TradeRecord {
	out := make([]TradeRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Periods returns the distinct periods in chronological order.
func (l *Ledger) Periods() []Period {
	seen := make(map[int]Period)
	for _, r := range l.records {
		seen[r.Period.Key()] = r.Period
	}
	out := make([]Period, 0, len(seen))
	for _, p := range seen {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Years returns the distinct years in ascending order.
func (l *Ledger) Years() []int {
	seen := make(map[int]struct{})
	for _, r := range l.records {
		seen[r.Period.Year] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for y := range seen {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// Countries returns partner names in first-appearance order. That order is
// the tie-break baseline for top-N ranking, so it must stay deterministic.
func (l *Ledger) Countries() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range l.records {
		if _, ok := seen[r.Country]; ok {
			continue
		}
		seen[r.Country] = struct{}{}
		out = append(out, r.Country)
	}
	return out
}

// Span returns the earliest and latest period, or false for an empty ledger.
func (l *Ledger) Span() (Period, Period, bool) {
	if len(l.records) == 0 {
		return Period{}, Period{}, false
	}
	earliest := l.records[0].Period
	latest := l.records[0].Period
	for _, r := range l.records[1:] {
		if r.Period.Before(earliest) {
			earliest = r.Period
		}
		if latest.Before(r.Period) {
			latest = r.Period
		}
	}
	return earliest, latest, true
}
