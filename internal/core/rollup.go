package core

import "sort"

// PeriodTotals is one group of a period rollup. Flow is empty when the
// rollup was not split by flow direction. Measures keep the input's units;
// unit scaling happens only at the display boundary.
type PeriodTotals struct {
	Period       Period
	Flow         Flow
	WeightKg     float64
	AmountUSD    float64
	Count        int64
	CumWeightKg  float64
	CumAmountUSD float64
}

func (t PeriodTotals) ValueOf(m Measure) float64 {
	switch m {
	case MeasureWeight:
		return t.WeightKg
	case MeasureCount:
		return float64(t.Count)
	default:
		return t.AmountUSD
	}
}

// RollupByPeriod groups the ledger by period, optionally cross-grouped by
// flow direction, summing weight, amount and count. Cumulative measures are
// running totals in the source, so the group keeps their maximum rather
// than a sum. Output is sorted by period, exports before imports.
func RollupByPeriod(l *Ledger, splitByFlow bool) []PeriodTotals {
	groups := make(map[groupKey]*PeriodTotals)
	order := make([]groupKey, 0)

	for _, r := range l.Records() {
		key := groupKey{period: r.Period.Key()}
		if splitByFlow {
			key.flow = r.Flow
		}
		g, ok := groups[key]
		if !ok {
			g = &PeriodTotals{Period: r.Period}
			if splitByFlow {
				g.Flow = r.Flow
			}
			groups[key] = g
			order = append(order, key)
		}
		g.WeightKg += r.WeightKg
		g.AmountUSD += r.AmountUSD
		g.Count += r.Count
		if r.CumWeightKg > g.CumWeightKg {
			g.CumWeightKg = r.CumWeightKg
		}
		if r.CumAmountUSD > g.CumAmountUSD {
			g.CumAmountUSD = r.CumAmountUSD
		}
	}

	out := make([]PeriodTotals, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Period.Key() != out[j].Period.Key() {
			return out[i].Period.Before(out[j].Period)
		}
		return flowRank(out[i].Flow) < flowRank(out[j].Flow)
	})
	return out
}

// RollupYearly groups a monthly ledger at yearly granularity, summing all
// months of each year across both flows.
func RollupYearly(l *Ledger) []PeriodTotals {
	byYear := make(map[int]*PeriodTotals)
	years := make([]int, 0)
	for _, r := range l.Records() {
		y := r.Period.Year
		g, ok := byYear[y]
		if !ok {
			g = &PeriodTotals{Period: NewYear(y)}
			byYear[y] = g
			years = append(years, y)
		}
		g.WeightKg += r.WeightKg
		g.AmountUSD += r.AmountUSD
		g.Count += r.Count
	}
	sort.Ints(years)
	out := make([]PeriodTotals, 0, len(years))
	for _, y := range years {
		out = append(out, *byYear[y])
	}
	return out
}

type groupKey struct {
	period int
	flow   Flow
}

func flowRank(f Flow) int {
	switch f {
	case FlowExport:
		return 0
	case FlowImport:
		return 1
	default:
		return 2
	}
}

// CountryTotals is one group of a country rollup.
type CountryTotals struct {
	Country   string
	WeightKg  float64
	AmountUSD float64
	Count     int64
}

func (t CountryTotals) ValueOf(m Measure) float64 {
	switch m {
	case MeasureWeight:
		return t.WeightKg
	case MeasureCount:
		return float64(t.Count)
	default:
		return t.AmountUSD
	}
}

// CountryFilter narrows a country rollup. A nil Period takes the whole
// ledger; Year restricts to one calendar year of a monthly ledger when
// Period is nil; an empty Flow takes both directions.
type CountryFilter struct {
	Period *Period
	Year   int
	Flow   Flow
}

// RollupByCountry groups matching records by country, summing measures.
// Groups come back in first-appearance order, which downstream ranking
// relies on as its tie-break order.
func RollupByCountry(l *Ledger, f CountryFilter) []CountryTotals {
	groups := make(map[string]*CountryTotals)
	order := make([]string, 0)

	for _, r := range l.Records() {
		if f.Period != nil && r.Period.Key() != f.Period.Key() {
			continue
		}
		if f.Period == nil && f.Year != 0 && r.Period.Year != f.Year {
			continue
		}
		if f.Flow != "" && r.Flow != f.Flow {
			continue
		}
		g, ok := groups[r.Country]
		if !ok {
			g = &CountryTotals{Country: r.Country}
			groups[r.Country] = g
			order = append(order, r.Country)
		}
		g.WeightKg += r.WeightKg
		g.AmountUSD += r.AmountUSD
		g.Count += r.Count
	}

	out := make([]CountryTotals, 0, len(order))
	for _, country := range order {
		out = append(out, *groups[country])
	}
	return out
}

// TopN returns the n largest groups by the chosen measure, descending.
// The sort is stable, so equal values keep their pre-sort group order.
// Asking for more rows than groups exist returns all groups.
func TopN(rows []CountryTotals, n int, by Measure) []CountryTotals {
	if n <= 0 {
		return nil
	}
	sorted := make([]CountryTotals, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ValueOf(by) > sorted[j].ValueOf(by)
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// BalanceRow is the per-period trade balance, computed from an already
// aggregated flow-split rollup (never from raw rows).
type BalanceRow struct {
	Period    Period
	ExportUSD float64
	ImportUSD float64
	Balance   float64
}

// TradeBalance folds a flow-split period rollup into export minus import
// per period, in chronological order.
func TradeBalance(rollup []PeriodTotals) []BalanceRow {
	byPeriod := make(map[int]*BalanceRow)
	order := make([]int, 0)
	for _, g := range rollup {
		key := g.Period.Key()
		row, ok := byPeriod[key]
		if !ok {
			row = &BalanceRow{Period: g.Period}
			byPeriod[key] = row
			order = append(order, key)
		}
		switch g.Flow {
		case FlowExport:
			row.ExportUSD += g.AmountUSD
		case FlowImport:
			row.ImportUSD += g.AmountUSD
		}
	}
	sort.Ints(order)
	out := make([]BalanceRow, 0, len(order))
	for _, key := range order {
		row := *byPeriod[key]
		row.Balance = row.ExportUSD - row.ImportUSD
		out = append(out, row)
	}
	return out
}

// FlowCumulative is the latest running total carried by a flow, taken from
// the source's cumulative columns (maximum observed value per flow).
type FlowCumulative struct {
	Flow      Flow
	WeightKg  float64
	AmountUSD float64
}

// LatestCumulative reports the most recent cumulative totals per flow,
// exports first. Ledgers without cumulative columns yield zero values.
func LatestCumulative(l *Ledger) []FlowCumulative {
	byFlow := make(map[Flow]*FlowCumulative)
	for _, r := range l.Records() {
		g, ok := byFlow[r.Flow]
		if !ok {
			g = &FlowCumulative{Flow: r.Flow}
			byFlow[r.Flow] = g
		}
		if r.CumWeightKg > g.WeightKg {
			g.WeightKg = r.CumWeightKg
		}
		if r.CumAmountUSD > g.AmountUSD {
			g.AmountUSD = r.CumAmountUSD
		}
	}
	out := make([]FlowCumulative, 0, len(byFlow))
	for _, f := range []Flow{FlowExport, FlowImport} {
		if g, ok := byFlow[f]; ok {
			out = append(out, *g)
		}
	}
	return out
}
