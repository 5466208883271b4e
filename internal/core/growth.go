package core

import (
	"errors"
	"sort"
)

// ErrInsufficientHistory signals a comparison that needs at least two
// distinct periods when the loaded data has fewer. Callers degrade to an
// informational message; this is never fatal.
var ErrInsufficientHistory = errors.New("core: need at least two periods for a comparison")

// GrowthValue is a percentage change. A zero baseline makes the change
// undefined; Defined is false in that case and Pct holds zero, so an
// undefined value can never leak Inf or NaN into a formatted string.
type GrowthValue struct {
	Pct     float64
	Defined bool
}

// GrowthBetween computes (comparison - baseline) / baseline * 100.
func GrowthBetween(baseline, comparison float64) GrowthValue {
	if baseline == 0 {
		return GrowthValue{}
	}
	return GrowthValue{Pct: (comparison - baseline) / baseline * 100, Defined: true}
}

// CountryGrowth compares one country's aggregate between two periods.
type CountryGrowth struct {
	Country  string
	Baseline float64
	Latest   float64
	Growth   GrowthValue
}

// CompareCountries joins a baseline and a comparison country rollup on the
// exact country name and computes per-country growth on the chosen measure.
// The join is inner: countries missing from either side are excluded, which
// silently drops new entrants from growth rankings. That inherited policy
// is kept on purpose; see DESIGN.md.
func CompareCountries(baseline, comparison []CountryTotals, by Measure) []CountryGrowth {
	latest := make(map[string]float64, len(comparison))
	for _, row := range comparison {
		latest[row.Country] = row.ValueOf(by)
	}

	out := make([]CountryGrowth, 0, len(baseline))
	for _, row := range baseline {
		b, ok := latest[row.Country]
		if !ok {
			continue
		}
		a := row.ValueOf(by)
		out = append(out, CountryGrowth{
			Country:  row.Country,
			Baseline: a,
			Latest:   b,
			Growth:   GrowthBetween(a, b),
		})
	}
	return out
}

// SortByGrowth orders rows by growth percentage. Undefined growth sorts
// after every defined value regardless of direction. The sort is stable.
func SortByGrowth(rows []CountryGrowth, descending bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		gi, gj := rows[i].Growth, rows[j].Growth
		if gi.Defined != gj.Defined {
			return gi.Defined
		}
		if !gi.Defined {
			return false
		}
		if descending {
			return gi.Pct > gj.Pct
		}
		return gi.Pct < gj.Pct
	})
}

// TopBottom concatenates the first k and last k rows of an already sorted
// growth series. Short series are returned whole rather than duplicated.
func TopBottom(rows []CountryGrowth, k int) []CountryGrowth {
	if k <= 0 {
		return nil
	}
	if len(rows) <= 2*k {
		out := make([]CountryGrowth, len(rows))
		copy(out, rows)
		return out
	}
	out := make([]CountryGrowth, 0, 2*k)
	out = append(out, rows[:k]...)
	out = append(out, rows[len(rows)-k:]...)
	return out
}

// PeriodGrowth is one point of a period-over-period change series.
// The first period has no baseline, so its Growth is undefined.
type PeriodGrowth struct {
	Period Period
	Value  float64
	Growth GrowthValue
}

// PeriodGrowthSeries computes period-over-period percentage change on the
// chosen measure. The rollup may be flow-split; values are re-summed per
// period first. Fewer than two distinct periods is ErrInsufficientHistory.
func PeriodGrowthSeries(rollup []PeriodTotals, by Measure) ([]PeriodGrowth, error) {
	sums := make(map[int]float64)
	periods := make(map[int]Period)
	for _, g := range rollup {
		key := g.Period.Key()
		sums[key] += g.ValueOf(by)
		periods[key] = g.Period
	}
	if len(sums) < 2 {
		return nil, ErrInsufficientHistory
	}

	keys := make([]int, 0, len(sums))
	for key := range sums {
		keys = append(keys, key)
	}
	sort.Ints(keys)

	out := make([]PeriodGrowth, 0, len(keys))
	for i, key := range keys {
		point := PeriodGrowth{Period: periods[key], Value: sums[key]}
		if i > 0 {
			point.Growth = GrowthBetween(sums[keys[i-1]], sums[key])
		}
		out = append(out, point)
	}
	return out, nil
}
