package core

import (
	"strconv"

	"github.com/dustin/go-humanize"
)

// Unit scaling and display formatting are presentation transforms applied
// after aggregation, never before: intermediate sums stay at full numeric
// precision and only the final value crosses the display boundary.

// KgToTons converts kilograms to metric tons.
func KgToTons(kg float64) float64 {
	return kg / 1000
}

// USDToThousands converts dollars to thousands of dollars.
func USDToThousands(usd float64) float64 {
	return usd / 1000
}

// FormatTons renders a tonnage as a readable magnitude label.
func FormatTons(tons float64) string {
	switch {
	case tons >= 1_000_000:
		return humanize.CommafWithDigits(tons/1_000_000, 1) + "M tons"
	case tons >= 1_000:
		return humanize.CommafWithDigits(tons/1_000, 1) + "K tons"
	default:
		return humanize.CommafWithDigits(tons, 0) + " tons"
	}
}

// FormatUSD renders an amount in thousands of dollars as a $K/$M/$B label,
// matching the magnitude breaks of the source dashboards.
func FormatUSD(thousands float64) string {
	neg := thousands < 0
	if neg {
		thousands = -thousands
	}
	var s string
	switch {
	case thousands >= 1_000_000:
		s = "$" + humanize.CommafWithDigits(thousands/1_000_000, 1) + "B"
	case thousands >= 1_000:
		s = "$" + humanize.CommafWithDigits(thousands/1_000, 1) + "M"
	default:
		s = "$" + humanize.CommafWithDigits(thousands, 0) + "K"
	}
	if neg {
		return "-" + s
	}
	return s
}

// FormatCount renders a transaction count with thousands separators.
func FormatCount(count int64) string {
	return humanize.Comma(count)
}

// FormatGrowth renders a growth value as a signed percentage, or "n/a"
// when the baseline was zero and the change is undefined.
func FormatGrowth(g GrowthValue) string {
	if !g.Defined {
		return "n/a"
	}
	s := strconv.FormatFloat(g.Pct, 'f', 1, 64)
	if g.Pct > 0 {
		return "+" + s + "%"
	}
	return s + "%"
}
