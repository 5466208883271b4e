package core

import (
	"reflect"
	"testing"
)

func monthlyLedger() *Ledger {
	return NewLedger([]TradeRecord{
		{Period: NewYearMonth(2024, 1), Country: "Japan", Flow: FlowExport, WeightKg: 1000, AmountUSD: 500},
		{Period: NewYearMonth(2024, 1), Country: "China", Flow: FlowExport, WeightKg: 2000, AmountUSD: 300},
		{Period: NewYearMonth(2024, 1), Country: "Japan", Flow: FlowImport, WeightKg: 500, AmountUSD: 800},
		{Period: NewYearMonth(2024, 2), Country: "Japan", Flow: FlowExport, WeightKg: 1500, AmountUSD: 700},
		{Period: NewYearMonth(2024, 2), Country: "Vietnam", Flow: FlowImport, WeightKg: 900, AmountUSD: 200},
	})
}

func TestRollupByPeriodSums(t *testing.T) {
	rollup := RollupByPeriod(monthlyLedger(), false)
	if len(rollup) != 2 {
		t.Fatalf("expected 2 period groups, got %d", len(rollup))
	}
	jan := rollup[0]
	if jan.Period != NewYearMonth(2024, 1) {
		t.Fatalf("first group should be 2024.01, got %s", jan.Period)
	}
	if jan.AmountUSD != 1600 || jan.WeightKg != 3500 {
		t.Fatalf("2024.01 totals = (%v kg, $%v), want (3500, 1600)", jan.WeightKg, jan.AmountUSD)
	}
}

func TestRollupByPeriodSplitByFlow(t *testing.T) {
	rollup := RollupByPeriod(monthlyLedger(), true)
	// 2024.01 export, 2024.01 import, 2024.02 export, 2024.02 import
	if len(rollup) != 4 {
		t.Fatalf("expected 4 period x flow groups, got %d", len(rollup))
	}
	if rollup[0].Flow != FlowExport || rollup[1].Flow != FlowImport {
		t.Fatalf("exports should sort before imports within a period")
	}
	if rollup[0].AmountUSD != 800 {
		t.Fatalf("2024.01 export amount = %v, want 800", rollup[0].AmountUSD)
	}
	if rollup[1].AmountUSD != 800 {
		t.Fatalf("2024.01 import amount = %v, want 800", rollup[1].AmountUSD)
	}
}

func TestRollupIdempotence(t *testing.T) {
	ledger := monthlyLedger()
	first := RollupByPeriod(ledger, true)
	second := RollupByPeriod(ledger, true)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-running the rollup on the same ledger must yield identical output")
	}
}

func TestCountryPeriodConservation(t *testing.T) {
	ledger := monthlyLedger()
	periodRollup := RollupByPeriod(ledger, false)
	for _, pg := range periodRollup {
		p := pg.Period
		countries := RollupByCountry(ledger, CountryFilter{Period: &p})
		var sum float64
		for _, cg := range countries {
			sum += cg.AmountUSD
		}
		if sum != pg.AmountUSD {
			t.Fatalf("period %s: country sum %v != period total %v", p, sum, pg.AmountUSD)
		}
	}
}

func TestRollupByCountryFilters(t *testing.T) {
	ledger := monthlyLedger()

	jan := NewYearMonth(2024, 1)
	got := RollupByCountry(ledger, CountryFilter{Period: &jan, Flow: FlowExport})
	if len(got) != 2 {
		t.Fatalf("expected 2 export countries in 2024.01, got %d", len(got))
	}
	// First-appearance order: Japan appeared before China in the ledger.
	if got[0].Country != "Japan" || got[1].Country != "China" {
		t.Fatalf("group order = [%s %s], want [Japan China]", got[0].Country, got[1].Country)
	}

	byYear := RollupByCountry(ledger, CountryFilter{Year: 2024})
	if len(byYear) != 3 {
		t.Fatalf("expected 3 countries for the year filter, got %d", len(byYear))
	}
}

func TestTopN(t *testing.T) {
	rows := []CountryTotals{
		{Country: "Japan", AmountUSD: 500},
		{Country: "China", AmountUSD: 900},
		{Country: "Vietnam", AmountUSD: 200},
		{Country: "Thailand", AmountUSD: 900},
	}

	top2 := TopN(rows, 2, MeasureAmount)
	if len(top2) != 2 {
		t.Fatalf("TopN(2) returned %d rows", len(top2))
	}
	// China and Thailand tie at 900; China keeps its earlier group position.
	if top2[0].Country != "China" || top2[1].Country != "Thailand" {
		t.Fatalf("TopN(2) = [%s %s], want [China Thailand]", top2[0].Country, top2[1].Country)
	}

	// Prefix property: topN(N) is a prefix of topN(N+1).
	top3 := TopN(rows, 3, MeasureAmount)
	for i, row := range top2 {
		if top3[i].Country != row.Country {
			t.Fatalf("TopN(2) is not a prefix of TopN(3)")
		}
	}

	if got := TopN(rows, 10, MeasureAmount); len(got) != len(rows) {
		t.Fatalf("oversized N should return all groups, got %d", len(got))
	}
	if got := TopN(rows, 0, MeasureAmount); got != nil {
		t.Fatalf("N=0 should return nothing")
	}

	// The input order must not be disturbed by ranking.
	if rows[0].Country != "Japan" {
		t.Fatalf("TopN must not reorder its input")
	}
}

func TestTradeBalance(t *testing.T) {
	rollup := RollupByPeriod(monthlyLedger(), true)
	balance := TradeBalance(rollup)
	if len(balance) != 2 {
		t.Fatalf("expected 2 balance rows, got %d", len(balance))
	}
	jan := balance[0]
	if jan.ExportUSD != 800 || jan.ImportUSD != 800 || jan.Balance != 0 {
		t.Fatalf("2024.01 balance = %+v, want 800/800/0", jan)
	}
	feb := balance[1]
	if feb.Balance != 500 {
		t.Fatalf("2024.02 balance = %v, want 500", feb.Balance)
	}
}

func TestLatestCumulative(t *testing.T) {
	ledger := NewLedger([]TradeRecord{
		{Period: NewYearMonth(2024, 1), Country: "Japan", Flow: FlowExport, CumWeightKg: 1000, CumAmountUSD: 400},
		{Period: NewYearMonth(2024, 2), Country: "Japan", Flow: FlowExport, CumWeightKg: 2500, CumAmountUSD: 900},
		{Period: NewYearMonth(2024, 2), Country: "China", Flow: FlowImport, CumWeightKg: 700, CumAmountUSD: 300},
	})
	got := LatestCumulative(ledger)
	if len(got) != 2 {
		t.Fatalf("expected 2 flows, got %d", len(got))
	}
	if got[0].Flow != FlowExport || got[0].WeightKg != 2500 || got[0].AmountUSD != 900 {
		t.Fatalf("export cumulative = %+v, want 2500/900", got[0])
	}
}

func TestEndToEndScenario(t *testing.T) {
	// Yearly ledger: period rollup, country growth and top-1 in one pass.
	ledger := NewLedger([]TradeRecord{
		{Period: NewYear(2023), Country: "Japan", Flow: FlowExport, AmountUSD: 100},
		{Period: NewYear(2023), Country: "China", Flow: FlowExport, AmountUSD: 50},
		{Period: NewYear(2024), Country: "Japan", Flow: FlowExport, AmountUSD: 120},
		{Period: NewYear(2024), Country: "China", Flow: FlowExport, AmountUSD: 40},
	})

	rollup := RollupByPeriod(ledger, false)
	if rollup[0].AmountUSD != 150 || rollup[1].AmountUSD != 160 {
		t.Fatalf("yearly rollup = {%v, %v}, want {150, 160}", rollup[0].AmountUSD, rollup[1].AmountUSD)
	}

	base := NewYear(2023)
	comp := NewYear(2024)
	growth := CompareCountries(
		RollupByCountry(ledger, CountryFilter{Period: &base}),
		RollupByCountry(ledger, CountryFilter{Period: &comp}),
		MeasureAmount,
	)
	byCountry := make(map[string]GrowthValue)
	for _, g := range growth {
		byCountry[g.Country] = g.Growth
	}
	if g := byCountry["Japan"]; !g.Defined || g.Pct != 20.0 {
		t.Fatalf("Japan growth = %+v, want +20.0%%", g)
	}
	if g := byCountry["China"]; !g.Defined || g.Pct != -20.0 {
		t.Fatalf("China growth = %+v, want -20.0%%", g)
	}

	top := TopN(RollupByCountry(ledger, CountryFilter{Period: &comp}), 1, MeasureAmount)
	if len(top) != 1 || top[0].Country != "Japan" {
		t.Fatalf("top-1 for 2024 should be Japan")
	}
}
