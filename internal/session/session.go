// Package session owns the loaded trade ledger for one analysis session.
//
// The source dashboards kept the dataframe as an implicit script global and
// recomputed everything on each widget change. Here that becomes an explicit
// object with a defined lifecycle: created empty, a Load swaps in a new
// immutable ledger and drops every derived view, Clear discards it. All view
// methods are pure functions of (ledger, params), memoized per parameter
// combination because interactions re-request the same views constantly.
package session

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"tradelens/internal/cache"
	"tradelens/internal/core"
	"tradelens/internal/ingest"
)

// ErrNoData means no dataset has been loaded yet (or it was cleared).
var ErrNoData = errors.New("session: no dataset loaded")

// Info describes the currently loaded dataset.
type Info struct {
	Source   string
	Variant  ingest.Variant
	LoadedAt time.Time
	Records  int
	Earliest core.Period
	Latest   core.Period
}

// Config bounds the derived-view caches.
type Config struct {
	CacheSize int
	CacheTTL  time.Duration
}

func DefaultConfig() Config {
	return Config{CacheSize: 100, CacheTTL: 5 * time.Minute}
}

// Session holds one immutable ledger snapshot and memoized derived views.
// Safe for concurrent use; a Load atomically replaces the snapshot.
type Session struct {
	mu     sync.RWMutex
	cfg    Config
	ledger *core.Ledger
	info   Info

	trend   *cache.LRU[[]core.PeriodTotals]
	ranking *cache.LRU[[]core.CountryTotals]
	growth  *cache.LRU[[]core.CountryGrowth]
	balance *cache.LRU[[]core.BalanceRow]
}

func New(cfg Config) *Session {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultConfig().CacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultConfig().CacheTTL
	}
	s := &Session{cfg: cfg}
	s.resetCaches()
	return s
}

func (s *Session) resetCaches() {
	s.trend = cache.NewLRU[[]core.PeriodTotals](s.cfg.CacheSize, s.cfg.CacheTTL)
	s.ranking = cache.NewLRU[[]core.CountryTotals](s.cfg.CacheSize, s.cfg.CacheTTL)
	s.growth = cache.NewLRU[[]core.CountryGrowth](s.cfg.CacheSize, s.cfg.CacheTTL)
	s.balance = cache.NewLRU[[]core.BalanceRow](s.cfg.CacheSize, s.cfg.CacheTTL)
}

// Load parses a new dataset and swaps it in, discarding the previous ledger
// and every cached derived view.
func (s *Session) Load(r io.Reader, opts ingest.Options, source string) (Info, error) {
	res, err := ingest.Load(r, opts)
	if err != nil {
		return Info{}, err
	}
	return s.install(res, source), nil
}

// LoadFile is Load for an on-disk path.
func (s *Session) LoadFile(path string, opts ingest.Options) (Info, error) {
	res, err := ingest.LoadFile(path, opts)
	if err != nil {
		return Info{}, err
	}
	return s.install(res, path), nil
}

func (s *Session) install(res *ingest.Result, source string) Info {
	info := Info{
		Source:   source,
		Variant:  res.Variant,
		LoadedAt: time.Now(),
		Records:  res.Ledger.Len(),
	}
	if earliest, latest, ok := res.Ledger.Span(); ok {
		info.Earliest = earliest
		info.Latest = latest
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = res.Ledger
	s.info = info
	s.resetCaches()
	return info
}

// Clear discards the ledger, ending the analysis session.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = nil
	s.info = Info{}
	s.resetCaches()
}

// Info returns dataset metadata, or false when nothing is loaded.
func (s *Session) Info() (Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info, s.ledger != nil
}

// snapshot returns the current ledger together with the caches bound to it.
// Holding the returned values is safe across a concurrent Load because a
// Load replaces both rather than mutating them.
func (s *Session) snapshot() (*core.Ledger, *caches, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ledger == nil {
		return nil, nil, ErrNoData
	}
	return s.ledger, &caches{trend: s.trend, ranking: s.ranking, growth: s.growth, balance: s.balance}, nil
}

type caches struct {
	trend   *cache.LRU[[]core.PeriodTotals]
	ranking *cache.LRU[[]core.CountryTotals]
	growth  *cache.LRU[[]core.CountryGrowth]
	balance *cache.LRU[[]core.BalanceRow]
}

// PeriodTrend is the period rollup, optionally split by flow direction.
func (s *Session) PeriodTrend(splitByFlow bool) ([]core.PeriodTotals, error) {
	ledger, c, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	key := "trend|split=" + strconv.FormatBool(splitByFlow)
	if rows, ok := c.trend.Get(key); ok {
		return rows, nil
	}
	rows := core.RollupByPeriod(ledger, splitByFlow)
	c.trend.Set(key, rows)
	return rows, nil
}

// YearlyTrend is the rollup collapsed to calendar years.
func (s *Session) YearlyTrend() ([]core.PeriodTotals, error) {
	ledger, c, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	const key = "trend|yearly"
	if rows, ok := c.trend.Get(key); ok {
		return rows, nil
	}
	rows := core.RollupYearly(ledger)
	c.trend.Set(key, rows)
	return rows, nil
}

// CountryRanking returns the top-n countries for the filter, ranked by the
// chosen measure.
func (s *Session) CountryRanking(filter core.CountryFilter, n int, by core.Measure) ([]core.CountryTotals, error) {
	ledger, c, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	key := rankingKey(filter, n, by)
	if rows, ok := c.ranking.Get(key); ok {
		return rows, nil
	}
	rows := core.TopN(core.RollupByCountry(ledger, filter), n, by)
	c.ranking.Set(key, rows)
	return rows, nil
}

// GrowthRanking compares per-country aggregates between two periods and
// returns the sorted growth series. Both periods must exist in the ledger
// with at least two distinct periods overall.
func (s *Session) GrowthRanking(baseline, comparison core.Period, flow core.Flow, by core.Measure, descending bool) ([]core.CountryGrowth, error) {
	ledger, c, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if baseline.Key() == comparison.Key() {
		return nil, core.ErrInsufficientHistory
	}
	key := growthKey(baseline, comparison, flow, by, descending)
	if rows, ok := c.growth.Get(key); ok {
		return rows, nil
	}

	base := core.RollupByCountry(ledger, countryFilterFor(ledger, baseline, flow))
	comp := core.RollupByCountry(ledger, countryFilterFor(ledger, comparison, flow))
	if len(base) == 0 || len(comp) == 0 {
		return nil, core.ErrInsufficientHistory
	}
	rows := core.CompareCountries(base, comp, by)
	core.SortByGrowth(rows, descending)
	c.growth.Set(key, rows)
	return rows, nil
}

// countryFilterFor maps a yearly period onto a monthly ledger by filtering
// on the calendar year instead of an exact period match.
func countryFilterFor(ledger *core.Ledger, p core.Period, flow core.Flow) core.CountryFilter {
	if p.Yearly() {
		if periods := ledger.Periods(); len(periods) > 0 && !periods[0].Yearly() {
			return core.CountryFilter{Year: p.Year, Flow: flow}
		}
	}
	period := p
	return core.CountryFilter{Period: &period, Flow: flow}
}

// Balance is the per-period trade balance series.
func (s *Session) Balance() ([]core.BalanceRow, error) {
	ledger, c, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	const key = "balance"
	if rows, ok := c.balance.Get(key); ok {
		return rows, nil
	}
	rows := core.TradeBalance(core.RollupByPeriod(ledger, true))
	c.balance.Set(key, rows)
	return rows, nil
}

// CumulativeSummary reports the latest running totals per flow direction.
func (s *Session) CumulativeSummary() ([]core.FlowCumulative, error) {
	ledger, _, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return core.LatestCumulative(ledger), nil
}

// Periods lists the distinct periods of the loaded ledger, oldest first.
func (s *Session) Periods() ([]core.Period, error) {
	ledger, _, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return ledger.Periods(), nil
}

// Years lists the distinct calendar years of the loaded ledger.
func (s *Session) Years() ([]int, error) {
	ledger, _, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return ledger.Years(), nil
}

func rankingKey(filter core.CountryFilter, n int, by core.Measure) string {
	period := "all"
	if filter.Period != nil {
		period = filter.Period.String()
	} else if filter.Year != 0 {
		period = "y" + strconv.Itoa(filter.Year)
	}
	return fmt.Sprintf("rank|%s|%s|%d|%s", period, filter.Flow, n, by)
}

func growthKey(baseline, comparison core.Period, flow core.Flow, by core.Measure, descending bool) string {
	return fmt.Sprintf("growth|%s|%s|%s|%s|%t", baseline, comparison, flow, by, descending)
}
