package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"tradelens/internal/core"
	"tradelens/internal/ingest"
	applog "tradelens/internal/log"
	"tradelens/internal/session"
)

// handleIndex renders the main dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	info, hasData := s.session.Info()
	var periods []string
	if hasData {
		if ps, err := s.session.Periods(); err == nil {
			for _, p := range ps {
				periods = append(periods, p.String())
			}
		}
	}

	data := struct {
		HasData     bool
		Source      string
		Variant     string
		Records     string
		Span        string
		Periods     []string
		TopNDefault int
		TopNMax     int
	}{
		HasData:     hasData,
		Source:      info.Source,
		Variant:     string(info.Variant),
		Records:     core.FormatCount(int64(info.Records)),
		Span:        info.Earliest.String() + " – " + info.Latest.String(),
		Periods:     periods,
		TopNDefault: s.opts.TopNDefault,
		TopNMax:     s.opts.TopNMax,
	}

	if err := s.templates.ExecuteTemplate(w, "dashboard_page", data); err != nil {
		slog.ErrorContext(r.Context(), "Dashboard template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleUpload accepts a multipart CSV upload with a declared encoding and
// swaps it into the session as the new dataset.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		BadRequestError("Upload too large or malformed.").Write(w)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		BadRequestError("Missing file field.").Write(w)
		return
	}
	defer file.Close()

	encoding, err := ingest.ParseEncoding(r.FormValue("encoding"))
	if err != nil {
		BadRequestError("Unknown encoding. Use utf-8 or cp949.").Write(w)
		return
	}

	info, err := s.session.Load(file, ingest.Options{Encoding: encoding}, header.Filename)
	if err != nil {
		s.writeLoadError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Dataset loaded",
		applog.FieldSource, header.Filename,
		applog.FieldVariant, string(info.Variant),
		applog.FieldRecords, info.Records)

	NewHTMXResponse().
		TriggerDatasetLoaded(info.Records, string(info.Variant)).
		TriggerSuccessNotification(fmt.Sprintf("Loaded %s rows from %s.", core.FormatCount(int64(info.Records)), header.Filename)).
		BodyHTML(`<div class="upload-ok">Dataset loaded: ` + core.FormatCount(int64(info.Records)) + ` rows (` + string(info.Variant) + `).</div>`).
		Write(w)
}

// writeLoadError maps ingest failures to distinct user-facing messages so a
// malformed file is never reported as a missing one.
func (s *Server) writeLoadError(w http.ResponseWriter, r *http.Request, err error) {
	var schemaErr *ingest.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		slog.WarnContext(r.Context(), "Schema mismatch on upload", "missing", schemaErr.Missing)
		UnprocessableEntityError(schemaErr.Error()).
			TriggerErrorNotification("The file does not have the expected columns.").
			Write(w)
	case errors.Is(err, ingest.ErrSchemaMismatch):
		slog.WarnContext(r.Context(), "Schema mismatch on upload", "error", err)
		UnprocessableEntityError("The file does not have the expected columns.").
			TriggerErrorNotification("The file does not have the expected columns.").
			Write(w)
	case errors.Is(err, ingest.ErrDataUnavailable):
		slog.WarnContext(r.Context(), "Data source unavailable", "error", err)
		UnprocessableEntityError("The file could not be read.").
			TriggerErrorNotification("The file could not be read.").
			Write(w)
	default:
		slog.ErrorContext(r.Context(), "Upload failed", "error", err)
		InternalServerError("Upload failed.").Write(w)
	}
}

type trendRow struct {
	Period string
	Flow   string
	Tons   string
	Amount string
	Count  string
}

// handlePeriodTrend returns the period rollup partial, optionally split by
// flow direction.
func (s *Server) handlePeriodTrend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	var groups []core.PeriodTotals
	var err error
	if r.URL.Query().Get("granularity") == "year" {
		groups, err = s.session.YearlyTrend()
	} else {
		groups, err = s.session.PeriodTrend(s.parser.parseSplit(r))
	}
	if err != nil {
		s.writeViewError(w, r, err)
		return
	}

	rows := make([]trendRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, trendRow{
			Period: g.Period.String(),
			Flow:   flowLabel(g.Flow),
			Tons:   core.FormatTons(core.KgToTons(g.WeightKg)),
			Amount: core.FormatUSD(core.USDToThousands(g.AmountUSD)),
			Count:  core.FormatCount(g.Count),
		})
	}
	s.renderPartial(w, r, "period_trend", struct{ Rows []trendRow }{rows})
}

type rankingRow struct {
	Rank    int
	Country string
	Tons    string
	Amount  string
	Count   string
}

// handleCountryRanking returns the top-N partner countries for a period
// and flow, ranked by the chosen measure.
func (s *Server) handleCountryRanking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	flow, err := s.parser.parseFlow(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	by, err := s.parser.parseMeasure(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	period, err := s.parser.parsePeriod(r, "period")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	n := s.parser.parseTopN(r)

	// A yearly period is matched on the calendar year so that it also
	// selects the months of a monthly ledger.
	filter := core.CountryFilter{Flow: flow}
	if period != nil {
		if period.Yearly() {
			filter.Year = period.Year
		} else {
			filter.Period = period
		}
	}

	groups, err := s.session.CountryRanking(filter, n, by)
	if err != nil {
		s.writeViewError(w, r, err)
		return
	}

	rows := make([]rankingRow, 0, len(groups))
	for i, g := range groups {
		rows = append(rows, rankingRow{
			Rank:    i + 1,
			Country: g.Country,
			Tons:    core.FormatTons(core.KgToTons(g.WeightKg)),
			Amount:  core.FormatUSD(core.USDToThousands(g.AmountUSD)),
			Count:   core.FormatCount(g.Count),
		})
	}
	s.renderPartial(w, r, "country_ranking", struct {
		Flow string
		Rows []rankingRow
	}{flowLabel(flow), rows})
}

type growthRow struct {
	Country  string
	Baseline string
	Latest   string
	Growth   string
	Class    string
}

// handleGrowth compares per-country aggregates between two periods. When
// from/to are omitted it compares the earliest period against the latest.
// Too little history degrades to an informational message, not an error
// status.
func (s *Server) handleGrowth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	flow, err := s.parser.parseFlow(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	by, err := s.parser.parseMeasure(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	descending, err := s.parser.parseOrder(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	from, err := s.parser.parsePeriod(r, "from")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	to, err := s.parser.parsePeriod(r, "to")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	baseline, comparison, err := s.resolveComparison(from, to)
	if err != nil {
		s.writeViewError(w, r, err)
		return
	}

	series, err := s.session.GrowthRanking(baseline, comparison, flow, by, descending)
	if err != nil {
		s.writeViewError(w, r, err)
		return
	}
	series = core.TopBottom(series, s.parser.parseLimit(r, "k"))

	rows := make([]growthRow, 0, len(series))
	for _, g := range series {
		rows = append(rows, growthRow{
			Country:  g.Country,
			Baseline: formatMeasure(g.Baseline, by),
			Latest:   formatMeasure(g.Latest, by),
			Growth:   core.FormatGrowth(g.Growth),
			Class:    growthClass(g.Growth),
		})
	}
	s.renderPartial(w, r, "growth", struct {
		Baseline string
		Latest   string
		Flow     string
		Rows     []growthRow
	}{baseline.String(), comparison.String(), flowLabel(flow), rows})
}

// resolveComparison fills in missing endpoints with the earliest and latest
// periods of the loaded ledger.
func (s *Server) resolveComparison(from, to *core.Period) (core.Period, core.Period, error) {
	if from != nil && to != nil {
		return *from, *to, nil
	}
	periods, err := s.session.Periods()
	if err != nil {
		return core.Period{}, core.Period{}, err
	}
	if len(periods) < 2 {
		return core.Period{}, core.Period{}, core.ErrInsufficientHistory
	}
	baseline := periods[0]
	comparison := periods[len(periods)-1]
	if from != nil {
		baseline = *from
	}
	if to != nil {
		comparison = *to
	}
	return baseline, comparison, nil
}

type balanceRow struct {
	Period  string
	Exports string
	Imports string
	Balance string
	Class   string
}

// handleBalance returns the per-period trade balance partial.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	series, err := s.session.Balance()
	if err != nil {
		s.writeViewError(w, r, err)
		return
	}

	rows := make([]balanceRow, 0, len(series))
	for _, b := range series {
		class := "balance--surplus"
		if b.Balance < 0 {
			class = "balance--deficit"
		}
		rows = append(rows, balanceRow{
			Period:  b.Period.String(),
			Exports: core.FormatUSD(core.USDToThousands(b.ExportUSD)),
			Imports: core.FormatUSD(core.USDToThousands(b.ImportUSD)),
			Balance: core.FormatUSD(core.USDToThousands(b.Balance)),
			Class:   class,
		})
	}
	s.renderPartial(w, r, "balance", struct{ Rows []balanceRow }{rows})
}

// handleSummary returns the headline cards: dataset metadata plus the
// latest cumulative totals per flow.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	info, ok := s.session.Info()
	if !ok {
		s.writeViewError(w, r, session.ErrNoData)
		return
	}
	cumulative, err := s.session.CumulativeSummary()
	if err != nil {
		s.writeViewError(w, r, err)
		return
	}

	type cumRow struct {
		Flow   string
		Tons   string
		Amount string
	}
	cum := make([]cumRow, 0, len(cumulative))
	for _, c := range cumulative {
		cum = append(cum, cumRow{
			Flow:   flowLabel(c.Flow),
			Tons:   core.FormatTons(core.KgToTons(c.WeightKg)),
			Amount: core.FormatUSD(core.USDToThousands(c.AmountUSD)),
		})
	}

	s.renderPartial(w, r, "summary", struct {
		Source     string
		Variant    string
		Records    string
		Span       string
		Cumulative []cumRow
	}{
		Source:     info.Source,
		Variant:    string(info.Variant),
		Records:    core.FormatCount(int64(info.Records)),
		Span:       info.Earliest.String() + " – " + info.Latest.String(),
		Cumulative: cum,
	})
}
