package http

import (
	"errors"
	"log/slog"
	"net/http"

	"tradelens/internal/core"
	"tradelens/internal/session"
)

// renderPartial executes one named partial template as an HTMX fragment.
func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "template", name, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeViewError maps analysis failures onto dashboard fragments. A missing
// dataset and too little history are informational states rendered inline
// with a 200, not error statuses; anything else is a real server error.
func (s *Server) writeViewError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrNoData):
		NewHTMXResponse().
			BodyHTML(`<div class="placeholder">No dataset loaded. Upload a CSV file to begin.</div>`).
			Write(w)
	case errors.Is(err, core.ErrInsufficientHistory):
		NewHTMXResponse().
			BodyHTML(`<div class="placeholder">Not enough history for a comparison: at least two distinct periods are required.</div>`).
			Write(w)
	default:
		slog.ErrorContext(r.Context(), "View computation failed", "error", err)
		InternalServerError("Something went wrong computing this view.").Write(w)
	}
}

func flowLabel(f core.Flow) string {
	switch f {
	case core.FlowExport:
		return "Exports"
	case core.FlowImport:
		return "Imports"
	default:
		return "All flows"
	}
}

// formatMeasure renders an aggregate in the display unit of its measure.
func formatMeasure(value float64, by core.Measure) string {
	switch by {
	case core.MeasureWeight:
		return core.FormatTons(core.KgToTons(value))
	case core.MeasureCount:
		return core.FormatCount(int64(value))
	default:
		return core.FormatUSD(core.USDToThousands(value))
	}
}

func growthClass(g core.GrowthValue) string {
	switch {
	case !g.Defined:
		return "growth--undefined"
	case g.Pct > 0:
		return "growth--up"
	case g.Pct < 0:
		return "growth--down"
	default:
		return "growth--flat"
	}
}
