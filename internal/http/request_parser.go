package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"tradelens/internal/core"
)

// requestParser centralizes query-parameter parsing for the dashboard
// partials, clamping numeric inputs to server-configured bounds.
type requestParser struct {
	topNDefault int
	topNMax     int
}

func newRequestParser(topNDefault, topNMax int) *requestParser {
	return &requestParser{topNDefault: topNDefault, topNMax: topNMax}
}

// parseFlow returns the requested flow, defaulting to exports.
func (p *requestParser) parseFlow(r *http.Request) (core.Flow, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("flow"))
	if raw == "" {
		return core.FlowExport, nil
	}
	flow, ok := core.ParseFlow(raw)
	if !ok {
		return "", fmt.Errorf("invalid flow %q", sanitizeInput(raw))
	}
	return flow, nil
}

// parseMeasure returns the ranking measure, defaulting to amount.
func (p *requestParser) parseMeasure(r *http.Request) (core.Measure, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("by"))
	if raw == "" {
		return core.MeasureAmount, nil
	}
	m, ok := core.ParseMeasure(raw)
	if !ok {
		return "", fmt.Errorf("invalid measure %q", sanitizeInput(raw))
	}
	return m, nil
}

// parseTopN clamps the requested ranking size into [1, topNMax].
func (p *requestParser) parseTopN(r *http.Request) int {
	return p.parseLimit(r, "top")
}

// parseLimit reads a named size parameter with the same clamping rules as
// the ranking size.
func (p *requestParser) parseLimit(r *http.Request, name string) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return p.topNDefault
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return p.topNDefault
	}
	if n > p.topNMax {
		return p.topNMax
	}
	return n
}

// parsePeriod parses an optional period parameter.
func (p *requestParser) parsePeriod(r *http.Request, name string) (*core.Period, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	period, ok := core.ParsePeriod(raw)
	if !ok {
		return nil, fmt.Errorf("invalid period %q", sanitizeInput(raw))
	}
	return &period, nil
}

// parseOrder reports whether results should be sorted descending.
// Accepted values are "desc" (default) and "asc".
func (p *requestParser) parseOrder(r *http.Request) (descending bool, err error) {
	raw := strings.TrimSpace(r.URL.Query().Get("order"))
	switch raw {
	case "", "desc":
		return true, nil
	case "asc":
		return false, nil
	default:
		return false, fmt.Errorf("invalid order %q", sanitizeInput(raw))
	}
}

// parseSplit reports whether period trends should be split by flow.
func (p *requestParser) parseSplit(r *http.Request) bool {
	switch strings.TrimSpace(r.URL.Query().Get("split")) {
	case "1", "true", "yes", "flow":
		return true
	}
	return false
}

// sanitizeInput strips characters that could break log lines or markup
// before user input is echoed back in an error message.
func sanitizeInput(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	if len(s) > 64 {
		s = s[:64]
	}
	return s
}
