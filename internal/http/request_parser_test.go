package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelens/internal/core"
)

func queryRequest(rawQuery string) *http.Request {
	return httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
}

func TestParseTopNClamping(t *testing.T) {
	p := newRequestParser(10, 20)
	tests := []struct {
		query string
		want  int
	}{
		{"", 10},
		{"top=5", 5},
		{"top=20", 20},
		{"top=500", 20},
		{"top=0", 10},
		{"top=-3", 10},
		{"top=abc", 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.parseTopN(queryRequest(tt.query)), tt.query)
	}
}

func TestParseFlowDefaultsToExport(t *testing.T) {
	p := newRequestParser(10, 20)

	flow, err := p.parseFlow(queryRequest(""))
	require.NoError(t, err)
	assert.Equal(t, core.FlowExport, flow)

	flow, err = p.parseFlow(queryRequest("flow=import"))
	require.NoError(t, err)
	assert.Equal(t, core.FlowImport, flow)

	_, err = p.parseFlow(queryRequest("flow=sideways"))
	assert.Error(t, err)
}

func TestParsePeriodFormats(t *testing.T) {
	p := newRequestParser(10, 20)

	period, err := p.parsePeriod(queryRequest("period=2024-03"), "period")
	require.NoError(t, err)
	require.NotNil(t, period)
	assert.Equal(t, core.NewYearMonth(2024, 3), *period)

	period, err = p.parsePeriod(queryRequest("period=2024"), "period")
	require.NoError(t, err)
	require.NotNil(t, period)
	assert.True(t, period.Yearly())

	period, err = p.parsePeriod(queryRequest(""), "period")
	require.NoError(t, err)
	assert.Nil(t, period)

	_, err = p.parsePeriod(queryRequest("period=banana"), "period")
	assert.Error(t, err)
}

func TestParseOrder(t *testing.T) {
	p := newRequestParser(10, 20)

	desc, err := p.parseOrder(queryRequest(""))
	require.NoError(t, err)
	assert.True(t, desc)

	desc, err = p.parseOrder(queryRequest("order=asc"))
	require.NoError(t, err)
	assert.False(t, desc)

	_, err = p.parseOrder(queryRequest("order=upwards"))
	assert.Error(t, err)
}

func TestParseSplit(t *testing.T) {
	p := newRequestParser(10, 20)
	assert.False(t, p.parseSplit(queryRequest("")))
	assert.True(t, p.parseSplit(queryRequest("split=flow")))
	assert.True(t, p.parseSplit(queryRequest("split=true")))
	assert.False(t, p.parseSplit(queryRequest("split=no")))
}
