package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"tradelens/internal/core"
)

const monthlyCSV = `기준년월,국가명,수출입구분명,당월수출입중량(킬로그램),당월수출입미화금액(달러),당해누계수출입중량(킬로그램),당해누계수출입미화금액(달러)
2024-01,일본,수출,"1,000",500,1000,500
2024-01,중국,수출,2000,300,2000,300
2024-01,일본,수입,500,800,500,800
2024-02,일본,수출,1500,700,2500,1200
총계,,수출,5000,2300,,
`

const yearlyCSV = `연도,국가명,수출금액,수입금액,수출건수,수입건수
2023,일본,100,70,12,8
2023,중국,50,90,6,14
2024,일본,120,60,13,7
합계,,270,220,31,29
`

func TestLoadMonthlyVariant(t *testing.T) {
	res, err := Load(strings.NewReader(monthlyCSV), Options{Encoding: EncodingUTF8})
	require.NoError(t, err)
	assert.Equal(t, VariantMonthly, res.Variant)
	assert.Equal(t, 1, res.SentinelRows)
	assert.Equal(t, 4, res.Ledger.Len())

	records := res.Ledger.Records()
	first := records[0]
	assert.Equal(t, core.NewYearMonth(2024, 1), first.Period)
	assert.Equal(t, "일본", first.Country)
	assert.Equal(t, core.FlowExport, first.Flow)
	assert.Equal(t, 1000.0, first.WeightKg) // thousands separator stripped
	assert.Equal(t, 500.0, first.AmountUSD)
	assert.Equal(t, 500.0, first.CumAmountUSD)
}

func TestLoadYearlyVariantNormalizesFlows(t *testing.T) {
	res, err := Load(strings.NewReader(yearlyCSV), Options{})
	require.NoError(t, err)
	assert.Equal(t, VariantYearly, res.Variant)
	// 3 source rows, each split into an export and an import record.
	assert.Equal(t, 6, res.Ledger.Len())

	rollup := core.RollupByPeriod(res.Ledger, true)
	require.Len(t, rollup, 4)
	assert.Equal(t, core.FlowExport, rollup[0].Flow)
	assert.Equal(t, 150.0, rollup[0].AmountUSD) // 2023 exports: 100+50
	assert.Equal(t, 160.0, rollup[1].AmountUSD) // 2023 imports: 70+90
	assert.Equal(t, int64(18), rollup[0].Count)

	balance := core.TradeBalance(rollup)
	require.Len(t, balance, 2)
	assert.Equal(t, -10.0, balance[0].Balance)
	assert.Equal(t, 60.0, balance[1].Balance)
}

func TestTotalRowExclusion(t *testing.T) {
	withTotal, err := Load(strings.NewReader(yearlyCSV), Options{})
	require.NoError(t, err)

	trimmed := strings.Join(strings.Split(strings.TrimSpace(yearlyCSV), "\n")[:4], "\n")
	withoutTotal, err := Load(strings.NewReader(trimmed+"\n"), Options{})
	require.NoError(t, err)

	// Rollups must be unaffected by the sentinel row's presence.
	assert.Equal(t, core.RollupByPeriod(withoutTotal.Ledger, false), core.RollupByPeriod(withTotal.Ledger, false))
	assert.Equal(t, 1, withTotal.SentinelRows)
}

func TestCoercionFailuresAreDropped(t *testing.T) {
	src := `기준년월,국가명,수출입구분명,당월수출입중량(킬로그램),당월수출입미화금액(달러)
2024-01,일본,수출,100,50
주: 해양수산부 집계,,,,
not-a-period,중국,수입,10,10
`
	res, err := Load(strings.NewReader(src), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Ledger.Len())
	assert.Equal(t, 2, res.RowsDropped)
}

func TestSchemaMismatch(t *testing.T) {
	src := "기준년월,수출입구분명,당월수출입중량(킬로그램)\n2024-01,수출,100\n"
	_, err := Load(strings.NewReader(src), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"amount", "country"}, schemaErr.Missing)

	// A schema problem is not a missing-source problem.
	assert.NotErrorIs(t, err, ErrDataUnavailable)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("testdata/does-not-exist.csv", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.NotErrorIs(t, err, ErrSchemaMismatch)
}

func TestCP949RoundTrip(t *testing.T) {
	// Encode the UTF-8 fixture to EUC-KR and make sure the declared legacy
	// encoding decodes to the same ledger.
	var buf bytes.Buffer
	w := transform.NewWriter(&buf, korean.EUCKR.NewEncoder())
	_, err := w.Write([]byte(monthlyCSV))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	legacy, err := Load(bytes.NewReader(buf.Bytes()), Options{Encoding: EncodingCP949})
	require.NoError(t, err)
	plain, err := Load(strings.NewReader(monthlyCSV), Options{Encoding: EncodingUTF8})
	require.NoError(t, err)

	assert.Equal(t, plain.Ledger.Records(), legacy.Ledger.Records())
}

func TestNegativeMeasuresRejectRow(t *testing.T) {
	src := `기준년월,국가명,수출입구분명,당월수출입중량(킬로그램),당월수출입미화금액(달러)
2024-01,일본,수출,-100,50
2024-01,중국,수출,100,50
`
	res, err := Load(strings.NewReader(src), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Ledger.Len())
	assert.Equal(t, 1, res.RowsDropped)
}

func TestParseEncoding(t *testing.T) {
	cases := []struct {
		in   string
		want Encoding
		ok   bool
	}{
		{"", EncodingUTF8, true},
		{"utf-8", EncodingUTF8, true},
		{"UTF8", EncodingUTF8, true},
		{"cp949", EncodingCP949, true},
		{"EUC-KR", EncodingCP949, true},
		{"latin-1", "", false},
	}
	for _, tc := range cases {
		got, err := ParseEncoding(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			assert.Equal(t, tc.want, got, tc.in)
		} else {
			assert.Error(t, err, tc.in)
		}
	}
}
