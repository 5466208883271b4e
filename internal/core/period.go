package core

import (
	"strconv"
	"strings"
)

// Period is a calendar grouping key: a year, or a year plus month.
// Month == 0 means yearly granularity.
type Period struct {
	Year  int
	Month int // 1-12, or 0 for a plain year
}

func NewYear(year int) Period {
	return Period{Year: year}
}

func NewYearMonth(year, month int) Period {
	return Period{Year: year, Month: month}
}

// ParsePeriod accepts the period spellings seen across dataset revisions:
// "2024-03", "2024.03", "2024/03", "202403" and plain "2024".
// Footer and summary rows fail to parse and are dropped by the loader.
func ParsePeriod(value string) (Period, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Period{}, false
	}

	for _, sep := range []string{"-", ".", "/"} {
		if parts := strings.Split(value, sep); len(parts) == 2 {
			year, errYear := strconv.Atoi(strings.TrimSpace(parts[0]))
			month, errMonth := strconv.Atoi(strings.TrimSpace(parts[1]))
			if errYear == nil && errMonth == nil && len(strings.TrimSpace(parts[0])) == 4 && month >= 1 && month <= 12 {
				return Period{Year: year, Month: month}, true
			}
			return Period{}, false
		}
	}

	if len(value) == 6 && isDigits(value) {
		year, _ := strconv.Atoi(value[:4])
		month, _ := strconv.Atoi(value[4:])
		if month >= 1 && month <= 12 {
			return Period{Year: year, Month: month}, true
		}
		return Period{}, false
	}

	if len(value) == 4 && isDigits(value) {
		year, _ := strconv.Atoi(value)
		return Period{Year: year}, true
	}

	return Period{}, false
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// Yearly reports whether the period carries no month component.
func (p Period) Yearly() bool {
	return p.Month == 0
}

// Key returns an integer that orders periods chronologically.
// A plain year sorts before any month of the same year.
func (p Period) Key() int {
	return p.Year*100 + p.Month
}

func (p Period) Before(q Period) bool {
	return p.Key() < q.Key()
}

// YearOnly collapses the period to its year, used when comparing a
// monthly ledger at yearly granularity.
func (p Period) YearOnly() Period {
	return Period{Year: p.Year}
}

func (p Period) String() string {
	if p.Yearly() {
		return strconv.Itoa(p.Year)
	}
	month := strconv.Itoa(p.Month)
	if p.Month < 10 {
		month = "0" + month
	}
	return strconv.Itoa(p.Year) + "." + month
}

// ComparePeriods returns -1, 0 or 1 ordering a against b.
func ComparePeriods(a, b Period) int {
	switch {
	case a.Key() < b.Key():
		return -1
	case a.Key() > b.Key():
		return 1
	default:
		return 0
	}
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
