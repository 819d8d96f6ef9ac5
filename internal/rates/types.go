package rates

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultMetalLevel is the plan tier resolved when nothing else is configured.
const DefaultMetalLevel = "Silver"

// ZipRateArea maps a ZIP code to one rate area. The same ZIP may appear on
// several rows, once per county it touches.
type ZipRateArea struct {
	Zipcode  string
	State    string
	RateArea int
}

// Plan is one priced plan offered in a state's rate area.
type Plan struct {
	PlanID     string
	State      string
	RateArea   int
	MetalLevel string
	Rate       decimal.Decimal
}

// TargetZip is a ZIP code that needs a rate. Order is significant.
type TargetZip struct {
	Zipcode string
}

// OutputRow pairs a target ZIP with its resolved rate. An invalid Rate is the
// blank marker.
type OutputRow struct {
	Zipcode string
	Rate    decimal.NullDecimal
}

// Blank reports whether no rate could be resolved for the row.
func (r OutputRow) Blank() bool {
	return !r.Rate.Valid
}

// FormattedRate renders the rate with exactly two decimal places, or an empty
// string for blank rows.
func (r OutputRow) FormattedRate() string {
	if !r.Rate.Valid {
		return ""
	}
	return r.Rate.Decimal.StringFixed(2)
}

// MatchMode selects how a plan's metal level is compared to the configured one.
type MatchMode string

const (
	// MatchSubstring accepts plans whose metal level contains the configured value.
	MatchSubstring MatchMode = "substring"
	// MatchExact accepts only plans whose metal level equals the configured value.
	MatchExact MatchMode = "exact"
)

// ParseMatchMode converts user input into a MatchMode.
func ParseMatchMode(value string) (MatchMode, bool) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", MatchSubstring:
		return MatchSubstring, true
	case MatchExact:
		return MatchExact, true
	default:
		return "", false
	}
}

func (m MatchMode) matches(level, want string) bool {
	if m == MatchExact {
		return level == want
	}
	return strings.Contains(level, want)
}

// Summary counts how many output rows received a rate.
type Summary struct {
	Total    int
	Resolved int
	Blank    int
}

// Summarize tallies resolved and blank rows.
func Summarize(rows []OutputRow) Summary {
	s := Summary{Total: len(rows)}
	for _, row := range rows {
		if row.Blank() {
			s.Blank++
			continue
		}
		s.Resolved++
	}
	return s
}
