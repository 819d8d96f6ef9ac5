package rates

import (
	"sort"

	"github.com/shopspring/decimal"
)

// rank is the zero-based position of the rate reported for each ZIP after
// sorting candidates ascending.
const rank = 1

type areaKey struct {
	state    string
	rateArea int
}

// Resolver computes second-lowest rates for one metal level.
type Resolver struct {
	MetalLevel string
	Match      MatchMode
}

// Resolve is shorthand for a substring-matching Resolver at metalLevel.
func Resolve(targets []TargetZip, areas []ZipRateArea, plans []Plan, metalLevel string) []OutputRow {
	return Resolver{MetalLevel: metalLevel, Match: MatchSubstring}.Resolve(targets, areas, plans)
}

// Resolve returns one row per target, in target order. A row is blank when the
// ZIP is unknown, spans several rate areas, or its rate area offers fewer than
// two eligible plans.
func (r Resolver) Resolve(targets []TargetZip, areas []ZipRateArea, plans []Plan) []OutputRow {
	eligible := r.eligibleRates(plans)

	wanted := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		wanted[t.Zipcode] = struct{}{}
	}

	pairs := make(map[string][]areaKey)
	rateAreas := make(map[string]map[int]struct{})
	for _, a := range areas {
		if _, ok := wanted[a.Zipcode]; !ok {
			continue
		}
		if rateAreas[a.Zipcode] == nil {
			rateAreas[a.Zipcode] = make(map[int]struct{})
		}
		rateAreas[a.Zipcode][a.RateArea] = struct{}{}
		key := areaKey{state: a.State, rateArea: a.RateArea}
		if !containsKey(pairs[a.Zipcode], key) {
			pairs[a.Zipcode] = append(pairs[a.Zipcode], key)
		}
	}

	resolved := make(map[string]decimal.Decimal, len(pairs))
	for zip, keys := range pairs {
		if len(rateAreas[zip]) > 1 {
			continue
		}
		var candidates []decimal.Decimal
		for _, key := range keys {
			candidates = append(candidates, eligible[key]...)
		}
		if rate, ok := secondLowest(candidates); ok {
			resolved[zip] = rate
		}
	}

	rows := make([]OutputRow, len(targets))
	for i, t := range targets {
		rows[i].Zipcode = t.Zipcode
		if rate, ok := resolved[t.Zipcode]; ok {
			rows[i].Rate = decimal.NullDecimal{Decimal: rate, Valid: true}
		}
	}
	return rows
}

func (r Resolver) eligibleRates(plans []Plan) map[areaKey][]decimal.Decimal {
	match := r.Match
	if match == "" {
		match = MatchSubstring
	}
	out := make(map[areaKey][]decimal.Decimal)
	for _, p := range plans {
		if !match.matches(p.MetalLevel, r.MetalLevel) {
			continue
		}
		key := areaKey{state: p.State, rateArea: p.RateArea}
		out[key] = append(out[key], p.Rate)
	}
	return out
}

// secondLowest keeps duplicate values, so two plans sharing the minimum rate
// make that minimum the answer.
func secondLowest(candidates []decimal.Decimal) (decimal.Decimal, bool) {
	if len(candidates) <= rank {
		return decimal.Decimal{}, false
	}
	sorted := make([]decimal.Decimal, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LessThan(sorted[j])
	})
	return sorted[rank], true
}

func containsKey(keys []areaKey, key areaKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
