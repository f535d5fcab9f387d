// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package filter subsets and aggregates the core obesity table into
// the shape each chart needs. Every function is pure: the shared base
// table is never mutated, and every result is a freshly built table.
//
// Rates are computed as sum(obese)/sum(pop) over the aggregated
// groups. A zero denominator yields NaN, which the chart builders
// exclude from their visual series.
package filter

import (
	"math"
	"reflect"

	"github.com/aclements/go-gg/table"

	"obesitydash/internal/dataset"
)

// ColRate is the column added by the aggregation steps.
const ColRate = "rate"

// Grouper is the categorical variable used to color scatter points.
type Grouper string

const (
	GrouperIncome Grouper = "income"
	GrouperSex    Grouper = "sex"
	GrouperRegion Grouper = "region"
	GrouperNone   Grouper = "none"
)

// Regressor is the numeric explanatory variable on the scatter x
// axis. Each names a count column of the core table; the plotted
// value is the count divided by population.
type Regressor string

const (
	RegressorSmoke      Regressor = "smoke"
	RegressorPrimedu    Regressor = "primedu"
	RegressorUnemployed Regressor = "unemployed"
)

// Col returns the core-table column the regressor reads.
func (r Regressor) Col() string { return string(r) }

// Selections is one snapshot of every filter input. The HTTP boundary
// validates values against the declared enums and ranges before a
// Selections reaches this package.
type Selections struct {
	Sex            dataset.Sex
	Year           int
	YearLo, YearHi int
	Regions        []string
	Incomes        []string
	Highlights     []string
	Grouper        Grouper
	Regressor      Regressor
}

// Subset keeps rows matching the region, income and year selections,
// resolves the sex selection (Both sums Male and Female counts), and
// aggregates to one row per country with a rate column. It serves the
// bar and choropleth charts.
//
// Empty region or income selections yield an empty table.
func Subset(tab table.Grouping, sel Selections) *table.Table {
	g := byRegionIncome(tab, sel)
	g = table.FilterEq(g, dataset.ColYear, sel.Year)
	g = bySex(g, sel.Sex)
	return withRate(sumGroups(g, dataset.ColCountry, dataset.ColRegion, dataset.ColIncome))
}

// RegionSeries computes the background series for the time-series
// chart: one rate per (region, year) within the year range, with the
// sex selection resolved by summation.
func RegionSeries(tab table.Grouping, sel Selections) *table.Table {
	g := byYearRange(tab, sel.YearLo, sel.YearHi)
	g = bySex(g, sel.Sex)
	return withRate(sumGroups(g, dataset.ColRegion, dataset.ColYear))
}

// CountrySeries computes one overlay series per highlighted country:
// a rate per (country, year) within the year range. Unknown country
// names simply match nothing; zero highlights yield an empty table.
func CountrySeries(tab table.Grouping, sel Selections) *table.Table {
	g := byYearRange(tab, sel.YearLo, sel.YearHi)
	g = bySex(g, sel.Sex)
	g = table.Filter(g, memberOf(sel.Highlights), dataset.ColCountry)
	return withRate(sumGroups(g, dataset.ColCountry, dataset.ColYear))
}

// ScatterPoints produces one row per country (or per country and sex,
// when the grouper is sex) at the selected year: the regressor count,
// the obesity rate, and the grouping column. Missing indicator counts
// are filled per (country, sex) series with the same nearest-value
// imputation the prep pipeline applies to smoking, so a country drops
// out only when an indicator was never observed for it.
func ScatterPoints(tab table.Grouping, sel Selections) *table.Table {
	g := table.Grouping(FillIndicators(tab))
	g = byRegionIncome(g, sel)
	g = table.FilterEq(g, dataset.ColYear, sel.Year)

	keys := []string{dataset.ColCountry, dataset.ColRegion, dataset.ColIncome}
	if sel.Grouper == GrouperSex {
		// One point per sex; no summation across sexes.
		keys = append(keys, dataset.ColSex)
	}
	g = bySex(g, sel.Sex)
	return withRate(sumGroups(g, keys...))
}

// FillIndicators returns a copy of tab with NaN indicator counts
// filled per (country, sex) year-ordered series, nearest value first
// forward then backward. Population and obese counts are never NaN
// and pass through unchanged.
func FillIndicators(tab table.Grouping) *table.Table {
	g := table.SortBy(tab, dataset.ColCountry, dataset.ColSex, dataset.ColYear)
	g = table.GroupBy(g, dataset.ColCountry, dataset.ColSex)
	g = table.MapTables(g, func(_ table.GroupID, t *table.Table) *table.Table {
		b := table.NewBuilder(t)
		for _, col := range dataset.IndicatorCols {
			b.Add(col, dataset.FillNearest(t.MustColumn(col).([]float64)))
		}
		return b.Done()
	})
	return table.Flatten(g)
}

// byRegionIncome keeps rows whose region and income are selected. An
// empty selection set selects nothing.
func byRegionIncome(g table.Grouping, sel Selections) table.Grouping {
	g = table.Filter(g, memberOf(sel.Regions), dataset.ColRegion)
	return table.Filter(g, memberOf(sel.Incomes), dataset.ColIncome)
}

func byYearRange(g table.Grouping, lo, hi int) table.Grouping {
	return table.Filter(g, func(year int) bool {
		return lo <= year && year <= hi
	}, dataset.ColYear)
}

// bySex keeps the matching sex rows, or both row sets when the
// selection is Both; the caller's aggregation then sums the counts.
func bySex(g table.Grouping, sex dataset.Sex) table.Grouping {
	if sex == dataset.Both {
		return g
	}
	return table.FilterEq(g, dataset.ColSex, string(sex))
}

func memberOf(vals []string) func(string) bool {
	set := make(map[string]bool, len(vals))
	for _, v := range vals {
		set[v] = true
	}
	return func(v string) bool { return set[v] }
}

// sumGroups groups g by the key columns and collapses each group to a
// single row carrying the keys and the NaN-skipping sum of every
// count column. A group whose values are all NaN for a column sums to
// NaN, not zero.
func sumGroups(g table.Grouping, keys ...string) *table.Table {
	grouped := table.GroupBy(g, keys...)
	rows := table.MapTables(grouped, func(_ table.GroupID, t *table.Table) *table.Table {
		b := new(table.Builder)
		for _, k := range keys {
			first := reflect.ValueOf(t.MustColumn(k)).Slice(0, 1)
			b.Add(k, first.Interface())
		}
		for _, c := range dataset.CountCols {
			b.Add(c, []float64{nanSum(t.MustColumn(c).([]float64))})
		}
		return b.Done()
	})
	return table.Flatten(rows)
}

// withRate adds the rate column sum(obese)/sum(pop) to an aggregated
// table. A zero denominator produces NaN.
func withRate(t *table.Table) *table.Table {
	if t.Len() == 0 {
		return t
	}
	g := table.MapCols(t, func(obese, pop, rate []float64) {
		for i := range rate {
			if pop[i] == 0 {
				rate[i] = math.NaN()
				continue
			}
			rate[i] = obese[i] / pop[i]
		}
	}, dataset.ColObese, dataset.ColPop)(ColRate)
	return table.Flatten(g)
}

func nanSum(xs []float64) float64 {
	sum, seen := 0.0, false
	for _, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		sum += x
		seen = true
	}
	if !seen {
		return math.NaN()
	}
	return sum
}
