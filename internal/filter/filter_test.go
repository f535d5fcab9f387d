// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"math"
	"testing"

	"github.com/aclements/go-gg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obesitydash/internal/dataset"
)

const (
	europe = "Europe & Central Asia"
	asia   = "East Asia & Pacific"
	high   = "High income"
	low    = "Low income"
)

// testTable builds a small base table: Alpha and Beta in high-income
// Europe, Gamma in low-income Asia, two years, both sexes. Alpha's
// smoking count is observed in 2015 only.
func testTable(t *testing.T) *table.Table {
	t.Helper()
	nan := math.NaN()
	mk := func(country, region, income string, sex dataset.Sex, year int, pop, obese, smoke float64) dataset.Stratum {
		return dataset.Stratum{
			Country: country, Region: region, Income: income,
			Sex: sex, Year: year,
			Pop: pop, Obese: obese, Smoke: smoke,
			Primedu: nan, Unemployed: nan,
			Literacy: nan, YouthPop: nan, Lifexp: nan,
			SmokeFlag: dataset.SmokeObserved,
		}
	}
	tab, err := dataset.Table([]dataset.Stratum{
		mk("Alpha", europe, high, dataset.Male, 2015, 100, 10, 30),
		mk("Alpha", europe, high, dataset.Female, 2015, 100, 20, 10),
		mk("Alpha", europe, high, dataset.Male, 2016, 100, 12, nan),
		mk("Alpha", europe, high, dataset.Female, 2016, 100, 24, nan),
		mk("Beta", europe, high, dataset.Male, 2015, 200, 30, 40),
		mk("Beta", europe, high, dataset.Female, 2015, 200, 50, 20),
		mk("Beta", europe, high, dataset.Male, 2016, 200, 36, 44),
		mk("Beta", europe, high, dataset.Female, 2016, 200, 60, 22),
		mk("Gamma", asia, low, dataset.Male, 2015, 400, 20, nan),
		mk("Gamma", asia, low, dataset.Female, 2015, 400, 28, nan),
		mk("Gamma", asia, low, dataset.Male, 2016, 400, 24, nan),
		mk("Gamma", asia, low, dataset.Female, 2016, 400, 32, nan),
	})
	require.NoError(t, err)
	return tab
}

func allSelections() Selections {
	return Selections{
		Sex:     dataset.Both,
		Year:    2016,
		YearLo:  2015,
		YearHi:  2016,
		Regions: []string{europe, asia},
		Incomes: []string{high, low},
		Grouper: GrouperIncome, Regressor: RegressorSmoke,
	}
}

// rates indexes an aggregated table's rate column by a key column.
func rates(t *testing.T, tab *table.Table, keyCol string) map[string]float64 {
	t.Helper()
	out := make(map[string]float64)
	if tab.Len() == 0 {
		return out
	}
	keys := tab.MustColumn(keyCol).([]string)
	vals := tab.MustColumn(ColRate).([]float64)
	for i, k := range keys {
		out[k] = vals[i]
	}
	return out
}

func TestSubset(t *testing.T) {
	tab := testTable(t)

	got := rates(t, Subset(tab, allSelections()), dataset.ColCountry)
	require.Len(t, got, 3)
	// Both is the sum of the sex strata: (12+24)/(100+100).
	assert.InDelta(t, 0.18, got["Alpha"], 1e-12)
	assert.InDelta(t, (36.0+60)/400, got["Beta"], 1e-12)
	assert.InDelta(t, (24.0+32)/800, got["Gamma"], 1e-12)
}

func TestSubsetSingleSex(t *testing.T) {
	tab := testTable(t)

	sel := allSelections()
	sel.Sex = dataset.Male
	got := rates(t, Subset(tab, sel), dataset.ColCountry)
	require.Len(t, got, 3)
	assert.InDelta(t, 0.12, got["Alpha"], 1e-12)

	// The Both rate is the population-weighted combination of the
	// sex rates, not their mean.
	sel.Sex = dataset.Female
	female := rates(t, Subset(tab, sel), dataset.ColCountry)
	sel.Sex = dataset.Both
	both := rates(t, Subset(tab, sel), dataset.ColCountry)
	assert.InDelta(t, (got["Gamma"]*400+female["Gamma"]*400)/800, both["Gamma"], 1e-12)
}

func TestSubsetNarrowing(t *testing.T) {
	tab := testTable(t)

	sel := allSelections()
	sel.Regions = []string{europe}
	got := rates(t, Subset(tab, sel), dataset.ColCountry)
	assert.Len(t, got, 2)
	assert.NotContains(t, got, "Gamma")

	sel = allSelections()
	sel.Incomes = []string{low}
	got = rates(t, Subset(tab, sel), dataset.ColCountry)
	assert.Len(t, got, 1)
	assert.Contains(t, got, "Gamma")
}

func TestSubsetEmptySelections(t *testing.T) {
	tab := testTable(t)

	sel := allSelections()
	sel.Regions = nil
	assert.Equal(t, 0, Subset(tab, sel).Len())

	sel = allSelections()
	sel.Incomes = nil
	assert.Equal(t, 0, Subset(tab, sel).Len())
}

func TestRegionSeries(t *testing.T) {
	tab := testTable(t)

	got := RegionSeries(tab, allSelections())
	// Two regions, two years.
	require.Equal(t, 4, got.Len())

	regions := got.MustColumn(dataset.ColRegion).([]string)
	years := got.MustColumn(dataset.ColYear).([]int)
	vals := got.MustColumn(ColRate).([]float64)
	for i := range regions {
		if regions[i] == europe && years[i] == 2015 {
			// (10+20+30+50)/(100+100+200+200)
			assert.InDelta(t, 110.0/600, vals[i], 1e-12)
		}
	}

	sel := allSelections()
	sel.YearLo, sel.YearHi = 2016, 2016
	assert.Equal(t, 2, RegionSeries(tab, sel).Len())
}

func TestCountrySeries(t *testing.T) {
	tab := testTable(t)

	sel := allSelections()
	assert.Equal(t, 0, CountrySeries(tab, sel).Len(), "no highlights")

	sel.Highlights = []string{"Alpha", "Nowhere"}
	got := CountrySeries(tab, sel)
	// Unknown names match nothing; Alpha has two years.
	require.Equal(t, 2, got.Len())
	assert.Equal(t, []string{"Alpha", "Alpha"}, got.MustColumn(dataset.ColCountry).([]string))
}

func TestScatterPoints(t *testing.T) {
	tab := testTable(t)

	got := ScatterPoints(tab, allSelections())
	require.Equal(t, 3, got.Len())

	countries := got.MustColumn(dataset.ColCountry).([]string)
	smoke := got.MustColumn(dataset.ColSmoke).([]float64)
	byCountry := make(map[string]float64)
	for i, c := range countries {
		byCountry[c] = smoke[i]
	}

	// Alpha's 2016 smoking counts are imputed from 2015.
	assert.InDelta(t, 40, byCountry["Alpha"], 1e-12)
	assert.InDelta(t, 66, byCountry["Beta"], 1e-12)
	// Gamma was never observed and stays missing.
	assert.True(t, math.IsNaN(byCountry["Gamma"]))
}

func TestScatterPointsBySex(t *testing.T) {
	tab := testTable(t)

	sel := allSelections()
	sel.Grouper = GrouperSex
	got := ScatterPoints(tab, sel)
	// One point per country and sex.
	require.Equal(t, 6, got.Len())
	assert.NotNil(t, got.Column(dataset.ColSex))

	sel.Sex = dataset.Female
	assert.Equal(t, 3, ScatterPoints(tab, sel).Len())
}

// Applying the same membership filter twice must not change the
// result, and the aggregated pop column is never NaN.
func TestFilterIdempotent(t *testing.T) {
	tab := testTable(t)
	sel := allSelections()

	once := byRegionIncome(tab, sel)
	twice := byRegionIncome(once, sel)
	assert.Equal(t, table.Flatten(once).Len(), table.Flatten(twice).Len())

	got := Subset(tab, sel)
	for _, pop := range got.MustColumn(dataset.ColPop).([]float64) {
		assert.False(t, math.IsNaN(pop))
		assert.Greater(t, pop, 0.0)
	}
}

func TestSubsetScenario(t *testing.T) {
	tab := testTable(t)

	sel := Selections{
		Sex:     dataset.Both,
		Year:    2016,
		Regions: []string{europe},
		Incomes: []string{high},
	}
	got := Subset(tab, sel)
	require.Equal(t, 2, got.Len())

	// Only European high-income countries survive, and each rate is
	// the across-sex count ratio.
	countries := got.MustColumn(dataset.ColCountry).([]string)
	pops := got.MustColumn(dataset.ColPop).([]float64)
	obese := got.MustColumn(dataset.ColObese).([]float64)
	vals := got.MustColumn(ColRate).([]float64)
	for i, c := range countries {
		assert.Contains(t, []string{"Alpha", "Beta"}, c)
		assert.False(t, math.IsNaN(pops[i]))
		assert.InDelta(t, obese[i]/pops[i], vals[i], 1e-12)
	}
}

// A country's time-series value for a single-year range must equal its
// bar-chart rate for that year, computed independently.
func TestCrossChartConsistency(t *testing.T) {
	tab := testTable(t)

	sel := allSelections()
	sel.Year = 2015
	bar := rates(t, Subset(tab, sel), dataset.ColCountry)

	sel.YearLo, sel.YearHi = 2015, 2015
	sel.Highlights = []string{"Alpha", "Beta", "Gamma"}
	ts := rates(t, CountrySeries(tab, sel), dataset.ColCountry)

	require.Len(t, ts, len(bar))
	for c, want := range bar {
		assert.InDelta(t, want, ts[c], 1e-12, "country %s", c)
	}
}

func TestFillIndicatorsPure(t *testing.T) {
	tab := testTable(t)

	before := tab.MustColumn(dataset.ColSmoke).([]float64)
	orig := make([]float64, len(before))
	copy(orig, before)

	FillIndicators(tab)

	after := tab.MustColumn(dataset.ColSmoke).([]float64)
	for i := range orig {
		if math.IsNaN(orig[i]) {
			assert.True(t, math.IsNaN(after[i]), "row %d", i)
		} else {
			assert.Equal(t, orig[i], after[i], "row %d", i)
		}
	}
}

func TestNanSum(t *testing.T) {
	nan := math.NaN()
	assert.Equal(t, 6.0, nanSum([]float64{1, 2, 3}))
	assert.Equal(t, 4.0, nanSum([]float64{1, nan, 3}))
	assert.True(t, math.IsNaN(nanSum([]float64{nan, nan})))
	assert.True(t, math.IsNaN(nanSum(nil)))
}
