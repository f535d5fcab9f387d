// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package charts

import (
	"fmt"
	"math"

	"github.com/aclements/go-gg/table"

	"obesitydash/internal/dataset"
	"obesitydash/internal/filter"
)

// TimeSeries builds the rate-over-time figure: one background line
// per region plus one line per highlighted country. Zero, one, or
// many highlights all work; the series count is simply the number of
// regions with data plus the number of highlighted countries with
// data.
func TimeSeries(regions, countries *table.Table, sel filter.Selections) Figure {
	fig := Figure{
		Kind:   KindTimeSeries,
		Title:  fmt.Sprintf("Obesity rate %d-%d, %s", sel.YearLo, sel.YearHi, sexLabel(sel.Sex)),
		XLabel: "year",
		YLabel: "obesity rate",
	}

	fig.Series = append(fig.Series, lineSeries(regions, dataset.ColRegion)...)
	fig.Series = append(fig.Series, lineSeries(countries, dataset.ColCountry)...)
	return fig
}

// lineSeries splits a (key, year, rate) table into one series per
// key, preserving the table's key order. NaN rates are skipped; a key
// whose rates are all NaN contributes no series.
func lineSeries(t *table.Table, keyCol string) []Series {
	keys := strCol(t, keyCol)
	years := intCol(t, dataset.ColYear)
	rates := floatCol(t, filter.ColRate)

	var out []Series
	index := make(map[string]int)
	for i, key := range keys {
		if math.IsNaN(rates[i]) {
			continue
		}
		si, ok := index[key]
		if !ok {
			si = len(out)
			index[key] = si
			out = append(out, Series{Name: key})
		}
		out[si].X = append(out[si].X, float64(years[i]))
		out[si].Y = append(out[si].Y, rates[i])
	}
	return out
}
