// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package charts

import (
	"fmt"
	"math"
	"sort"

	"github.com/aclements/go-gg/table"

	"obesitydash/internal/dataset"
	"obesitydash/internal/filter"
)

// Bar builds the obesity-rate-by-country bar figure from a
// Subset-aggregated table, sorted descending by rate.
func Bar(data *table.Table, sel filter.Selections) Figure {
	fig := Figure{
		Kind:   KindBar,
		Title:  fmt.Sprintf("Obesity rate by country, %s, %d", sexLabel(sel.Sex), sel.Year),
		XLabel: "obesity rate",
	}

	countries := strCol(data, dataset.ColCountry)
	rates := floatCol(data, filter.ColRate)

	type bar struct {
		country string
		rate    float64
	}
	bars := make([]bar, 0, len(countries))
	for i, c := range countries {
		if math.IsNaN(rates[i]) {
			continue
		}
		bars = append(bars, bar{c, rates[i]})
	}
	sort.Slice(bars, func(i, j int) bool {
		if bars[i].rate != bars[j].rate {
			return bars[i].rate > bars[j].rate
		}
		return bars[i].country < bars[j].country
	})

	for _, b := range bars {
		fig.Categories = append(fig.Categories, b.country)
		fig.Values = append(fig.Values, b.rate)
	}
	return fig
}
