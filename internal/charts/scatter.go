// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package charts

import (
	"fmt"
	"math"

	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/fit"

	"obesitydash/internal/dataset"
	"obesitydash/internal/filter"
)

// Scatter builds the regressor-versus-obesity figure from a
// ScatterPoints table: one point per country (or per country and sex
// when the grouper is sex), colored by the grouping variable, with a
// least-squares trend line over all points when at least two valid
// pairs exist. Fewer than two pairs, or a degenerate fit with no
// x spread, omit the line rather than failing.
func Scatter(data *table.Table, sel filter.Selections) Figure {
	fig := Figure{
		Kind:   KindScatter,
		Title:  fmt.Sprintf("Obesity vs %s, %s, %d", sel.Regressor, sexLabel(sel.Sex), sel.Year),
		XLabel: fmt.Sprintf("%s rate", sel.Regressor),
		YLabel: "obesity rate",
	}

	countries := strCol(data, dataset.ColCountry)
	pops := floatCol(data, dataset.ColPop)
	regs := floatCol(data, sel.Regressor.Col())
	rates := floatCol(data, filter.ColRate)
	groups := groupCol(data, sel)

	var xs, ys []float64
	index := make(map[string]int)
	for i, c := range countries {
		if pops[i] == 0 || math.IsNaN(regs[i]) || math.IsNaN(rates[i]) {
			continue
		}
		x := regs[i] / pops[i]
		si, ok := index[groups[i]]
		if !ok {
			si = len(fig.Series)
			index[groups[i]] = si
			fig.Series = append(fig.Series, Series{Name: groups[i]})
		}
		s := &fig.Series[si]
		s.X = append(s.X, x)
		s.Y = append(s.Y, rates[i])
		s.Labels = append(s.Labels, c)
		xs = append(xs, x)
		ys = append(ys, rates[i])
	}

	fig.Trend = trendLine(xs, ys)
	return fig
}

// groupCol resolves the grouper selection to one label per row. With
// GrouperNone every point lands in a single unnamed series.
func groupCol(data *table.Table, sel filter.Selections) []string {
	var col []string
	switch sel.Grouper {
	case filter.GrouperIncome:
		col = strCol(data, dataset.ColIncome)
	case filter.GrouperRegion:
		col = strCol(data, dataset.ColRegion)
	case filter.GrouperSex:
		col = strCol(data, dataset.ColSex)
	}
	if col != nil {
		return col
	}
	n := 0
	if data != nil {
		n = data.Len()
	}
	return make([]string, n)
}

// trendLine fits y = a + bx to the points and samples the fit at the
// x extremes. It returns nil when fewer than two pairs exist or the
// x values have no spread.
func trendLine(xs, ys []float64) *Series {
	if len(xs) < 2 {
		return nil
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if lo == hi {
		return nil
	}

	r := fit.PolynomialRegression(xs, ys, nil, 1)
	y0, y1 := r.F(lo), r.F(hi)
	if math.IsNaN(y0) || math.IsNaN(y1) || math.IsInf(y0, 0) || math.IsInf(y1, 0) {
		return nil
	}
	return &Series{Name: "trend", X: []float64{lo, hi}, Y: []float64{y0, y1}}
}
