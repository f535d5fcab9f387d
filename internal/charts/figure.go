// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package charts builds declarative figure specifications from
// filtered obesity tables. A Figure is renderer-agnostic: the web
// layout feeds it to a JavaScript charting layer as JSON, and line
// and scatter figures can also be rendered server-side to SVG.
//
// Every builder returns a valid, possibly empty Figure for any legal
// input combination, including empty and single-row tables. NaN rates
// are excluded from the series rather than serialized; a Figure never
// contains NaN.
package charts

import (
	"fmt"

	"github.com/aclements/go-gg/table"

	"obesitydash/internal/dataset"
)

// Figure kinds.
const (
	KindBar        = "bar"
	KindChoropleth = "choropleth"
	KindTimeSeries = "timeseries"
	KindScatter    = "scatter"
)

// Figure is a declarative chart description. Which fields are
// populated depends on Kind: bar figures use Categories and Values,
// choropleth figures use Geo, and the rest use Series.
type Figure struct {
	Kind   string `json:"kind"`
	Title  string `json:"title"`
	XLabel string `json:"xLabel,omitempty"`
	YLabel string `json:"yLabel,omitempty"`

	Categories []string  `json:"categories,omitempty"`
	Values     []float64 `json:"values,omitempty"`

	Geo []GeoValue `json:"geo,omitempty"`

	Series []Series `json:"series,omitempty"`
	Trend  *Series  `json:"trend,omitempty"`
}

// GeoValue is one country of a choropleth figure. ID is the
// identifier the map layer expects (ISO 3166-1 alpha-2).
type GeoValue struct {
	ID      string  `json:"id"`
	Country string  `json:"country"`
	Rate    float64 `json:"rate"`
}

// Series is one line or point set. Labels, when present, annotate the
// points (country names on the scatter chart).
type Series struct {
	Name   string    `json:"name"`
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
	Labels []string  `json:"labels,omitempty"`
}

// sexLabel renders a sex selection for figure titles.
func sexLabel(sex dataset.Sex) string {
	switch sex {
	case dataset.Male:
		return "males"
	case dataset.Female:
		return "females"
	default:
		return "both sexes"
	}
}

// strCol returns a string column of t, or nil when t is empty or the
// column is absent. Filter results on empty selections legitimately
// have no columns at all.
func strCol(t *table.Table, name string) []string {
	if t == nil || t.Len() == 0 {
		return nil
	}
	col, _ := t.Column(name).([]string)
	return col
}

func floatCol(t *table.Table, name string) []float64 {
	if t == nil || t.Len() == 0 {
		return nil
	}
	col, _ := t.Column(name).([]float64)
	return col
}

func intCol(t *table.Table, name string) []int {
	if t == nil || t.Len() == 0 {
		return nil
	}
	col, _ := t.Column(name).([]int)
	return col
}

func pct(rate float64) string {
	return fmt.Sprintf("%.1f%%", 100*rate)
}
