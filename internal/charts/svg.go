// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package charts

import (
	"fmt"
	"io"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
)

// WriteSVG renders a time-series or scatter figure to SVG. Bar and
// choropleth figures have no server-side rendering; the map layer in
// particular only exists client-side. An empty figure renders as a
// placeholder frame rather than an error.
func WriteSVG(w io.Writer, fig Figure, width, height int) error {
	switch fig.Kind {
	case KindTimeSeries, KindScatter:
	default:
		return fmt.Errorf("no SVG rendering for %s figures", fig.Kind)
	}

	tab := seriesTable(fig.Series)
	if tab.Len() == 0 {
		return writePlaceholderSVG(w, fig.Title, width, height)
	}

	plot := gg.NewPlot(tab)
	plot.Add(gg.Title(fig.Title))
	plot.SetScale("y", gg.NewLinearScaler().Include(0))

	switch fig.Kind {
	case KindTimeSeries:
		plot.Add(gg.LayerLines{X: "x", Y: "y", Color: "series"})
	case KindScatter:
		plot.Add(gg.LayerPoints{X: "x", Y: "y", Color: "series"})
		if fig.Trend != nil {
			plot.SetData(ggstat.LeastSquares{X: "x", Y: "y"}.F(tab))
			plot.Add(gg.LayerPaths{X: "x", Y: "y"})
		}
	}

	return plot.WriteSVG(w, width, height)
}

// seriesTable flattens figure series into a (series, x, y) table.
func seriesTable(series []Series) *table.Table {
	var (
		names []string
		xs    []float64
		ys    []float64
	)
	for _, s := range series {
		for i := range s.X {
			names = append(names, s.Name)
			xs = append(xs, s.X[i])
			ys = append(ys, s.Y[i])
		}
	}
	if len(names) == 0 {
		return new(table.Table)
	}
	return new(table.Builder).
		Add("series", names).
		Add("x", xs).
		Add("y", ys).
		Done()
}

func writePlaceholderSVG(w io.Writer, title string, width, height int) error {
	_, err := fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`+
		`<text x="%d" y="%d" text-anchor="middle" font-family="sans-serif">%s: no data</text></svg>`,
		width, height, width/2, height/2, title)
	return err
}
