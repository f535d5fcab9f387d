// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package charts

import (
	"fmt"
	"math"

	"github.com/aclements/go-gg/table"
	"go.uber.org/zap"

	"obesitydash/internal/dataset"
	"obesitydash/internal/filter"
)

// Choropleth builds the world-map figure from a Subset-aggregated
// table. Country names are translated to map-layer identifiers
// through the reconciliation dictionary; a country the dictionary
// cannot place is dropped from this figure only and logged at Warn
// with the closest known name. Countries absent from the data render
// as "no data" on the map side.
func Choropleth(data *table.Table, dict *dataset.Dictionary, log *zap.Logger, sel filter.Selections) Figure {
	if log == nil {
		log = zap.NewNop()
	}
	fig := Figure{
		Kind:  KindChoropleth,
		Title: fmt.Sprintf("Obesity rate, %s, %d", sexLabel(sel.Sex), sel.Year),
	}

	countries := strCol(data, dataset.ColCountry)
	rates := floatCol(data, filter.ColRate)
	for i, c := range countries {
		if math.IsNaN(rates[i]) {
			continue
		}
		id, ok := dict.GeoID(c)
		if !ok {
			log.Warn("country missing from map layer",
				zap.String("country", c),
				zap.String("closest", dict.Suggest(c)))
			continue
		}
		fig.Geo = append(fig.Geo, GeoValue{ID: id, Country: c, Rate: rates[i]})
	}
	return fig
}
