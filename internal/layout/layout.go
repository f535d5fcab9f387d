// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package layout describes the dashboard page: the filter controls,
// their options derived from the dataset's distinct values, and the
// HTML template that wires controls to chart placeholders. The tree
// is purely structural; no data flows through it at construction time
// beyond the dropdown option lists.
package layout

import (
	"strconv"

	"obesitydash/internal/dataset"
	"obesitydash/internal/filter"
	"obesitydash/internal/reactive"
)

// Control kinds understood by the page script.
const (
	KindRadio  = "radio"
	KindSlider = "slider"
	KindRange  = "range"
	KindMulti  = "multi"
	KindSelect = "select"
)

// Option is one choice of a select-like control.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Control is one filter widget. ID matches the reactive input
// identifier the widget feeds.
type Control struct {
	ID      string   `json:"id"`
	Kind    string   `json:"kind"`
	Label   string   `json:"label"`
	Options []Option `json:"options,omitempty"`
	Min     int      `json:"min,omitempty"`
	Max     int      `json:"max,omitempty"`
	Default []string `json:"default"`
}

// Controls builds the filter widget tree, with option lists populated
// from the dataset's distinct values.
func Controls(meta dataset.Meta) []Control {
	return []Control{
		{
			ID:   string(reactive.InputSex),
			Kind: KindRadio, Label: "Sex",
			Options: options(string(dataset.Both), string(dataset.Male), string(dataset.Female)),
			Default: []string{string(dataset.Both)},
		},
		{
			ID:   string(reactive.InputYear),
			Kind: KindSlider, Label: "Year",
			Min: meta.YearMin, Max: meta.YearMax,
			Default: []string{strconv.Itoa(meta.YearMax)},
		},
		{
			ID:   string(reactive.InputYearRange),
			Kind: KindRange, Label: "Years",
			Min: meta.YearMin, Max: meta.YearMax,
			Default: []string{strconv.Itoa(meta.YearMin), strconv.Itoa(meta.YearMax)},
		},
		{
			ID:   string(reactive.InputRegion),
			Kind: KindMulti, Label: "Region",
			Options: options(meta.Regions...),
			Default: meta.Regions,
		},
		{
			ID:   string(reactive.InputIncome),
			Kind: KindMulti, Label: "Income group",
			Options: options(meta.Incomes...),
			Default: meta.Incomes,
		},
		{
			ID:   string(reactive.InputHighlight),
			Kind: KindMulti, Label: "Highlight countries",
			Options: options(meta.Countries...),
			Default: nil,
		},
		{
			ID:   string(reactive.InputGrouper),
			Kind: KindSelect, Label: "Group scatter by",
			Options: options(
				string(filter.GrouperIncome), string(filter.GrouperSex),
				string(filter.GrouperRegion), string(filter.GrouperNone)),
			Default: []string{string(filter.GrouperIncome)},
		},
		{
			ID:   string(reactive.InputRegressor),
			Kind: KindSelect, Label: "Explanatory variable",
			Options: []Option{
				{Value: string(filter.RegressorSmoke), Label: "Smoking"},
				{Value: string(filter.RegressorPrimedu), Label: "Primary education"},
				{Value: string(filter.RegressorUnemployed), Label: "Unemployment"},
			},
			Default: []string{string(filter.RegressorSmoke)},
		},
	}
}

func options(vals ...string) []Option {
	out := make([]Option, len(vals))
	for i, v := range vals {
		out[i] = Option{Value: v, Label: v}
	}
	return out
}

// smokeNote is shown in the text panel while the smoking regressor is
// selected, since its series is the one padded by imputation.
const smokeNote = "Smoking rates are sparse before the mid-1990s. Missing values " +
	"are filled from the nearest surveyed year for the same country and sex; " +
	"filled points are marked in the data as imputed."

// LoadText returns the conditional help-text panel content: the
// imputation note for the smoke regressor, nothing otherwise.
func LoadText(reg filter.Regressor) string {
	if reg == filter.RegressorSmoke {
		return smokeNote
	}
	return ""
}
