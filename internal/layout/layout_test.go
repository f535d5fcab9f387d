// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obesitydash/internal/dataset"
	"obesitydash/internal/filter"
	"obesitydash/internal/reactive"
)

func testMeta() dataset.Meta {
	return dataset.Meta{
		Regions:   []string{"East Asia & Pacific", "Europe & Central Asia"},
		Incomes:   []string{"High income", "Low income"},
		Countries: []string{"Sweden", "Vietnam"},
		YearMin:   1975,
		YearMax:   2016,
	}
}

func TestControls(t *testing.T) {
	controls := Controls(testMeta())

	byID := make(map[string]Control)
	for _, c := range controls {
		byID[c.ID] = c
	}
	// Every reactive input has exactly one control.
	inputs := make(map[reactive.Input]bool)
	for _, o := range reactive.Outputs() {
		for _, in := range reactive.DependsOn(o) {
			inputs[in] = true
		}
	}
	require.Len(t, byID, len(inputs))
	for in := range inputs {
		assert.Contains(t, byID, string(in))
	}

	// Defaults select the full dataset.
	assert.Equal(t, []string{"Both"}, byID["sex"].Default)
	assert.Equal(t, []string{"2016"}, byID["year"].Default)
	assert.Equal(t, []string{"1975", "2016"}, byID["year_range"].Default)
	assert.Equal(t, testMeta().Regions, byID["region"].Default)
	assert.Equal(t, testMeta().Incomes, byID["income"].Default)
	assert.Empty(t, byID["highlight_country"].Default)

	// Option lists come from the dataset's distinct values.
	assert.Len(t, byID["region"].Options, 2)
	assert.Len(t, byID["highlight_country"].Options, 2)
	assert.Equal(t, 1975, byID["year"].Min)
	assert.Equal(t, 2016, byID["year"].Max)
}

func TestLoadText(t *testing.T) {
	assert.NotEmpty(t, LoadText(filter.RegressorSmoke))
	assert.Empty(t, LoadText(filter.RegressorPrimedu))
	assert.Empty(t, LoadText(filter.RegressorUnemployed))
}

func TestPageRenders(t *testing.T) {
	bindings := make(map[string][]string)
	for _, o := range reactive.Outputs() {
		for _, in := range reactive.DependsOn(o) {
			bindings[string(o)] = append(bindings[string(o)], string(in))
		}
	}

	var buf strings.Builder
	err := Page.Execute(&buf, PageData{
		Title:    "test",
		Session:  "s-1",
		Controls: Controls(testMeta()),
		Bindings: bindings,
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "s-1")
	for _, o := range reactive.Outputs() {
		assert.Contains(t, html, string(o))
	}
}
