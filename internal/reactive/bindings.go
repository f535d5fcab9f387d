// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reactive binds filter inputs to chart outputs. The
// dependency graph is a static table mapping each output to the
// inputs it reads; when an input changes, exactly the outputs
// declaring it are recomputed. There is no ordering or merge logic
// beyond last write wins per session: a computation reads whatever
// snapshot of the inputs is current when it runs, and superseded
// results are simply discarded by the caller.
package reactive

import (
	"fmt"

	"obesitydash/internal/filter"
)

// Input identifies one filter control of the UI surface.
type Input string

const (
	InputSex       Input = "sex"
	InputYear      Input = "year"
	InputYearRange Input = "year_range"
	InputRegion    Input = "region"
	InputIncome    Input = "income"
	InputHighlight Input = "highlight_country"
	InputGrouper   Input = "grouper"
	InputRegressor Input = "regressor"
)

// Output identifies one rendered artifact.
type Output string

const (
	OutputBar        Output = "bar_plot"
	OutputChoropleth Output = "choropleth_plot"
	OutputTimeSeries Output = "ts_plot"
	OutputScatter    Output = "scatter_plot"
	OutputLoadText   Output = "load"
)

// outputs fixes the recomputation order of Affected.
var outputs = []Output{
	OutputBar, OutputChoropleth, OutputTimeSeries, OutputScatter, OutputLoadText,
}

// bindings is the static dependency table: output to the exact set of
// inputs it depends on.
var bindings = map[Output][]Input{
	OutputBar:        {InputSex, InputYear, InputRegion, InputIncome},
	OutputChoropleth: {InputSex, InputYear, InputRegion, InputIncome},
	OutputTimeSeries: {InputSex, InputYearRange, InputHighlight},
	OutputScatter:    {InputSex, InputYear, InputRegion, InputIncome, InputGrouper, InputRegressor},
	OutputLoadText:   {InputRegressor},
}

// Outputs returns every declared output in recomputation order.
func Outputs() []Output {
	out := make([]Output, len(outputs))
	copy(out, outputs)
	return out
}

// DependsOn returns the inputs an output declares.
func DependsOn(o Output) []Input {
	deps := bindings[o]
	out := make([]Input, len(deps))
	copy(out, deps)
	return out
}

// Affected returns the outputs whose declared inputs intersect the
// changed set, in recomputation order.
func Affected(changed ...Input) []Output {
	set := make(map[Input]bool, len(changed))
	for _, in := range changed {
		set[in] = true
	}
	var out []Output
	for _, o := range outputs {
		for _, dep := range bindings[o] {
			if set[dep] {
				out = append(out, o)
				break
			}
		}
	}
	return out
}

// Handler computes one output's artifact from an input snapshot: a
// charts.Figure for the plot outputs, a string for the text panel.
type Handler func(sel filter.Selections) (interface{}, error)

// Dispatcher routes output recomputations to their handlers.
type Dispatcher struct {
	handlers map[Output]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Output]Handler)}
}

// Register installs the handler for an output. Registering an output
// absent from the binding table is a programming error.
func (d *Dispatcher) Register(o Output, h Handler) {
	if _, ok := bindings[o]; !ok {
		panic(fmt.Sprintf("reactive: unknown output %q", o))
	}
	d.handlers[o] = h
}

// Compute recomputes one output against an input snapshot.
func (d *Dispatcher) Compute(o Output, sel filter.Selections) (interface{}, error) {
	h, ok := d.handlers[o]
	if !ok {
		return nil, fmt.Errorf("no handler for output %q", o)
	}
	return h(sel)
}
