// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prep

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"obesitydash/internal/dataset"
)

// Observation is one parsed (country, sex, year, value) record. The
// country name is the raw source spelling; reconciliation happens at
// join time. Sex is Both for series without sex disaggregation.
type Observation struct {
	Country string
	Sex     dataset.Sex
	Year    int
	Value   float64
}

// parseObesity reads the WHO prevalence export. The export carries
// Location, Period and Dim1 (sex) columns plus a value column whose
// cells look like "24.5 [18.3-30.5]"; only the point estimate is
// kept. "Both sexes" aggregate rows are dropped: the dashboard
// re-derives them by summation.
func parseObesity(r io.Reader) ([]Observation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("obesity source: %w", err)
	}
	loc, err1 := colIndex(header, "Location")
	year, err2 := colIndex(header, "Period")
	sex, err3 := colIndex(header, "Dim1")
	val, err4 := colIndex(header, "First Tooltip")
	for _, err := range []error{err1, err2, err3, err4} {
		if err != nil {
			return nil, fmt.Errorf("obesity source: %w", err)
		}
	}

	var out []Observation
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("obesity source: %w", err)
		}

		var o Observation
		switch rec[sex] {
		case "Male":
			o.Sex = dataset.Male
		case "Female":
			o.Sex = dataset.Female
		default:
			continue // "Both sexes" and any future dimensions
		}
		o.Country = rec[loc]
		if o.Year, err = strconv.Atoi(rec[year]); err != nil {
			return nil, fmt.Errorf("obesity source: bad year %q", rec[year])
		}
		if o.Value, err = pointEstimate(rec[val]); err != nil {
			continue // no estimate for this stratum
		}
		out = append(out, o)
	}
	return out, nil
}

// pointEstimate extracts the leading number from a WHO value cell,
// ignoring the bracketed uncertainty interval.
func pointEstimate(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if i := strings.IndexByte(cell, '['); i >= 0 {
		cell = strings.TrimSpace(cell[:i])
	}
	if cell == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(cell, 64)
}

// parseIndicator reads a world-bank wide-format CSV: preamble lines,
// then a header row starting with "Country Name" followed by one
// column per year. Empty cells are skipped. All records are tagged
// with the given sex (Both for series without sex disaggregation).
func parseIndicator(r io.Reader, sex dataset.Sex) ([]Observation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	// Skip the metadata preamble.
	var header []string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil, fmt.Errorf("indicator source: no header row")
		}
		if err != nil {
			return nil, fmt.Errorf("indicator source: %w", err)
		}
		if len(rec) > 0 && rec[0] == "Country Name" {
			header = rec
			break
		}
	}

	// Map year columns.
	years := make(map[int]int) // column index -> year
	for i, name := range header {
		if y, err := strconv.Atoi(name); err == nil {
			years[i] = y
		}
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("indicator source: header has no year columns")
	}

	var out []Observation
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("indicator source: %w", err)
		}
		for i, y := range years {
			if i >= len(rec) || strings.TrimSpace(rec[i]) == "" {
				continue
			}
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				continue
			}
			out = append(out, Observation{Country: rec[0], Sex: sex, Year: y, Value: v})
		}
	}
	return out, nil
}

func colIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("missing column %q", name)
}
