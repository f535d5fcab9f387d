// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

//go:embed countryinfo.tsv
var countryInfoTSV string

// Dictionary reconciles the country spellings used by the different
// data sources (obesity source, world-bank indicators, map layer)
// into one canonical name per country. It is built once from the
// embedded reference file and is read-only afterwards.
type Dictionary struct {
	canon  map[string]string // normalized spelling -> canonical name
	geo    map[string]string // canonical name -> ISO 3166-1 alpha-2
	region map[string]string // canonical name -> world-bank region
	income map[string]string // canonical name -> income group
	names  []string          // canonical names, sorted
}

// LoadDictionary parses the embedded country reference file.
func LoadDictionary() (*Dictionary, error) {
	return parseDictionary(countryInfoTSV)
}

// parseDictionary reads tab-separated records of the form
//
//	iso2 <tab> canonical name <tab> region <tab> income group <tab> alias|alias|...
//
// Lines starting with # are comments. The alias field may be empty;
// the canonical name is always an alias of itself.
func parseDictionary(data string) (*Dictionary, error) {
	d := &Dictionary{
		canon:  make(map[string]string),
		geo:    make(map[string]string),
		region: make(map[string]string),
		income: make(map[string]string),
	}

	for ln, line := range strings.Split(data, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			return nil, fmt.Errorf("country reference line %d: want at least 4 fields, got %d", ln+1, len(fields))
		}
		iso2, name, region, income := fields[0], fields[1], fields[2], fields[3]
		if len(iso2) != 2 || name == "" {
			return nil, fmt.Errorf("country reference line %d: malformed record", ln+1)
		}

		d.geo[name] = iso2
		d.region[name] = region
		d.income[name] = income
		d.names = append(d.names, name)

		d.canon[normName(name)] = name
		if len(fields) >= 5 && fields[4] != "" {
			for _, alias := range strings.Split(fields[4], "|") {
				d.canon[normName(alias)] = name
			}
		}
	}
	if len(d.names) == 0 {
		return nil, fmt.Errorf("country reference file is empty")
	}
	sort.Strings(d.names)
	return d, nil
}

func normName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Canonical maps a source-specific country spelling to its canonical
// name. Canonical names map to themselves, so the mapping is
// idempotent. The second result is false for unknown spellings.
func (d *Dictionary) Canonical(name string) (string, bool) {
	c, ok := d.canon[normName(name)]
	return c, ok
}

// GeoID maps a canonical country name to the identifier the map
// layer expects (ISO 3166-1 alpha-2).
func (d *Dictionary) GeoID(canonical string) (string, bool) {
	id, ok := d.geo[canonical]
	return id, ok
}

// Region returns the world-bank region of a canonical country name.
func (d *Dictionary) Region(canonical string) (string, bool) {
	r, ok := d.region[canonical]
	return r, ok
}

// Income returns the income group of a canonical country name.
func (d *Dictionary) Income(canonical string) (string, bool) {
	g, ok := d.income[canonical]
	return g, ok
}

// Names returns the canonical country names in sorted order. The
// caller must not modify the returned slice.
func (d *Dictionary) Names() []string {
	return d.names
}

// Suggest returns the canonical name closest to an unreconciled
// spelling by edit distance, for use in log messages. It returns ""
// when nothing is plausibly close.
func (d *Dictionary) Suggest(name string) string {
	const maxDistance = 10

	norm := normName(name)
	best, bestDist := "", maxDistance+1
	for _, c := range d.names {
		dist := levenshtein.ComputeDistance(norm, normName(c))
		if dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best
}
