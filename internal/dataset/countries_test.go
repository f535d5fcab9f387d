// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDictionary(t *testing.T) {
	d, err := LoadDictionary()
	require.NoError(t, err)
	assert.NotEmpty(t, d.Names())

	// Canonical names map to themselves.
	for _, name := range d.Names() {
		c, ok := d.Canonical(name)
		assert.True(t, ok, "canonical name %q not an alias of itself", name)
		assert.Equal(t, name, c)
	}

	// Every canonical name carries a geo id, region and income group.
	for _, name := range d.Names() {
		id, ok := d.GeoID(name)
		assert.True(t, ok, "%q has no geo id", name)
		assert.Len(t, id, 2)
		_, ok = d.Region(name)
		assert.True(t, ok, "%q has no region", name)
		_, ok = d.Income(name)
		assert.True(t, ok, "%q has no income group", name)
	}
}

func TestDictionaryAliases(t *testing.T) {
	d, err := LoadDictionary()
	require.NoError(t, err)

	// One spelling per source, all reconciling to the same country.
	tests := []struct{ alias, want string }{
		{"United States of America", "United States"},
		{"Russian Federation", "Russia"},
		{"Republic of Korea", "South Korea"},
		{"Viet Nam", "Vietnam"},
		{"  viet   nam ", "Vietnam"}, // whitespace and case folding
	}
	for _, test := range tests {
		got, ok := d.Canonical(test.alias)
		assert.True(t, ok, "alias %q", test.alias)
		assert.Equal(t, test.want, got, "alias %q", test.alias)
	}

	_, ok := d.Canonical("Atlantis")
	assert.False(t, ok)
}

func TestDictionarySuggest(t *testing.T) {
	d, err := LoadDictionary()
	require.NoError(t, err)

	assert.Equal(t, "Sweden", d.Suggest("Sweeden"))
	assert.Equal(t, "", d.Suggest("xxxxxxxxxxxxxxxxxxxxxxxx"))
}

func TestParseDictionaryErrors(t *testing.T) {
	_, err := parseDictionary("")
	assert.Error(t, err)

	_, err = parseDictionary("SE\tSweden\tEurope & Central Asia")
	assert.Error(t, err, "too few fields")

	_, err = parseDictionary("SWE\tSweden\tEurope & Central Asia\tHigh income\t")
	assert.Error(t, err, "bad iso2")

	d, err := parseDictionary("# comment\nSE\tSweden\tEurope & Central Asia\tHigh income\tKingdom of Sweden\n")
	require.NoError(t, err)
	got, ok := d.Canonical("Kingdom of Sweden")
	assert.True(t, ok)
	assert.Equal(t, "Sweden", got)
}
