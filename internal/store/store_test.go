// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"database/sql"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obesitydash/internal/dataset"
)

func testStrata() []dataset.Stratum {
	nan := math.NaN()
	return []dataset.Stratum{
		{
			Country: "Sweden", Region: "Europe & Central Asia", Income: "High income",
			Sex: dataset.Male, Year: 2016,
			Pop: 4900000, Obese: 980000,
			Smoke: 343000, Primedu: nan, Unemployed: 323400,
			Literacy: nan, YouthPop: 833000, Lifexp: 4900000 * 80.6,
			SmokeFlag: dataset.SmokeObserved,
		},
		{
			Country: "Sweden", Region: "Europe & Central Asia", Income: "High income",
			Sex: dataset.Female, Year: 2016,
			Pop: 4950000, Obese: 940500,
			Smoke: nan, Primedu: nan, Unemployed: nan,
			Literacy: nan, YouthPop: nan, Lifexp: nan,
			SmokeFlag: dataset.SmokeMissing,
		},
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obesity.db")

	want := testStrata()
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Load orders by (country, sex, year): Female first.
	assert.Equal(t, dataset.Female, got[0].Sex)
	assert.Equal(t, dataset.Male, got[1].Sex)

	assert.Equal(t, want[0].Country, got[1].Country)
	assert.Equal(t, want[0].Pop, got[1].Pop)
	assert.Equal(t, want[0].Smoke, got[1].Smoke)
	assert.Equal(t, want[0].SmokeFlag, got[1].SmokeFlag)

	// NULLs round-trip back to NaN.
	assert.True(t, math.IsNaN(got[1].Primedu))
	assert.True(t, math.IsNaN(got[0].Smoke))
}

func TestSaveReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obesity.db")

	require.NoError(t, Save(path, testStrata()))
	require.NoError(t, Save(path, testStrata()[:1]))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSaveRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obesity.db")

	bad := testStrata()
	bad[0].Pop = 0
	assert.Error(t, Save(path, bad))
}

func TestLoadMissingSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE unrelated (x INTEGER)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Load(path)
	assert.ErrorContains(t, err, "schema marker")
}

func TestLoadWrongVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obesity.db")
	require.NoError(t, Save(path, testStrata()))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec("UPDATE meta SET value = 999 WHERE key = 'schema'")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Load(path)
	assert.ErrorContains(t, err, "schema version")
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obesity.db")
	require.NoError(t, Save(path, testStrata()))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec("UPDATE strata SET year = 1900")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Load(path)
	assert.ErrorContains(t, err, "corrupt base table")
}

func TestLoadEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obesity.db")
	require.NoError(t, Save(path, nil))

	_, err := Load(path)
	assert.ErrorContains(t, err, "no strata")
}
