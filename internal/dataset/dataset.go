// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dataset defines the core obesity dataset: one stratum per
// (country, sex, year) with population counts and socioeconomic
// indicators, plus the country-name reconciliation dictionary.
//
// The dataset is constructed once, either by the prep pipeline or by
// loading a prepared database, and is immutable afterwards. All chart
// requests read filtered views of the same base table.
package dataset

import (
	"fmt"
	"math"
	"sort"

	"github.com/aclements/go-gg/table"
)

// Sex is the sex stratification of a stratum. The base table contains
// only Male and Female rows; Both is a selection value that is
// re-derived by summation.
type Sex string

const (
	Male   Sex = "Male"
	Female Sex = "Female"
	Both   Sex = "Both"
)

// SmokeFlag records the provenance of a stratum's smoking value.
type SmokeFlag string

const (
	SmokeObserved SmokeFlag = "observed"
	SmokeMissing  SmokeFlag = "missing"
)

// YearMin and YearMax bound the years covered by the obesity source.
const (
	YearMin = 1975
	YearMax = 2016
)

// Column names of the core table.
const (
	ColCountry    = "country"
	ColRegion     = "region"
	ColIncome     = "income"
	ColSex        = "sex"
	ColYear       = "year"
	ColPop        = "pop"
	ColObese      = "obese"
	ColSmoke      = "smoke"
	ColPrimedu    = "primedu"
	ColUnemployed = "unemployed"
	ColLiteracy   = "literacy"
	ColYouthPop   = "youthpop"
	ColLifexp     = "lifexp"
	ColSmokeFlag  = "flag_smoke"
)

// IndicatorCols lists the nullable indicator count columns, in table
// order. Missing values are NaN.
var IndicatorCols = []string{
	ColSmoke, ColPrimedu, ColUnemployed, ColLiteracy, ColYouthPop, ColLifexp,
}

// CountCols lists every numeric count column, including the
// never-missing pop and obese columns.
var CountCols = append([]string{ColPop, ColObese}, IndicatorCols...)

// Stratum is one row of the core table: the counts for one
// (country, sex, year) combination. Country is the canonical name
// after reconciliation. Pop is never NaN; indicator counts use NaN
// for missing values.
type Stratum struct {
	Country string
	Region  string
	Income  string
	Sex     Sex
	Year    int

	Pop        float64
	Obese      float64
	Smoke      float64
	Primedu    float64
	Unemployed float64
	Literacy   float64
	YouthPop   float64
	Lifexp     float64

	SmokeFlag SmokeFlag
}

// Key returns the unique (country, sex, year) key of s.
func (s *Stratum) Key() string {
	return fmt.Sprintf("%s/%s/%d", s.Country, s.Sex, s.Year)
}

// Valid reports whether s satisfies the base-table invariants.
func (s *Stratum) Valid() error {
	switch {
	case s.Country == "":
		return fmt.Errorf("stratum has empty country")
	case s.Sex != Male && s.Sex != Female:
		return fmt.Errorf("stratum %s: sex must be Male or Female", s.Key())
	case s.Year < YearMin || s.Year > YearMax:
		return fmt.Errorf("stratum %s: year outside %d-%d", s.Key(), YearMin, YearMax)
	case math.IsNaN(s.Pop) || s.Pop <= 0:
		return fmt.Errorf("stratum %s: missing population", s.Key())
	}
	return nil
}

// Table converts strata into a go-gg table with one column per
// Stratum field, ordered by (country, sex, year). Strata that violate
// the base-table invariants are rejected, as are duplicate keys.
func Table(strata []Stratum) (*table.Table, error) {
	sorted := make([]Stratum, len(strata))
	copy(sorted, strata)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := &sorted[i], &sorted[j]
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		if a.Sex != b.Sex {
			return a.Sex < b.Sex
		}
		return a.Year < b.Year
	})

	var (
		country = make([]string, len(sorted))
		region  = make([]string, len(sorted))
		income  = make([]string, len(sorted))
		sex     = make([]string, len(sorted))
		year    = make([]int, len(sorted))
		counts  = make(map[string][]float64, len(CountCols))
		flag    = make([]string, len(sorted))
	)
	for _, col := range CountCols {
		counts[col] = make([]float64, len(sorted))
	}

	seen := make(map[string]bool, len(sorted))
	for i := range sorted {
		s := &sorted[i]
		if err := s.Valid(); err != nil {
			return nil, err
		}
		if key := s.Key(); seen[key] {
			return nil, fmt.Errorf("duplicate stratum %s", key)
		} else {
			seen[key] = true
		}

		country[i] = s.Country
		region[i] = s.Region
		income[i] = s.Income
		sex[i] = string(s.Sex)
		year[i] = s.Year
		counts[ColPop][i] = s.Pop
		counts[ColObese][i] = s.Obese
		counts[ColSmoke][i] = s.Smoke
		counts[ColPrimedu][i] = s.Primedu
		counts[ColUnemployed][i] = s.Unemployed
		counts[ColLiteracy][i] = s.Literacy
		counts[ColYouthPop][i] = s.YouthPop
		counts[ColLifexp][i] = s.Lifexp
		flag[i] = string(s.SmokeFlag)
	}

	b := new(table.Builder).
		Add(ColCountry, country).
		Add(ColRegion, region).
		Add(ColIncome, income).
		Add(ColSex, sex).
		Add(ColYear, year)
	for _, col := range CountCols {
		b.Add(col, counts[col])
	}
	b.Add(ColSmokeFlag, flag)
	return b.Done(), nil
}

// Meta summarizes the distinct categorical values of a table. The
// layout uses it to populate dropdown options.
type Meta struct {
	Regions   []string
	Incomes   []string
	Countries []string
	YearMin   int
	YearMax   int
}

// Describe scans tab once and collects its distinct regions, incomes,
// countries and year bounds, each sorted.
func Describe(tab *table.Table) Meta {
	m := Meta{YearMin: YearMin, YearMax: YearMax}
	if tab == nil || tab.Len() == 0 {
		return m
	}

	uniq := func(col string) []string {
		set := make(map[string]bool)
		for _, v := range tab.MustColumn(col).([]string) {
			if v != "" {
				set[v] = true
			}
		}
		out := make([]string, 0, len(set))
		for v := range set {
			out = append(out, v)
		}
		sort.Strings(out)
		return out
	}

	m.Regions = uniq(ColRegion)
	m.Incomes = uniq(ColIncome)
	m.Countries = uniq(ColCountry)

	years := tab.MustColumn(ColYear).([]int)
	m.YearMin, m.YearMax = years[0], years[0]
	for _, y := range years {
		if y < m.YearMin {
			m.YearMin = y
		}
		if y > m.YearMax {
			m.YearMax = y
		}
	}
	return m
}
