// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prep

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"obesitydash/internal/dataset"
	"obesitydash/internal/store"
)

// indicatorFiles maps each downloaded world-bank file to the stratum
// column it feeds and the sex its series covers.
var indicatorFiles = []struct {
	Name string
	Col  string
	Sex  dataset.Sex
}{
	{"wb_pop_male.csv", dataset.ColPop, dataset.Male},
	{"wb_pop_female.csv", dataset.ColPop, dataset.Female},
	{"wb_smoke_male.csv", dataset.ColSmoke, dataset.Male},
	{"wb_smoke_female.csv", dataset.ColSmoke, dataset.Female},
	{"wb_primedu.csv", dataset.ColPrimedu, dataset.Both},
	{"wb_unemployed_male.csv", dataset.ColUnemployed, dataset.Male},
	{"wb_unemployed_female.csv", dataset.ColUnemployed, dataset.Female},
	{"wb_literacy.csv", dataset.ColLiteracy, dataset.Both},
	{"wb_youthpop.csv", dataset.ColYouthPop, dataset.Both},
	{"wb_lifexp_male.csv", dataset.ColLifexp, dataset.Male},
	{"wb_lifexp_female.csv", dataset.ColLifexp, dataset.Female},
}

// Options configures a prep run.
type Options struct {
	CacheDir string // where raw source files are downloaded
	Output   string // prepared dataset database path
}

// Run executes the full preparation pipeline: download, parse, join,
// impute, persist.
func Run(ctx context.Context, opts Options, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	dict, err := dataset.LoadDictionary()
	if err != nil {
		return fmt.Errorf("load country dictionary: %w", err)
	}

	if err := download(ctx, opts.CacheDir, log); err != nil {
		return fmt.Errorf("download sources: %w", err)
	}

	f, err := os.Open(filepath.Join(opts.CacheDir, obesitySource.Name))
	if err != nil {
		return err
	}
	obesity, err := parseObesity(f)
	f.Close()
	if err != nil {
		return err
	}
	log.Info("parsed obesity source", zap.Int("observations", len(obesity)))

	indicators := make(map[string][]Observation)
	for _, file := range indicatorFiles {
		f, err := os.Open(filepath.Join(opts.CacheDir, file.Name))
		if err != nil {
			return err
		}
		obs, err := parseIndicator(f, file.Sex)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", file.Name, err)
		}
		indicators[file.Col] = append(indicators[file.Col], obs...)
	}

	strata, err := Build(dict, obesity, indicators, log)
	if err != nil {
		return err
	}
	log.Info("built strata", zap.Int("count", len(strata)))

	if err := store.Save(opts.Output, strata); err != nil {
		return fmt.Errorf("persist dataset: %w", err)
	}
	log.Info("wrote prepared dataset", zap.String("path", opts.Output))
	return nil
}

type key struct {
	country string
	sex     dataset.Sex
	year    int
}

// Build joins the parsed sources into the core strata. Country names
// are canonicalized through the dictionary; spellings the dictionary
// cannot reconcile are dropped with a warning. Obesity rows without a
// matching population are dropped (pop is never null). World-bank
// rates become population counts; life expectancy becomes
// person-years. Missing smoking rates are filled per (country, sex)
// series, nearest value forward then backward, and flagged.
func Build(dict *dataset.Dictionary, obesity []Observation, indicators map[string][]Observation, log *zap.Logger) ([]dataset.Stratum, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// Index indicator rates by (country, sex, year); sexless series
	// fan out to both sexes.
	rates := make(map[string]map[key]float64, len(indicators))
	dropped := make(map[string]bool)
	for col, obs := range indicators {
		m := make(map[key]float64, len(obs))
		for _, o := range obs {
			canon, ok := dict.Canonical(o.Country)
			if !ok {
				if !dropped[o.Country] {
					dropped[o.Country] = true
					log.Warn("unreconciled country in indicator source",
						zap.String("country", o.Country),
						zap.String("closest", dict.Suggest(o.Country)))
				}
				continue
			}
			if o.Sex == dataset.Both {
				m[key{canon, dataset.Male, o.Year}] = o.Value
				m[key{canon, dataset.Female, o.Year}] = o.Value
			} else {
				m[key{canon, o.Sex, o.Year}] = o.Value
			}
		}
		rates[col] = m
	}
	pops := rates[dataset.ColPop]

	rateAt := func(col string, k key) float64 {
		if v, ok := rates[col][k]; ok {
			return v
		}
		return math.NaN()
	}

	var strata []dataset.Stratum
	seen := make(map[key]bool, len(obesity))
	for _, o := range obesity {
		canon, ok := dict.Canonical(o.Country)
		if !ok {
			if !dropped[o.Country] {
				dropped[o.Country] = true
				log.Warn("unreconciled country in obesity source",
					zap.String("country", o.Country),
					zap.String("closest", dict.Suggest(o.Country)))
			}
			continue
		}
		k := key{canon, o.Sex, o.Year}
		if seen[k] {
			return nil, fmt.Errorf("duplicate obesity observation for %s/%s/%d", canon, o.Sex, o.Year)
		}
		seen[k] = true

		pop, ok := pops[k]
		if !ok || pop <= 0 {
			continue // no population, row dropped at build time
		}

		region, _ := dict.Region(canon)
		income, _ := dict.Income(canon)
		strata = append(strata, dataset.Stratum{
			Country: canon,
			Region:  region,
			Income:  income,
			Sex:     o.Sex,
			Year:    o.Year,
			Pop:     pop,
			Obese:   o.Value / 100 * pop,
			// Smoke is set below, after rate imputation.
			Smoke:      math.NaN(),
			Primedu:    rateAt(dataset.ColPrimedu, k) / 100 * pop,
			Unemployed: rateAt(dataset.ColUnemployed, k) / 100 * pop,
			Literacy:   rateAt(dataset.ColLiteracy, k) / 100 * pop,
			YouthPop:   rateAt(dataset.ColYouthPop, k) / 100 * pop,
			Lifexp:     rateAt(dataset.ColLifexp, k) * pop,
		})
	}

	imputeSmoke(strata, rates[dataset.ColSmoke])

	sort.Slice(strata, func(i, j int) bool {
		a, b := &strata[i], &strata[j]
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		if a.Sex != b.Sex {
			return a.Sex < b.Sex
		}
		return a.Year < b.Year
	})
	return strata, nil
}

// imputeSmoke fills missing smoking rates within each (country, sex)
// year-ordered series before converting them to counts. Filling
// happens on the rate, not the count, so a carried value scales with
// each year's own population. Strata whose value was observed are
// flagged observed; filled or still-missing strata are flagged
// missing.
func imputeSmoke(strata []dataset.Stratum, smoke map[key]float64) {
	groups := make(map[key][]int) // year-less key -> stratum indexes
	for i := range strata {
		gk := key{strata[i].Country, strata[i].Sex, 0}
		groups[gk] = append(groups[gk], i)
	}

	for _, idxs := range groups {
		sort.Slice(idxs, func(a, b int) bool {
			return strata[idxs[a]].Year < strata[idxs[b]].Year
		})

		series := make([]float64, len(idxs))
		for j, i := range idxs {
			s := &strata[i]
			k := key{s.Country, s.Sex, s.Year}
			if v, ok := smoke[k]; ok {
				series[j] = v
				s.SmokeFlag = dataset.SmokeObserved
			} else {
				series[j] = math.NaN()
				s.SmokeFlag = dataset.SmokeMissing
			}
		}

		filled := dataset.FillNearest(series)
		for j, i := range idxs {
			s := &strata[i]
			if math.IsNaN(filled[j]) {
				continue // never observed for this country and sex
			}
			s.Smoke = filled[j] / 100 * s.Pop
		}
	}
}
