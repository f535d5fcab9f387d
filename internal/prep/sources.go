// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package prep builds the prepared obesity dataset from its two
// public sources: the WHO obesity prevalence series and a bundle of
// world-bank socioeconomic indicators. It downloads the raw files,
// reconciles country names, joins the sources into one stratum per
// (country, sex, year), imputes missing smoking values, and persists
// the result. It runs once, offline; the dashboard never touches the
// network.
package prep

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Indicator column semantics: every world-bank value is converted to
// a population count (value/100 × pop) so that Both-sexes aggregation
// is a plain sum. Life expectancy is stored as person-years
// (value × pop) for the same reason.

// source is one downloadable raw file.
type source struct {
	Name string // local file name under the cache directory
	URL  string
}

// obesitySource is the WHO age-standardized obesity prevalence
// series by country, sex and year.
var obesitySource = source{
	Name: "who_obesity.csv",
	URL:  "https://apps.who.int/gho/athena/data/NCD_BMI_30A.csv",
}

// indicatorSources are the world-bank series joined onto the obesity
// data. Per-sex series exist for population, smoking, unemployment
// and life expectancy; the rest apply to both sexes.
var indicatorSources = []source{
	{Name: "wb_pop_male.csv", URL: wbURL("SP.POP.TOTL.MA.IN")},
	{Name: "wb_pop_female.csv", URL: wbURL("SP.POP.TOTL.FE.IN")},
	{Name: "wb_smoke_male.csv", URL: wbURL("SH.PRV.SMOK.MA")},
	{Name: "wb_smoke_female.csv", URL: wbURL("SH.PRV.SMOK.FE")},
	{Name: "wb_primedu.csv", URL: wbURL("SE.PRM.CMPT.ZS")},
	{Name: "wb_unemployed_male.csv", URL: wbURL("SL.UEM.TOTL.MA.ZS")},
	{Name: "wb_unemployed_female.csv", URL: wbURL("SL.UEM.TOTL.FE.ZS")},
	{Name: "wb_literacy.csv", URL: wbURL("SE.ADT.LITR.ZS")},
	{Name: "wb_youthpop.csv", URL: wbURL("SP.POP.0014.TO.ZS")},
	{Name: "wb_lifexp_male.csv", URL: wbURL("SP.DYN.LE00.MA.IN")},
	{Name: "wb_lifexp_female.csv", URL: wbURL("SP.DYN.LE00.FE.IN")},
}

func wbURL(code string) string {
	return fmt.Sprintf("https://api.worldbank.org/v2/country/all/indicator/%s?downloadformat=csv", code)
}

// download fetches every missing source file into dir. Files already
// present are kept, so an interrupted run resumes instead of
// re-downloading.
func download(ctx context.Context, dir string, log *zap.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	sources := append([]source{obesitySource}, indicatorSources...)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, src := range sources {
		g.Go(func() error {
			path := filepath.Join(dir, src.Name)
			if _, err := os.Stat(path); err == nil {
				log.Debug("source cached", zap.String("file", src.Name))
				return nil
			}
			log.Info("downloading", zap.String("file", src.Name), zap.String("url", src.URL))
			return fetch(ctx, src.URL, path)
		})
	}
	return g.Wait()
}

func fetch(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: %s", url, resp.Status)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
