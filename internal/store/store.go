// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store persists the prepared obesity dataset in SQLite. The
// prep pipeline writes it once; the server loads it into memory at
// startup and never writes. A database whose schema does not match is
// reported as an error so the server refuses to start on a corrupt
// base table.
package store

import (
	"database/sql"
	"fmt"
	"math"

	_ "modernc.org/sqlite"

	"obesitydash/internal/dataset"
)

// schemaVersion guards against loading databases written by an
// incompatible prep build.
const schemaVersion = 1

const createSQL = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS strata (
	country    TEXT NOT NULL,
	region     TEXT NOT NULL,
	income     TEXT NOT NULL,
	sex        TEXT NOT NULL,
	year       INTEGER NOT NULL,
	pop        REAL NOT NULL,
	obese      REAL NOT NULL,
	smoke      REAL,
	primedu    REAL,
	unemployed REAL,
	literacy   REAL,
	youthpop   REAL,
	lifexp     REAL,
	flag_smoke TEXT NOT NULL,
	PRIMARY KEY (country, sex, year)
);
`

// Save writes strata to a fresh database at path, replacing any
// existing strata table.
func Save(path string, strata []dataset.Stratum) (err error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open dataset db: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec("DROP TABLE IF EXISTS strata; DROP TABLE IF EXISTS meta;"); err != nil {
		return fmt.Errorf("reset dataset db: %w", err)
	}
	if _, err := db.Exec(createSQL); err != nil {
		return fmt.Errorf("create dataset schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec("INSERT INTO meta (key, value) VALUES ('schema', ?)", schemaVersion); err != nil {
		return err
	}

	ins, err := tx.Prepare(`INSERT INTO strata
		(country, region, income, sex, year, pop, obese, smoke, primedu, unemployed, literacy, youthpop, lifexp, flag_smoke)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer ins.Close()

	for i := range strata {
		s := &strata[i]
		if err = s.Valid(); err != nil {
			return err
		}
		_, err = ins.Exec(s.Country, s.Region, s.Income, string(s.Sex), s.Year,
			s.Pop, s.Obese,
			toNull(s.Smoke), toNull(s.Primedu), toNull(s.Unemployed),
			toNull(s.Literacy), toNull(s.YouthPop), toNull(s.Lifexp),
			string(s.SmokeFlag))
		if err != nil {
			return fmt.Errorf("insert stratum %s: %w", s.Key(), err)
		}
	}
	return tx.Commit()
}

// Load reads the full strata table. Any schema mismatch, including a
// missing or wrong-version meta table, is an error.
func Load(path string) ([]dataset.Stratum, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open dataset db: %w", err)
	}
	defer db.Close()

	var version int
	if err := db.QueryRow("SELECT value FROM meta WHERE key = 'schema'").Scan(&version); err != nil {
		return nil, fmt.Errorf("dataset db has no schema marker: %w", err)
	}
	if version != schemaVersion {
		return nil, fmt.Errorf("dataset db schema version %d, want %d", version, schemaVersion)
	}

	rows, err := db.Query(`SELECT country, region, income, sex, year, pop, obese,
		smoke, primedu, unemployed, literacy, youthpop, lifexp, flag_smoke
		FROM strata ORDER BY country, sex, year`)
	if err != nil {
		return nil, fmt.Errorf("read strata: %w", err)
	}
	defer rows.Close()

	var strata []dataset.Stratum
	for rows.Next() {
		var (
			s    dataset.Stratum
			sex  string
			flag string
			ind  [6]sql.NullFloat64
		)
		err := rows.Scan(&s.Country, &s.Region, &s.Income, &sex, &s.Year,
			&s.Pop, &s.Obese,
			&ind[0], &ind[1], &ind[2], &ind[3], &ind[4], &ind[5], &flag)
		if err != nil {
			return nil, fmt.Errorf("scan stratum: %w", err)
		}
		s.Sex = dataset.Sex(sex)
		s.SmokeFlag = dataset.SmokeFlag(flag)
		s.Smoke = fromNull(ind[0])
		s.Primedu = fromNull(ind[1])
		s.Unemployed = fromNull(ind[2])
		s.Literacy = fromNull(ind[3])
		s.YouthPop = fromNull(ind[4])
		s.Lifexp = fromNull(ind[5])

		if err := s.Valid(); err != nil {
			return nil, fmt.Errorf("corrupt base table: %w", err)
		}
		strata = append(strata, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(strata) == 0 {
		return nil, fmt.Errorf("dataset db %s has no strata", path)
	}
	return strata, nil
}

func toNull(x float64) interface{} {
	if math.IsNaN(x) {
		return nil
	}
	return x
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
