// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package server exposes the dashboard over HTTP: the layout page,
// one figure endpoint per reactive output, and a health check. Filter
// values are validated here, at the boundary; the filter and chart
// packages assume validated inputs. The base table is immutable, so
// handlers share it without locking.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aclements/go-gg/table"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"obesitydash/internal/charts"
	"obesitydash/internal/dataset"
	"obesitydash/internal/filter"
	"obesitydash/internal/layout"
	"obesitydash/internal/reactive"
)

// Server serves the dashboard for one immutable base table.
type Server struct {
	log      *zap.Logger
	tab      *table.Table
	meta     dataset.Meta
	dict     *dataset.Dictionary
	disp     *reactive.Dispatcher
	sessions *reactive.Registry
	mux      *http.ServeMux
}

// New wires the reactive outputs to their filter and chart pipelines.
func New(tab *table.Table, dict *dataset.Dictionary, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		log:      log,
		tab:      tab,
		meta:     dataset.Describe(tab),
		dict:     dict,
		disp:     reactive.NewDispatcher(),
		sessions: reactive.NewRegistry(),
		mux:      http.NewServeMux(),
	}

	s.disp.Register(reactive.OutputBar, func(sel filter.Selections) (interface{}, error) {
		return charts.Bar(filter.Subset(s.tab, sel), sel), nil
	})
	s.disp.Register(reactive.OutputChoropleth, func(sel filter.Selections) (interface{}, error) {
		return charts.Choropleth(filter.Subset(s.tab, sel), s.dict, s.log, sel), nil
	})
	s.disp.Register(reactive.OutputTimeSeries, func(sel filter.Selections) (interface{}, error) {
		regions := filter.RegionSeries(s.tab, sel)
		countries := filter.CountrySeries(s.tab, sel)
		return charts.TimeSeries(regions, countries, sel), nil
	})
	s.disp.Register(reactive.OutputScatter, func(sel filter.Selections) (interface{}, error) {
		return charts.Scatter(filter.ScatterPoints(s.tab, sel), sel), nil
	})
	s.disp.Register(reactive.OutputLoadText, func(sel filter.Selections) (interface{}, error) {
		return struct {
			Text string `json:"text"`
		}{layout.LoadText(sel.Regressor)}, nil
	})

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /api/figure/{output}", s.handleFigure)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	return s
}

// Handler returns the HTTP handler with request logging attached.
func (s *Server) Handler() http.Handler {
	return s.accessLog(s.mux)
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("serving dashboard", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	return g.Wait()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	bindings := make(map[string][]string)
	for _, o := range reactive.Outputs() {
		deps := make([]string, 0, 4)
		for _, in := range reactive.DependsOn(o) {
			deps = append(deps, string(in))
		}
		bindings[string(o)] = deps
	}

	data := layout.PageData{
		Title:    "World obesity dashboard",
		Session:  uuid.NewString(),
		Controls: layout.Controls(s.meta),
		Bindings: bindings,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := layout.Page.Execute(w, data); err != nil {
		s.log.Error("render page", zap.Error(err))
	}
}

func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	output := reactive.Output(r.PathValue("output"))

	sel, err := s.parseSelections(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Record the snapshot against the session, last write wins, and
	// compute from whatever snapshot is now current. A stale request
	// thus renders the newest inputs rather than its own.
	q := r.URL.Query()
	session := s.sessions.Get(q.Get("session"))
	seq, _ := strconv.ParseUint(q.Get("seq"), 10, 64)
	session.Set(seq, sel)
	sel, _ = session.Snapshot()

	artifact, err := s.disp.Compute(output, sel)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if q.Get("format") == "svg" {
		fig, ok := artifact.(charts.Figure)
		if !ok {
			http.Error(w, "output has no SVG form", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		if err := charts.WriteSVG(w, fig, 800, 500); err != nil {
			s.log.Error("render svg", zap.String("output", string(output)), zap.Error(err))
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(artifact); err != nil {
		s.log.Error("encode figure", zap.String("output", string(output)), zap.Error(err))
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "ok")
}

// parseSelections validates the query parameters against the declared
// enums and ranges. Set-valued inputs accept arbitrary strings:
// unknown regions or countries simply select nothing.
func (s *Server) parseSelections(r *http.Request) (filter.Selections, error) {
	q := r.URL.Query()
	sel := filter.Selections{
		Sex:       dataset.Both,
		Year:      s.meta.YearMax,
		YearLo:    s.meta.YearMin,
		YearHi:    s.meta.YearMax,
		Grouper:   filter.GrouperIncome,
		Regressor: filter.RegressorSmoke,
	}

	if v := q.Get("sex"); v != "" {
		switch dataset.Sex(v) {
		case dataset.Both, dataset.Male, dataset.Female:
			sel.Sex = dataset.Sex(v)
		default:
			return sel, fmt.Errorf("bad sex %q", v)
		}
	}

	var err error
	if sel.Year, err = yearParam(q.Get("year"), sel.Year, s.meta); err != nil {
		return sel, err
	}
	yr := q["year_range"]
	if len(yr) > 0 {
		if len(yr) != 2 {
			return sel, fmt.Errorf("year_range wants two values, got %d", len(yr))
		}
		if sel.YearLo, err = yearParam(yr[0], sel.YearLo, s.meta); err != nil {
			return sel, err
		}
		if sel.YearHi, err = yearParam(yr[1], sel.YearHi, s.meta); err != nil {
			return sel, err
		}
		if sel.YearLo > sel.YearHi {
			return sel, fmt.Errorf("empty year_range %d-%d", sel.YearLo, sel.YearHi)
		}
	}

	sel.Regions = q["region"]
	sel.Incomes = q["income"]
	sel.Highlights = q["highlight_country"]

	if v := q.Get("grouper"); v != "" {
		switch filter.Grouper(v) {
		case filter.GrouperIncome, filter.GrouperSex, filter.GrouperRegion, filter.GrouperNone:
			sel.Grouper = filter.Grouper(v)
		default:
			return sel, fmt.Errorf("bad grouper %q", v)
		}
	}
	if v := q.Get("regressor"); v != "" {
		switch filter.Regressor(v) {
		case filter.RegressorSmoke, filter.RegressorPrimedu, filter.RegressorUnemployed:
			sel.Regressor = filter.Regressor(v)
		default:
			return sel, fmt.Errorf("bad regressor %q", v)
		}
	}
	return sel, nil
}

func yearParam(v string, def int, meta dataset.Meta) (int, error) {
	if v == "" {
		return def, nil
	}
	y, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("bad year %q", v)
	}
	if y < meta.YearMin || y > meta.YearMax {
		return 0, fmt.Errorf("year %d outside %d-%d", y, meta.YearMin, meta.YearMax)
	}
	return y, nil
}

// accessLog logs every request at debug level.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}
