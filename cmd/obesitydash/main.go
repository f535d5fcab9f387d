// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Obesitydash serves an interactive dashboard over world obesity and
// socioeconomic data. The prep subcommand downloads and joins the raw
// source files into a local database; serve renders it over HTTP.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"obesitydash/internal/config"
	"obesitydash/internal/dataset"
	"obesitydash/internal/prep"
	"obesitydash/internal/server"
	"obesitydash/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "obesitydash",
		Short:         "world obesity dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (YAML)")

	root.AddCommand(serveCmd(&cfgPath))
	root.AddCommand(prepCmd(&cfgPath))
	return root
}

func serveCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serve the dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*cfgPath)
			if err != nil {
				return err
			}
			defer log.Sync()

			strata, err := store.Load(cfg.Database)
			if err != nil {
				return fmt.Errorf("load dataset %s (run prep first?): %w", cfg.Database, err)
			}
			tab, err := dataset.Table(strata)
			if err != nil {
				return fmt.Errorf("dataset %s: %w", cfg.Database, err)
			}
			dict, err := dataset.LoadDictionary()
			if err != nil {
				return err
			}
			log.Info("dataset loaded", zap.Int("strata", len(strata)))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(tab, dict, log).Run(ctx, cfg.BindAddr())
		},
	}
}

func prepCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "prep",
		Short: "download source data and build the dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*cfgPath)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return prep.Run(ctx, prep.Options{
				CacheDir: cfg.CacheDir,
				Output:   cfg.Database,
			}, log)
		},
	}
}

// setup loads the config and builds a logger at the configured level.
func setup(path string) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	lvl, err := cfg.ZapLevel()
	if err != nil {
		return cfg, nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	log, err := zcfg.Build()
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}
