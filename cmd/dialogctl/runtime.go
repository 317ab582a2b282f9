// Package main implements dialogctl, the operational CLI that wires the
// library packages (blockstore, cell, branch, triple, internal/metrics,
// pkg/config) together for a human operator: open a branch, commit or
// select artifacts, resolve or publish a cell, record a remote site in the
// config file, or serve a Prometheus scrape endpoint. It does not use the
// capability or remote packages. dialogctl is the one place in this module
// allowed to log through zap, per spec.md §7's "library code does not
// log" rule; everywhere else an error is returned for the caller to
// decide what to do with.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dialog-db/dialog-db-sub004/blockstore"
	"github.com/dialog-db/dialog-db-sub004/cell"
	"github.com/dialog-db/dialog-db-sub004/internal/metrics"
	"github.com/dialog-db/dialog-db-sub004/pkg/config"
)

var (
	appOnce sync.Once
	app     *application
)

// application is the lazily-initialized runtime shared across subcommands,
// matching the teacher's sync.Once-guarded singleton pattern in
// internal/teacherref/cli/access_control.go's accessInit. pool is shared
// across every openBranch call in the process so two subcommands invoked
// against the same branch within one dialogctl invocation (or one
// long-running embedding of this package) observe each other's writes
// through the same *cell.Cell instead of racing two independent backends.
type application struct {
	cfg     *config.Config
	metrics *metrics.Collector
	pool    *cell.Pool
}

func bootstrapLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	zap.ReplaceGlobals(logger)
	return logger
}

func ensureApp() (*application, error) {
	appOnce.Do(func() {
		cfg, loadErr := config.LoadFromEnv()
		if loadErr != nil {
			zap.L().Sugar().Warnw("no config file found, using defaults", "error", loadErr)
			cfg = defaultConfig()
		}
		app = &application{cfg: cfg, metrics: metrics.New(), pool: cell.NewPool()}
	})
	return app, nil
}

// defaultConfig is used when no Viper config file is found, so dialogctl
// stays usable without first writing a config/default.yaml.
func defaultConfig() *config.Config {
	var cfg config.Config
	cfg.Backend.Kind = "memory"
	cfg.Cache.NodeCacheEntries = blockstore.DefaultCacheEntries
	return &cfg
}

// openBlockBackend wires the durable block backend named by cfg.Backend.
func openBlockBackend(cfg *config.Config) (blockstore.Backend, error) {
	switch cfg.Backend.Kind {
	case "", "memory":
		return blockstore.NewMemoryBackend(), nil
	case "local":
		dir := cfg.Backend.Path
		if dir == "" {
			dir = filepath.Join(".", "dialogdb-data", "blocks")
		}
		return blockstore.NewFileBackend(dir)
	default:
		return nil, fmt.Errorf("unsupported backend kind %q (want \"memory\" or \"local\")", cfg.Backend.Kind)
	}
}

// openCellBackend wires the backend for one named cell (a branch's
// revision cell, or an arbitrary application cell) under the same
// configured storage kind as the block backend.
func openCellBackend(cfg *config.Config, name string) (cell.Backend, error) {
	switch cfg.Backend.Kind {
	case "", "memory":
		return cell.NewMemoryBackend(), nil
	case "local":
		dir := cfg.Backend.Path
		if dir == "" {
			dir = filepath.Join(".", "dialogdb-data", "cells")
		}
		return cell.NewFileBackend(filepath.Join(dir, name))
	default:
		return nil, fmt.Errorf("unsupported backend kind %q (want \"memory\" or \"local\")", cfg.Backend.Kind)
	}
}

func writeSiteConfig(site config.SiteConfig, configPath string) error {
	if configPath == "" {
		configPath = filepath.Join("config", "default.yaml")
	}
	viper.SetConfigFile(configPath)
	if _, err := os.Stat(configPath); err == nil {
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read existing config: %w", err)
		}
	}
	var sites []map[string]any
	_ = viper.UnmarshalKey("sites", &sites)
	sites = append(sites, map[string]any{
		"name":             site.Name,
		"endpoint":         site.Endpoint,
		"region":           site.Region,
		"bucket":           site.Bucket,
		"credentials_kind": site.CredentialsKind,
		"access_key_id":    site.AccessKeyID,
		"secret_access_key": site.SecretAccessKey,
	})
	viper.Set("sites", sites)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return viper.WriteConfigAs(configPath)
}
