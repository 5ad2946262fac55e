// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-sskr.
//
// go-sskr is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.


package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-sskr/internal/config"
	"github.com/jeremyhahn/go-sskr/pkg/crypto/rand"
	"github.com/jeremyhahn/go-sskr/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-sskr/pkg/logging"
	"github.com/jeremyhahn/go-sskr/pkg/metrics"
	"github.com/jeremyhahn/go-sskr/pkg/shareset"
	"github.com/jeremyhahn/go-sskr/pkg/storage"
	"github.com/jeremyhahn/go-sskr/pkg/storage/file"
)

// setup binds flags and SSKR_* environment variables, loads the config
// file and applies overrides. Precedence: flag, env, file, default.
func (a *app) setup(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("SSKR")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	cfg := config.Default()
	if path := a.v.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	a.applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	a.logger = logging.New(logging.Options{
		Debug:  cfg.IsDebug(),
		Format: logging.Format(cfg.Logging.Format),
		Output: a.stderr,
	})
	if cfg.Metrics.Enabled {
		metrics.Enable()
	} else {
		metrics.Disable()
	}
	return nil
}

func (a *app) applyOverrides(cfg *config.Config) {
	if a.v.IsSet("output") {
		cfg.Output.Format = a.v.GetString("output")
	}
	if a.v.IsSet("encoding") {
		cfg.Output.Encoding = a.v.GetString("encoding")
	}
	if a.v.IsSet("log-format") {
		cfg.Logging.Format = a.v.GetString("log-format")
	}
	if a.v.GetBool("verbose") {
		cfg.Logging.Level = "debug"
	}
	if a.v.IsSet("rng") {
		cfg.RNG.Mode = rand.Mode(a.v.GetString("rng"))
	}
	if a.v.IsSet("storage-dir") {
		cfg.Storage.Dir = a.v.GetString("storage-dir")
	}
	if path := a.v.GetString("metrics-textfile"); path != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Textfile = path
	}
}

// run wraps a command so metrics are flushed whether or not it fails.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if a.cfg.Metrics.Enabled {
			if werr := metrics.WriteTextfile(a.cfg.Metrics.Textfile); werr != nil {
				a.logger.Warn("failed to write metrics textfile", "error", werr)
			}
		}
		return err
	}
}

// randomSource returns the configured RNG and a release func.
func (a *app) randomSource() (secretsharing.RandomSource, func(), error) {
	if a.random != nil {
		return a.random, func() {}, nil
	}
	resolver, err := rand.NewResolver(&a.cfg.RNG)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open random source: %w", err)
	}
	a.logger.Debug("random source opened", "mode", string(resolver.Mode()))
	return resolver, func() { a.logger.MaybeError(resolver.Close()) }, nil
}

// service creates a share-set service. Persistent services use the file
// backend under the storage directory; others keep shares in memory.
func (a *app) service(persistent bool, rng secretsharing.RandomSource) (*shareset.Service, func(), error) {
	var backend storage.Backend
	if persistent {
		fs, err := file.New(a.cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		backend = fs
	} else {
		backend = storage.NewMemory()
	}
	svc, err := shareset.New(&shareset.Config{
		Backend: backend,
		Random:  rng,
		Logger:  a.logger,
		Now:     a.now,
	})
	if err != nil {
		_ = backend.Close()
		return nil, nil, err
	}
	return svc, func() { a.logger.MaybeError(backend.Close()) }, nil
}
