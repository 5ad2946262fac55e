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
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-sskr/pkg/health"
	"github.com/jeremyhahn/go-sskr/pkg/storage/file"
)

func (a *app) newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the random source, arithmetic and share storage",
		Long: `Run self checks and report their status. The command fails when any
check is unhealthy. A degraded random source (for example one that repeats
its output) is reported but does not fail the command.`,
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			rng, release, err := a.randomSource()
			if err != nil {
				return err
			}
			defer release()

			checker := health.NewChecker()
			checker.RegisterCheck("random", health.RandomCheck(rng))
			checker.RegisterCheck("self-test", health.SelfTestCheck())

			store, err := file.New(a.cfg.Storage.Dir)
			if err != nil {
				checker.RegisterCheck("storage", func(_ context.Context) health.CheckResult {
					return health.CheckResult{Status: health.StatusUnhealthy, Error: err.Error()}
				})
			} else {
				defer func() { _ = store.Close() }()
				checker.RegisterCheck("storage", health.StorageCheck(store))
			}

			results := checker.Run(cmd.Context())
			status := health.AggregateStatus(results)
			if err := a.printer().PrintHealth(status, results); err != nil {
				return err
			}
			if status == health.StatusUnhealthy {
				return fmt.Errorf("health checks failed")
			}
			return nil
		}),
	}
}
