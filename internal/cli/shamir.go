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
	"time"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-sskr/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-sskr/pkg/metrics"
	"github.com/jeremyhahn/go-sskr/pkg/shareset"
)

func (a *app) newShamirCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shamir",
		Short: "Single level Shamir secret sharing",
		Long: `Split and combine with plain Shamir secret sharing over GF(256).

Shares are printed as a one byte index followed by the payload. Up to 255
shares are supported.`,
	}

	split := &cobra.Command{
		Use:   "split",
		Short: "Split a secret into threshold shares",
		Args:  cobra.NoArgs,
		RunE:  a.run(a.shamirSplit),
	}
	split.Flags().Int("threshold", 2, "shares required to recover the secret")
	split.Flags().Int("count", 3, "number of shares to create")
	split.Flags().String("secret", "", "secret to split")
	split.Flags().String("secret-file", "", "file holding the secret")

	combine := &cobra.Command{
		Use:   "combine [share...]",
		Short: "Recover a secret from threshold shares",
		RunE:  a.run(a.shamirCombine),
	}
	combine.Flags().Int("threshold", 0, "fail unless at least this many shares are given (0 disables)")

	cmd.AddCommand(split, combine)
	return cmd
}

func (a *app) shamirSplit(cmd *cobra.Command, _ []string) (err error) {
	start := time.Now()
	defer func() { recordFlat(metrics.OpSplit, start, err) }()

	sharer, err := secretsharing.NewShamir(&secretsharing.ShareConfig{
		Threshold:   a.v.GetInt("threshold"),
		TotalShares: a.v.GetInt("count"),
	})
	if err != nil {
		return err
	}
	secret, err := a.readSecret()
	if err != nil {
		return err
	}
	defer secretsharing.Zero(secret)

	rng, release, err := a.randomSource()
	if err != nil {
		return err
	}
	defer release()

	shares, err := sharer.Split(secret, rng)
	if err != nil {
		return err
	}
	metrics.RecordShares(metrics.OpSplit, metrics.SchemeShamir, len(shares))
	a.logger.Info("secret split", "scheme", metrics.SchemeShamir, "threshold", sharer.Threshold(), "shares", len(shares))
	return a.printer().PrintFlatShares(sharer.Threshold(), shares)
}

func (a *app) shamirCombine(cmd *cobra.Command, args []string) (err error) {
	start := time.Now()
	defer func() { recordFlat(metrics.OpCombine, start, err) }()

	inputs, err := a.readShareInputs(args)
	if err != nil {
		return err
	}
	shares := make([]secretsharing.Share, 0, len(inputs))
	for i, raw := range inputs {
		share, err := secretsharing.ParseShare(raw)
		if err != nil {
			return fmt.Errorf("share %d: %w", i+1, err)
		}
		shares = append(shares, share)
	}

	var secret []byte
	if threshold := a.v.GetInt("threshold"); threshold > 0 {
		secret, err = secretsharing.CombineWithThreshold(threshold, shares)
	} else {
		secret, err = secretsharing.Combine(shares)
	}
	if err != nil {
		return err
	}
	defer secretsharing.Zero(secret)

	metrics.RecordShares(metrics.OpCombine, metrics.SchemeShamir, len(shares))
	return a.printer().PrintSecret(secret, nil)
}

func recordFlat(op string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
		metrics.RecordError(op, shareset.ErrorType(err))
	}
	metrics.RecordOperation(op, metrics.SchemeShamir, status, time.Since(start).Seconds())
}
