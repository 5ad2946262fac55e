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

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-sskr/pkg/correlation"
	"github.com/jeremyhahn/go-sskr/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-sskr/pkg/threshold/sskr"
)

func (a *app) newCombineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combine [share...]",
		Short: "Recover a secret from shares",
		Long: `Recover a secret from SSKR shares.

Shares are taken from the arguments, or one per line from stdin. With
--set-id the shares of a stored set are loaded from --storage-dir instead;
missing shares are tolerated as long as the thresholds are still met.`,
		RunE: a.run(a.combine),
	}
	cmd.Flags().String("set-id", "", "recover a stored share set")
	return cmd
}

func (a *app) combine(cmd *cobra.Command, args []string) error {
	setID := a.v.GetString("set-id")
	if setID != "" && len(args) > 0 {
		return fmt.Errorf("shares and --set-id are mutually exclusive")
	}

	svc, closeService, err := a.service(setID != "", a.random)
	if err != nil {
		return err
	}
	defer closeService()

	ctx := correlation.WithOperationID(cmd.Context(), correlation.NewID())

	var shares []*sskr.Share
	if setID != "" {
		loaded, err := svc.Load(ctx, setID)
		if err != nil {
			return err
		}
		for _, m := range loaded.Missing {
			a.printVerbose("share %s is missing", m.Key)
		}
		shares = loaded.Shares
	} else {
		inputs, err := a.readShareInputs(args)
		if err != nil {
			return err
		}
		for i, raw := range inputs {
			share, err := sskr.ParseShare(raw)
			if err != nil {
				return fmt.Errorf("share %d: %w", i+1, err)
			}
			shares = append(shares, share)
		}
	}

	res, err := svc.Combine(ctx, shares)
	if err != nil {
		return err
	}
	defer secretsharing.Zero(res.Secret)

	a.printVerbose("recovered from groups %v", res.Groups)
	return a.printer().PrintSecret(res.Secret, res.Groups)
}
