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
	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-sskr/pkg/correlation"
	"github.com/jeremyhahn/go-sskr/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-sskr/pkg/shareset"
)

func (a *app) newSplitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a secret into grouped shares",
		Long: `Split a secret into SSKR shares.

The secret is read from --secret, --secret-file or stdin in the configured
encoding. With --store the shares and a manifest are written beneath
--storage-dir so the set can later be recovered with combine --set-id.`,
		Args: cobra.NoArgs,
		RunE: a.run(a.split),
	}
	f := cmd.Flags()
	f.Int("group-threshold", 1, "number of groups required to recover the secret")
	f.String("groups", "2-of-3", "comma separated groups as THRESHOLD-of-COUNT")
	f.String("secret", "", "secret to split")
	f.String("secret-file", "", "file holding the secret")
	f.Bool("store", false, "store shares and a manifest under --storage-dir")
	f.String("set-id", "", "ID of the stored set (default: the operation ID)")
	return cmd
}

func (a *app) split(cmd *cobra.Command, _ []string) error {
	groupThreshold, groups, err := a.layout()
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

	store := a.v.GetBool("store")
	svc, closeService, err := a.service(store, rng)
	if err != nil {
		return err
	}
	defer closeService()

	ctx := correlation.WithOperationID(cmd.Context(), correlation.NewID())
	res, err := svc.Split(ctx, &shareset.SplitRequest{
		SetID:          a.v.GetString("set-id"),
		GroupThreshold: groupThreshold,
		Groups:         groups,
		Secret:         secret,
	})
	if err != nil {
		return err
	}
	a.printVerbose("operation %s produced %d shares", correlation.GetOperationID(ctx), res.Manifest.TotalShares())

	storedIn := ""
	if store {
		storedIn = a.cfg.Storage.Dir
	}
	return a.printer().PrintSplit(res, storedIn)
}
