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

	"github.com/jeremyhahn/go-sskr/pkg/threshold/sskr"
)

func (a *app) newCountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Print the number of shares a layout produces",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			groupThreshold, groups, err := a.layout()
			if err != nil {
				return err
			}
			total, err := sskr.CountShares(groupThreshold, groups)
			if err != nil {
				return err
			}
			return a.printer().PrintCount(groupThreshold, groups, total)
		}),
	}
	cmd.Flags().Int("group-threshold", 1, "number of groups required to recover the secret")
	cmd.Flags().String("groups", "2-of-3", "comma separated groups as THRESHOLD-of-COUNT")
	return cmd
}
