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

	"github.com/jeremyhahn/go-sskr/pkg/threshold/sskr"
)

func (a *app) newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [share...]",
		Short: "Decode share headers",
		Long:  `Decode and validate SSKR share headers without combining.`,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			inputs, err := a.readShareInputs(args)
			if err != nil {
				return err
			}
			shares := make([]*sskr.Share, 0, len(inputs))
			for i, raw := range inputs {
				share, err := sskr.ParseShare(raw)
				if err != nil {
					return fmt.Errorf("share %d: %w", i+1, err)
				}
				shares = append(shares, share)
			}
			return a.printer().PrintShareInfo(shares)
		}),
	}
}
