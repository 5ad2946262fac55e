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
)

func (a *app) newSetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sets",
		Short: "Manage stored share sets",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored share sets",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			svc, closeService, err := a.service(true, a.random)
			if err != nil {
				return err
			}
			defer closeService()

			ids, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer().PrintSetList(ids)
		}),
	}

	del := &cobra.Command{
		Use:   "delete <set-id>",
		Short: "Delete a stored share set",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			svc, closeService, err := a.service(true, a.random)
			if err != nil {
				return err
			}
			defer closeService()

			if err := svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.printer().PrintSuccess(fmt.Sprintf("Deleted share set %s", args[0]))
		}),
	}

	cmd.AddCommand(list, del)
	return cmd
}
