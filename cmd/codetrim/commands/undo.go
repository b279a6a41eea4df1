// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/codetrim/cmd/codetrim/opts"
	"github.com/walteh/codetrim/pkg/backup"
	"gitlab.com/tozd/go/errors"
)

// NewUndoCmd creates the undo command
func NewUndoCmd(o *opts.RootOpts) *cobra.Command {
	var (
		dir         string
		list        bool
		cleanup     bool
		noRecursive bool
	)

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Restore files from their .bak backups",
		Long: `Undo finds the .bak files left by trim and:
1. Copies each one back over its original
2. Removes the backup once restored

Use --list to only show the backups and --cleanup to delete them without restoring.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := o.Logger
			manager := backup.New()
			recursive := !noRecursive

			if list && cleanup {
				return errors.New("--list and --cleanup cannot be combined")
			}

			switch {
			case list:
				paths, err := manager.ListBackups(ctx, dir, recursive)
				if err != nil {
					return errors.Errorf("listing backups: %w", err)
				}
				logger.Backups(paths)
			case cleanup:
				removed, err := manager.CleanupBackups(ctx, dir, recursive)
				if err != nil {
					return errors.Errorf("cleaning up backups: %w", err)
				}
				logger.Successf("removed %d backup(s)", removed)
			default:
				logger.Header("restoring backups in " + dir)
				results, err := manager.RestoreDirectory(ctx, dir, recursive)
				if err != nil {
					return errors.Errorf("restoring backups: %w", err)
				}
				logger.UndoResults(results)
				for _, ok := range results {
					if !ok {
						return ErrFilesFailed
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "undo-dir", ".", "directory to search for backups")
	cmd.Flags().BoolVar(&list, "list", false, "list backups without restoring")
	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "delete backups without restoring")
	cmd.Flags().BoolVar(&noRecursive, "no-recursive", false, "only look in the top directory")

	return cmd
}
