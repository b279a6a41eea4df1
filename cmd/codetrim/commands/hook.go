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
	"github.com/walteh/codetrim/pkg/hook"
	"gitlab.com/tozd/go/errors"
)

// NewGenerateHookCmd creates the generate-hook command
func NewGenerateHookCmd(o *opts.RootOpts) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "generate-hook [directory]",
		Short: "Install a git pre-commit hook that trims staged files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			path, err := hook.Generate(cmd.Context(), dir, force)
			if err != nil {
				return errors.Errorf("generating hook: %w", err)
			}

			o.Logger.Successf("installed %s", path)
			o.Logger.Infof("windows variants written next to it (%s.bat, %s.ps1)", hook.HookName, hook.HookName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing pre-commit hook")

	return cmd
}
