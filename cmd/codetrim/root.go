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

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/walteh/codetrim/cmd/codetrim/commands"
	"github.com/walteh/codetrim/cmd/codetrim/opts"
	"github.com/walteh/codetrim/pkg/config"
)

// newRootCmd builds the command tree. Running the root without a subcommand
// trims, so `codetrim .` and `codetrim trim .` are the same.
func newRootCmd(console io.Writer) (*opts.RootOpts, *cobra.Command) {
	o := &opts.RootOpts{
		Console: console,
		Version: readBuildInfo().version,
	}

	cmd := &cobra.Command{
		Use:   "codetrim [directory | file...]",
		Short: "Remove trailing whitespace and excess blank lines from source files",
		Long: `codetrim cleans whitespace in text files: trailing spaces and tabs, runs of
blank lines and missing or doubled final newlines. Binary files are detected and
left alone, and every modified file can be restored with "codetrim undo".

Options are read from .codetrim.{yaml,yml,json,hcl}, then CODETRIM_* environment
variables, then flags.`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := o.Setup(cmd.Context(), cmd.Flags())
			if err != nil {
				return err
			}
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunTrim(cmd.Context(), o, args)
		},
	}

	addRootFlags(cmd, o)

	cmd.AddCommand(
		commands.NewTrimCmd(o),
		commands.NewUndoCmd(o),
		commands.NewGenerateHookCmd(o),
		commands.NewMCPCmd(o),
		newVersionCmd(),
	)

	return o, cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", "", "config file path (default: .codetrim.* in the working directory)")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	config.RegisterFlags(cmd.PersistentFlags())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), readBuildInfo().String())
		},
	}
}
