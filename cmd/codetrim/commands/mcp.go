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
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/walteh/codetrim/cmd/codetrim/opts"
	"github.com/walteh/codetrim/pkg/mcpserver"
)

// NewMCPCmd creates the mcp command
func NewMCPCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve trimming tools to MCP clients over stdio",
		Long: `Mcp starts a Model Context Protocol server on stdin/stdout with the tools
trim_directory, list_backups and restore_backups. Flags and config given to this
command become the defaults of every tool call.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mcpserver.New(o.Config, o.Version).Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
