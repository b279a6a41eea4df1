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

// Package mcpserver exposes trimming and undo as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/walteh/codetrim/pkg/backup"
	"github.com/walteh/codetrim/pkg/config"
	"github.com/walteh/codetrim/pkg/operation"
	"github.com/walteh/codetrim/pkg/report"
	"gitlab.com/tozd/go/errors"
)

// TrimDirectoryParams are the arguments of the trim_directory tool
type TrimDirectoryParams struct {
	Root     string `json:"root" jsonschema:"directory to trim"`
	DryRun   *bool  `json:"dry_run,omitempty" jsonschema:"report changes without writing files"`
	Diff     *bool  `json:"diff,omitempty" jsonschema:"include unified diffs (dry runs only)"`
	MaxFiles *int   `json:"max_files,omitempty" jsonschema:"maximum number of files to process, 0 for unlimited"`
	Include  string `json:"include,omitempty" jsonschema:"comma separated globs of files to include"`
	Exclude  string `json:"exclude,omitempty" jsonschema:"comma separated globs of files to exclude"`
}

// BackupParams are the arguments of the backup tools
type BackupParams struct {
	Root      string `json:"root" jsonschema:"directory containing .bak files"`
	Recursive *bool  `json:"recursive,omitempty" jsonschema:"descend into subdirectories, default true"`
}

// TrimDirectoryResult is the JSON returned by trim_directory
type TrimDirectoryResult struct {
	report.Document
	Diffs map[string]string `json:"diffs,omitempty"`
}

// 🛰️ Server serves the trimming tools with defaults from a resolved config
type Server struct {
	base    *config.Config
	version string
	backups *backup.Manager
}

// 🏭 New creates a server; every tool call starts from a copy of base
func New(base *config.Config, version string) *Server {
	return &Server{
		base:    base,
		version: version,
		backups: backup.New(),
	}
}

// 🔌 MCPServer builds the protocol server with every tool registered
func (s *Server) MCPServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "codetrim",
		Version: s.version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "trim_directory",
		Description: "Trim trailing whitespace, collapse blank lines and normalize final newlines in a directory",
	}, s.TrimDirectory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_backups",
		Description: "List .bak files left by previous trim runs",
	}, s.ListBackups)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "restore_backups",
		Description: "Restore files from their .bak backups and delete the backups",
	}, s.RestoreBackups)

	return server
}

// 🚀 Run serves the tools on transport until ctx is done or the client leaves
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	zerolog.Ctx(ctx).Info().Str("version", s.version).Msg("starting MCP server")
	if err := s.MCPServer().Run(ctx, transport); err != nil {
		return errors.Errorf("running MCP server: %w", err)
	}
	return nil
}

// TrimDirectory handles the trim_directory tool
func (s *Server) TrimDirectory(ctx context.Context, req *mcp.CallToolRequest, args TrimDirectoryParams) (*mcp.CallToolResult, any, error) {
	if args.Root == "" {
		return nil, nil, errors.New("root is required")
	}

	cfg := s.base.Clone()
	if args.DryRun != nil {
		cfg.DryRun = *args.DryRun
	}
	if args.Diff != nil {
		cfg.Diff = *args.Diff
	}
	if args.MaxFiles != nil {
		cfg.MaxFiles = *args.MaxFiles
	}
	if args.Include != "" {
		cfg.Include = args.Include
	}
	if args.Exclude != "" {
		cfg.Exclude = args.Exclude
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, errors.Errorf("validating arguments: %w", err)
	}

	diffs := map[string]string{}
	proc, err := operation.NewProcessor(cfg, operation.Options{
		DiffSink: func(ctx context.Context, path, diff string) {
			diffs[path] = diff
		},
	})
	if err != nil {
		return nil, nil, err
	}

	stats, err := proc.ProcessDirectory(ctx, args.Root)
	if err != nil {
		return nil, nil, errors.Errorf("trimming %s: %w", args.Root, err)
	}

	out := TrimDirectoryResult{Document: report.NewDocument(stats, cfg.DryRun)}
	if len(diffs) > 0 {
		out.Diffs = diffs
	}
	return jsonResult(out)
}

// ListBackups handles the list_backups tool
func (s *Server) ListBackups(ctx context.Context, req *mcp.CallToolRequest, args BackupParams) (*mcp.CallToolResult, any, error) {
	if args.Root == "" {
		return nil, nil, errors.New("root is required")
	}

	paths, err := s.backups.ListBackups(ctx, args.Root, recursive(args.Recursive))
	if err != nil {
		return nil, nil, err
	}
	if paths == nil {
		paths = []string{}
	}
	return jsonResult(map[string]any{"backups": paths, "count": len(paths)})
}

// RestoreBackups handles the restore_backups tool
func (s *Server) RestoreBackups(ctx context.Context, req *mcp.CallToolRequest, args BackupParams) (*mcp.CallToolResult, any, error) {
	if args.Root == "" {
		return nil, nil, errors.New("root is required")
	}

	results, err := s.backups.RestoreDirectory(ctx, args.Root, recursive(args.Recursive))
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(results)
}

func recursive(v *bool) bool {
	return v == nil || *v
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, errors.Errorf("encoding result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
