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

package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/codetrim/pkg/config"
)

func connect(t *testing.T, base *config.Config) (context.Context, *mcp.ClientSession) {
	t.Helper()

	ctx, cancel := context.WithCancel(zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background()))
	t.Cleanup(cancel)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	srv := New(base, "test")
	go func() {
		_ = srv.Run(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	return ctx, session
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.False(t, res.IsError, "tool returned an error: %+v", res.Content)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func TestListTools(t *testing.T) {
	ctx, session := connect(t, config.Default())

	res, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"list_backups", "restore_backups", "trim_directory"}, names)
}

func TestTrimDirectory(t *testing.T) {
	ctx, session := connect(t, config.Default())

	dir := writeTree(t, map[string]string{
		"a.txt":     "hello   \nworld",
		"b.txt":     "clean\n",
		"sub/c.txt": "x\t\n",
	})

	t.Run("dry_run_with_diff", func(t *testing.T) {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "trim_directory",
			Arguments: map[string]any{"root": dir, "dry_run": true, "diff": true},
		})
		require.NoError(t, err)

		var got TrimDirectoryResult
		require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &got))
		assert.True(t, got.DryRun)
		assert.Equal(t, 3, got.FilesProcessed)
		assert.Equal(t, 2, got.FilesModified)
		assert.Len(t, got.Diffs, 2)

		data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "hello   \nworld", string(data), "dry runs do not write")
	})

	t.Run("include_filter", func(t *testing.T) {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "trim_directory",
			Arguments: map[string]any{"root": dir, "dry_run": true, "include": "a.txt"},
		})
		require.NoError(t, err)

		var got TrimDirectoryResult
		require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &got))
		assert.Equal(t, 1, got.FilesProcessed)
		assert.Empty(t, got.Diffs)
	})

	t.Run("write_then_restore", func(t *testing.T) {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "trim_directory",
			Arguments: map[string]any{"root": dir},
		})
		require.NoError(t, err)

		var got TrimDirectoryResult
		require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &got))
		assert.False(t, got.DryRun)
		assert.Equal(t, 2, got.FilesModified)

		data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "hello\nworld\n", string(data))

		res, err = session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "list_backups",
			Arguments: map[string]any{"root": dir},
		})
		require.NoError(t, err)
		var listed struct {
			Backups []string `json:"backups"`
			Count   int      `json:"count"`
		}
		require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &listed))
		assert.Equal(t, 2, listed.Count)

		res, err = session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "list_backups",
			Arguments: map[string]any{"root": dir, "recursive": false},
		})
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &listed))
		assert.Equal(t, 1, listed.Count, "sub/c.txt.bak is not listed without recursion")

		res, err = session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "restore_backups",
			Arguments: map[string]any{"root": dir},
		})
		require.NoError(t, err)
		var restored map[string]bool
		require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &restored))
		assert.Len(t, restored, 2)
		for path, ok := range restored {
			assert.True(t, ok, path)
		}

		data, err = os.ReadFile(filepath.Join(dir, "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "hello   \nworld", string(data))
		assert.NoFileExists(t, filepath.Join(dir, "a.txt.bak"))
	})
}

func TestTrimDirectoryUsesBaseConfig(t *testing.T) {
	base := config.Default()
	base.DryRun = true
	ctx, session := connect(t, base)

	dir := writeTree(t, map[string]string{"a.txt": "x  \n"})

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "trim_directory",
		Arguments: map[string]any{"root": dir},
	})
	require.NoError(t, err)

	var got TrimDirectoryResult
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &got))
	assert.True(t, got.DryRun)
	assert.Equal(t, 1, got.FilesModified)
	assert.True(t, base.DryRun, "the base config is not modified by calls")

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "x  \n", string(data))
}

func TestToolErrors(t *testing.T) {
	ctx, session := connect(t, config.Default())

	for _, args := range []map[string]any{
		{},
		{"root": filepath.Join(t.TempDir(), "missing")},
		{"root": t.TempDir(), "max_files": -1},
	} {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "trim_directory", Arguments: args})
		if err == nil {
			assert.True(t, res.IsError, "args %v should fail", args)
		}
	}
}
