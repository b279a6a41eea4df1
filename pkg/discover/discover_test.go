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

package discover

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/codetrim/pkg/trimerr"
)

// 🏗️ createTestTree writes files (relative path -> content) under a temp dir
func createTestTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755), "creating parent dirs should succeed")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644), "writing file should succeed")
	}
	return root
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		assert.True(t, filepath.IsAbs(p), "path %s should be absolute", p)
		r, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestDiscover(t *testing.T) {
	tree := map[string]string{
		"main.go":            "package main",
		"util.py":            "x = 1",
		"README.md":          "# readme",
		"lib/helper.go":      "package lib",
		"lib/helper_test.go": "package lib",
		"web/app.js":         "let x",
		".hidden.go":         "package hidden",
		".git/config":        "[core]",
		"build/out.go":       "package out",
	}

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "everything_by_default",
			opts: Options{},
			want: []string{"README.md", "build/out.go", "lib/helper.go", "lib/helper_test.go", "main.go", "util.py", "web/app.js"},
		},
		{
			name: "star_matches_all",
			opts: Options{Include: "*"},
			want: []string{"README.md", "build/out.go", "lib/helper.go", "lib/helper_test.go", "main.go", "util.py", "web/app.js"},
		},
		{
			name: "brace_expansion",
			opts: Options{Include: "*.{py,js}"},
			want: []string{"util.py", "web/app.js"},
		},
		{
			name: "comma_alternatives_with_braces",
			opts: Options{Include: "*.{py,js}, README.md"},
			want: []string{"README.md", "util.py", "web/app.js"},
		},
		{
			name: "exclude_wins",
			opts: Options{Include: "*.go", Exclude: "*_test.go"},
			want: []string{"build/out.go", "lib/helper.go", "main.go"},
		},
		{
			name: "hidden_included",
			opts: Options{Include: "*.go,config", IncludeHidden: true},
			want: []string{".git/config", ".hidden.go", "build/out.go", "lib/helper.go", "lib/helper_test.go", "main.go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := createTestTree(t, tree)
			ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

			got, err := Discover(ctx, root, tt.opts)
			require.NoError(t, err, "discover should succeed")
			assert.Equal(t, tt.want, rel(t, root, got), "discovered files should match")
		})
	}
}

func TestDiscoverGitignore(t *testing.T) {
	root := createTestTree(t, map[string]string{
		".gitignore":     "build/\n*.log\n",
		"main.go":        "package main",
		"debug.log":      "log",
		"build/out.go":   "package out",
		"nested/app.log": "log",
	})
	ctx := context.Background()

	got, err := Discover(ctx, root, Options{RespectGitignore: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, rel(t, root, got))

	got, err = Discover(ctx, root, Options{})
	require.NoError(t, err)
	assert.Len(t, got, 4, "gitignore is opt-in")
}

func TestDiscoverSymlinks(t *testing.T) {
	root := createTestTree(t, map[string]string{
		"src/a.go": "package src",
	})
	outside := createTestTree(t, map[string]string{
		"ext.go": "package ext",
	})
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "linked")))
	require.NoError(t, os.Symlink(root, filepath.Join(root, "src", "loop")))
	ctx := context.Background()

	got, err := Discover(ctx, root, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.go"}, rel(t, root, got), "symlinks are not followed by default")

	got, err = Discover(ctx, root, Options{FollowSymlinks: true})
	require.NoError(t, err, "symlink loops should terminate")
	assert.Equal(t, []string{"linked/ext.go", "src/a.go"}, rel(t, root, got))
}

func TestDiscoverErrors(t *testing.T) {
	ctx := context.Background()
	root := createTestTree(t, map[string]string{"file.txt": "x"})

	_, err := Discover(ctx, filepath.Join(root, "missing"), Options{})
	require.Error(t, err)
	assert.True(t, trimerr.Is(err, trimerr.FileNotFound), "missing root should be CT-0010")

	_, err = Discover(ctx, filepath.Join(root, "file.txt"), Options{})
	require.Error(t, err)
	assert.True(t, trimerr.Is(err, trimerr.DirectoryAccess), "file root should be CT-0014")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Discover(cancelled, root, Options{})
	require.Error(t, err)
	assert.True(t, trimerr.Is(err, trimerr.Cancelled), "cancelled walk should be CT-0091")
}

func TestExpandPatterns(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want []string
	}{
		{name: "empty", spec: "", want: nil},
		{name: "single", spec: "*.go", want: []string{"*.go"}},
		{name: "commas", spec: "*.go, *.py ,", want: []string{"*.go", "*.py"}},
		{name: "braces", spec: "src_*.{go,py}", want: []string{"src_*.go", "src_*.py"}},
		{name: "braces_and_commas", spec: "*.{java,py},Makefile", want: []string{"*.java", "*.py", "Makefile"}},
		{name: "unclosed_brace", spec: "*.{go", want: []string{"*.{go"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPatterns(tt.spec))
		})
	}
}

func TestMatchAny(t *testing.T) {
	assert.True(t, MatchAny("anything", []string{"*"}))
	assert.True(t, MatchAny("main.go", []string{"*.py", "*.go"}))
	assert.False(t, MatchAny("main.go", []string{"*.py"}))
	assert.False(t, MatchAny("main.go", nil))
	assert.False(t, MatchAny("main.go", []string{"[invalid"}), "bad patterns never match")
}
