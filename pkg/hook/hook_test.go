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

package hook

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/codetrim/pkg/trimerr"
)

// 🔧 setupRepo creates an empty git repository in a temp dir
func setupRepo(t *testing.T) (context.Context, string) {
	t.Helper()
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err, "initializing repository should succeed")
	return ctx, dir
}

func TestGenerate(t *testing.T) {
	ctx, dir := setupRepo(t)

	path, err := Generate(ctx, dir, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".git", "hooks", "pre-commit"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm(), "bash hook should be executable")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "#!/bin/bash")
	assert.Contains(t, string(content), "codetrim trim --create-backups=false --no-limits --quiet")
	assert.Contains(t, string(content), "git add")

	bat, err := os.ReadFile(filepath.Join(dir, ".git", "hooks", "pre-commit.bat"))
	require.NoError(t, err)
	assert.Contains(t, string(bat), "@echo off")
	assert.Contains(t, string(bat), "codetrim trim")

	ps1, err := os.ReadFile(filepath.Join(dir, ".git", "hooks", "pre-commit.ps1"))
	require.NoError(t, err)
	assert.Contains(t, string(ps1), "Write-Host")
	assert.Contains(t, string(ps1), "codetrim trim")
}

func TestGenerateFromSubdirectory(t *testing.T) {
	ctx, dir := setupRepo(t)
	sub := filepath.Join(dir, "pkg", "deep")
	require.NoError(t, os.MkdirAll(sub, 0755))

	path, err := Generate(ctx, sub, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".git", "hooks", "pre-commit"), path)
}

func TestGenerateExisting(t *testing.T) {
	ctx, dir := setupRepo(t)
	hooks := filepath.Join(dir, ".git", "hooks")
	require.NoError(t, os.MkdirAll(hooks, 0755))
	existing := filepath.Join(hooks, "pre-commit")
	require.NoError(t, os.WriteFile(existing, []byte("#!/bin/sh\necho mine\n"), 0644))

	_, err := Generate(ctx, dir, false)
	require.Error(t, err)
	assert.True(t, trimerr.Is(err, trimerr.HookExists), "got %v", err)

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho mine\n", string(content), "existing hook is untouched")

	path, err := Generate(ctx, dir, true)
	require.NoError(t, err)
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "codetrim")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm(), "overwritten hook becomes executable")
}

func TestGenerateNoRepository(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	_, err := Generate(ctx, t.TempDir(), false)
	require.Error(t, err)
	assert.True(t, trimerr.Is(err, trimerr.GitNotFound), "got %v", err)
}

func TestScripts(t *testing.T) {
	scripts := Scripts()
	require.Len(t, scripts, 3)
	assert.Equal(t, "pre-commit", scripts[0].Name)
	for _, s := range scripts {
		assert.Contains(t, s.Content, trimArgs, s.Name)
	}
}
