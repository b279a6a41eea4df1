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

package backup

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

// 🏗️ createTestEnv creates a temp dir with the given files and a logging context
func createTestEnv(t *testing.T, files map[string]string) (context.Context, string) {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755), "creating parent dirs should succeed")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644), "writing test file should succeed")
	}
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	return ctx, dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "reading %s should succeed", path)
	return string(data)
}

func TestBackupFile(t *testing.T) {
	ctx, dir := createTestEnv(t, map[string]string{"a.txt": "trimmed\n"})
	mgr := New()
	path := filepath.Join(dir, "a.txt")

	backupPath, err := mgr.BackupFile(ctx, path, []byte("original   \n"))
	require.NoError(t, err, "backup should succeed")
	assert.Equal(t, path+".bak", backupPath)
	assert.Equal(t, "original   \n", readFile(t, backupPath), "backup holds the original bytes")

	_, err = mgr.BackupFile(ctx, path, []byte("second\n"))
	require.NoError(t, err, "existing backup should be replaced")
	assert.Equal(t, "second\n", readFile(t, backupPath))
	assertNoTempFiles(t, dir)
}

func TestBackupFileFailure(t *testing.T) {
	ctx, dir := createTestEnv(t, nil)
	mgr := New()

	_, err := mgr.BackupFile(ctx, filepath.Join(dir, "missing-dir", "a.txt"), []byte("x"))
	require.Error(t, err)
	assert.True(t, trimerr.Is(err, trimerr.BackupFailed), "error should carry CT-0040")
}

func TestWriteFileAtomic(t *testing.T) {
	ctx, dir := createTestEnv(t, map[string]string{"run.sh": "old"})
	mgr := New()
	path := filepath.Join(dir, "run.sh")

	require.NoError(t, mgr.WriteFileAtomic(ctx, path, []byte("new"), 0755))
	assert.Equal(t, "new", readFile(t, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm(), "mode should be applied")
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	leftovers, err := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temp files should not linger")
}

func TestWriteFileAtomicKeepsSiblings(t *testing.T) {
	ctx, dir := createTestEnv(t, map[string]string{
		"a.txt":     "x   \n",
		"a.txt.tmp": "keep me\n",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "b.txt.tmp"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "c.txt", "inner"), 0755))
	mgr := New()

	require.NoError(t, mgr.WriteFileAtomic(ctx, filepath.Join(dir, "a.txt"), []byte("x\n"), 0644))
	require.NoError(t, mgr.WriteFileAtomic(ctx, filepath.Join(dir, "b.txt"), []byte("b\n"), 0644))

	// renaming onto a non-empty directory fails
	err := mgr.WriteFileAtomic(ctx, filepath.Join(dir, "c.txt"), []byte("c\n"), 0644)
	require.Error(t, err)

	assert.Equal(t, "x\n", readFile(t, filepath.Join(dir, "a.txt")))
	assert.Equal(t, "keep me\n", readFile(t, filepath.Join(dir, "a.txt.tmp")), "a sibling named like a temp file is untouched")
	assert.DirExists(t, filepath.Join(dir, "b.txt.tmp"), "an empty sibling directory is untouched")
	assert.DirExists(t, filepath.Join(dir, "c.txt", "inner"))
	assertNoTempFiles(t, dir)
}

func TestRestoreFileFailureLeavesOriginal(t *testing.T) {
	ctx, dir := createTestEnv(t, map[string]string{
		"a.txt/keep": "mine\n",
		"a.txt.bak":  "original\n",
	})
	mgr := New()
	backupPath := filepath.Join(dir, "a.txt.bak")

	err := mgr.RestoreFile(ctx, backupPath)
	require.Error(t, err)
	assert.True(t, trimerr.Is(err, trimerr.RestoreFailed), "got %v", err)
	assert.Equal(t, "mine\n", readFile(t, filepath.Join(dir, "a.txt", "keep")), "the original is untouched")
	assert.Equal(t, "original\n", readFile(t, backupPath), "the backup is kept")
	assertNoTempFiles(t, dir)
}

func TestRestoreFile(t *testing.T) {
	tests := []struct {
		name      string
		files     map[string]string
		backup    string
		wantCode  trimerr.Code
		wantError bool
		wantFile  string
	}{
		{
			name:     "restores_and_removes_backup",
			files:    map[string]string{"a.txt": "trimmed\n", "a.txt.bak": "original  \n"},
			backup:   "a.txt.bak",
			wantFile: "original  \n",
		},
		{
			name:     "restores_missing_original",
			files:    map[string]string{"gone.txt.bak": "content\n"},
			backup:   "gone.txt.bak",
			wantFile: "content\n",
		},
		{
			name:      "missing_backup",
			files:     map[string]string{"a.txt": "x"},
			backup:    "a.txt.bak",
			wantError: true,
			wantCode:  trimerr.BackupNotFound,
		},
		{
			name:      "empty_backup_is_corrupted",
			files:     map[string]string{"a.txt": "x", "a.txt.bak": ""},
			backup:    "a.txt.bak",
			wantError: true,
			wantCode:  trimerr.BackupCorrupted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, dir := createTestEnv(t, tt.files)
			mgr := New()
			backupPath := filepath.Join(dir, tt.backup)

			err := mgr.RestoreFile(ctx, backupPath)
			if tt.wantError {
				require.Error(t, err)
				assert.True(t, trimerr.Is(err, tt.wantCode), "error should carry %s, got %v", tt.wantCode, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantFile, readFile(t, OriginalFor(backupPath)))
			assert.NoFileExists(t, backupPath, "backup should be removed after restore")
		})
	}
}

func TestListBackups(t *testing.T) {
	ctx, dir := createTestEnv(t, map[string]string{
		"a.txt.bak":          "a",
		"b.txt":              "b",
		"sub/c.txt.bak":      "c",
		"sub/deep/d.txt.bak": "d",
	})
	mgr := New()

	flat, err := mgr.ListBackups(ctx, dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt.bak")}, flat)

	all, err := mgr.ListBackups(ctx, dir, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt.bak"),
		filepath.Join(dir, "sub", "c.txt.bak"),
		filepath.Join(dir, "sub", "deep", "d.txt.bak"),
	}, all)

	missing, err := mgr.ListBackups(ctx, filepath.Join(dir, "nope"), true)
	require.NoError(t, err, "missing root lists nothing")
	assert.Empty(t, missing)
}

func TestRestoreDirectory(t *testing.T) {
	ctx, dir := createTestEnv(t, map[string]string{
		"a.txt":         "trimmed",
		"a.txt.bak":     "original a",
		"sub/b.txt":     "trimmed",
		"sub/b.txt.bak": "original b",
		"sub/c.txt.bak": "",
	})
	mgr := New()

	results, err := mgr.RestoreDirectory(ctx, dir, true)
	require.NoError(t, err, "per-file failures should not fail the directory")
	assert.Equal(t, map[string]bool{
		filepath.Join(dir, "a.txt"):        true,
		filepath.Join(dir, "sub", "b.txt"): true,
		filepath.Join(dir, "sub", "c.txt"): false,
	}, results)

	assert.Equal(t, "original a", readFile(t, filepath.Join(dir, "a.txt")))
	assert.Equal(t, "original b", readFile(t, filepath.Join(dir, "sub", "b.txt")))
	assert.FileExists(t, filepath.Join(dir, "sub", "c.txt.bak"), "corrupted backup is left in place")
}

func TestRestoreDirectoryErrors(t *testing.T) {
	ctx, dir := createTestEnv(t, map[string]string{"file.txt": "x"})
	mgr := New()

	_, err := mgr.RestoreDirectory(ctx, filepath.Join(dir, "missing"), true)
	require.Error(t, err)
	assert.True(t, trimerr.Is(err, trimerr.FileNotFound))

	_, err = mgr.RestoreDirectory(ctx, filepath.Join(dir, "file.txt"), true)
	require.Error(t, err)
	assert.True(t, trimerr.Is(err, trimerr.DirectoryAccess))
}

func TestCleanupBackups(t *testing.T) {
	ctx, dir := createTestEnv(t, map[string]string{
		"a.txt":         "keep",
		"a.txt.bak":     "x",
		"sub/b.txt.bak": "y",
	})
	mgr := New()

	removed, err := mgr.CleanupBackups(ctx, dir, false)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = mgr.CleanupBackups(ctx, dir, true)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.FileExists(t, filepath.Join(dir, "a.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "sub", "b.txt.bak"))
}
