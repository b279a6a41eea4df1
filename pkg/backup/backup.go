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
	"sort"
	"strings"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/codetrim/pkg/trimerr"
	"gitlab.com/tozd/go/errors"
)

// Suffix is appended to a file path to name its backup
const Suffix = ".bak"

// 💾 Manager creates backups before edits and restores them on undo
type Manager struct{}

// 🏭 New creates a new backup manager
func New() *Manager {
	return &Manager{}
}

// PathFor returns the backup path for a file
func PathFor(path string) string {
	return path + Suffix
}

// OriginalFor returns the original path for a backup path
func OriginalFor(backupPath string) string {
	return strings.TrimSuffix(backupPath, Suffix)
}

// 📦 BackupFile writes original to path+".bak", replacing any previous
// backup, and returns the backup path
func (m *Manager) BackupFile(ctx context.Context, path string, original []byte) (string, error) {
	backupPath := PathFor(path)

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	if err := m.WriteFileAtomic(ctx, backupPath, original, mode); err != nil {
		return "", trimerr.Wrap(trimerr.BackupFailed, err, "Check write permissions next to "+filepath.Base(path))
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Str("backup", backupPath).Msg("created backup")
	return backupPath, nil
}

// ✍️ WriteFileAtomic writes content to a uniquely named hidden temp file
// beside path and renames it into place. Only that temp file is ever removed.
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error {
	temp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return classifyWriteError(errors.Errorf("creating temp file: %w", err), err)
	}
	tempPath := temp.Name()

	fail := func(wrapped, cause error) error {
		temp.Close()
		os.Remove(tempPath)
		return classifyWriteError(wrapped, cause)
	}

	if _, err := temp.Write(content); err != nil {
		return fail(errors.Errorf("writing temp file: %w", err), err)
	}
	if err := temp.Chmod(mode); err != nil {
		return fail(errors.Errorf("setting file mode: %w", err), err)
	}
	if err := temp.Close(); err != nil {
		return fail(errors.Errorf("closing temp file: %w", err), err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return classifyWriteError(errors.Errorf("renaming temp file: %w", err), err)
	}

	zerolog.Ctx(ctx).Trace().Str("path", path).Msg("wrote file atomically")
	return nil
}

// ♻️ RestoreFile copies backupPath over its original and removes the backup
func (m *Manager) RestoreFile(ctx context.Context, backupPath string) error {
	original := OriginalFor(backupPath)

	info, err := os.Stat(backupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return trimerr.New(trimerr.BackupNotFound, "backup file does not exist: "+backupPath, "")
		}
		return trimerr.Wrap(trimerr.RestoreFailed, err, "")
	}
	if info.Size() == 0 {
		return trimerr.New(trimerr.BackupCorrupted, "backup file is empty: "+backupPath, "Inspect the backup manually before deleting it")
	}

	content, err := os.ReadFile(backupPath)
	if err != nil {
		return trimerr.Wrap(trimerr.RestoreFailed, errors.Errorf("reading backup: %w", err), "")
	}

	// the original keeps its bytes until the rename succeeds
	if err := m.WriteFileAtomic(ctx, original, content, info.Mode().Perm()); err != nil {
		return trimerr.Wrap(trimerr.RestoreFailed, err, "")
	}

	if err := os.Remove(backupPath); err != nil {
		return trimerr.Wrap(trimerr.RestoreFailed, errors.Errorf("removing backup: %w", err), "")
	}

	zerolog.Ctx(ctx).Debug().Str("path", original).Msg("restored from backup")
	return nil
}

// 📋 ListBackups returns the sorted backup files under root. A missing root
// yields an empty list.
func (m *Manager) ListBackups(ctx context.Context, root string, recursive bool) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return []string{}, nil
	}

	pattern := "*" + Suffix
	if recursive {
		pattern = "**/*" + Suffix
	}

	matches, err := doublestar.Glob(os.DirFS(abs), pattern)
	if err != nil {
		return nil, errors.Errorf("globbing backups: %w", err)
	}

	out := make([]string, 0, len(matches))
	for _, match := range matches {
		path := filepath.Join(abs, filepath.FromSlash(match))
		if fi, err := os.Lstat(path); err != nil || !fi.Mode().IsRegular() {
			continue
		}
		out = append(out, path)
	}
	sort.Strings(out)
	return out, nil
}

// ⏪ RestoreDirectory restores every backup under root. The result maps each
// original path to whether its restore succeeded; only an unusable root is an
// error.
func (m *Manager) RestoreDirectory(ctx context.Context, root string, recursive bool) (map[string]bool, error) {
	logger := zerolog.Ctx(ctx)

	if err := checkRoot(root); err != nil {
		return nil, err
	}

	backups, err := m.ListBackups(ctx, root, recursive)
	if err != nil {
		return nil, err
	}

	results := make(map[string]bool, len(backups))
	for _, b := range backups {
		if err := ctx.Err(); err != nil {
			return results, trimerr.Wrap(trimerr.Cancelled, err, "")
		}
		if err := m.RestoreFile(ctx, b); err != nil {
			logger.Warn().Err(err).Str("backup", b).Msg("restore failed")
			results[OriginalFor(b)] = false
			continue
		}
		results[OriginalFor(b)] = true
	}
	return results, nil
}

// 🧹 CleanupBackups deletes every backup under root and returns how many were removed
func (m *Manager) CleanupBackups(ctx context.Context, root string, recursive bool) (int, error) {
	if err := checkRoot(root); err != nil {
		return 0, err
	}

	backups, err := m.ListBackups(ctx, root, recursive)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, b := range backups {
		if err := os.Remove(b); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("backup", b).Msg("removing backup failed")
			continue
		}
		removed++
	}
	return removed, nil
}

func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return trimerr.New(trimerr.FileNotFound, "directory does not exist: "+root, "Check the path and try again")
		}
		return trimerr.Wrap(trimerr.DirectoryAccess, err, "")
	}
	if !info.IsDir() {
		return trimerr.New(trimerr.DirectoryAccess, "path is not a directory: "+root, "")
	}
	return nil
}

// classifyWriteError tags permission and disk-full failures with their codes
func classifyWriteError(wrapped error, cause error) error {
	switch {
	case errors.Is(cause, os.ErrPermission):
		return trimerr.Wrap(trimerr.PermissionDenied, wrapped, "Check file permissions")
	case errors.Is(cause, syscall.ENOSPC):
		return trimerr.Wrap(trimerr.DiskFull, wrapped, "Free up disk space and retry")
	default:
		return wrapped
	}
}
