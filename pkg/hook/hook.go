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

// Package hook installs git pre-commit hooks that trim staged files.
package hook

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/rs/zerolog"
	"github.com/walteh/codetrim/pkg/trimerr"
	"gitlab.com/tozd/go/errors"
)

// HookName is the git hook that runs before a commit is recorded
const HookName = "pre-commit"

// trimArgs are passed to the trim command by every hook flavour
const trimArgs = "trim --create-backups=false --no-limits --quiet"

// 📜 Script is one generated hook file
type Script struct {
	Name    string
	Content string
	Mode    os.FileMode
}

// Scripts returns the bash hook followed by its Windows counterparts
func Scripts() []Script {
	return []Script{
		{Name: HookName, Content: bashHook, Mode: 0755},
		{Name: HookName + ".bat", Content: batchHook, Mode: 0644},
		{Name: HookName + ".ps1", Content: powershellHook, Mode: 0644},
	}
}

// 🔍 FindRepository returns the worktree root of the git repository that
// contains dir
func FindRepository(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", trimerr.New(trimerr.GitNotFound, "not a git repository: "+dir, "Run git init first, or pass a directory inside a repository")
		}
		return "", trimerr.Wrap(trimerr.GitNotFound, errors.Errorf("opening repository: %w", err), "")
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", trimerr.Wrap(trimerr.GitNotFound, errors.Errorf("resolving worktree: %w", err), "Hooks cannot be installed in a bare repository")
	}

	return wt.Filesystem.Root(), nil
}

// 🪝 Generate writes the pre-commit hooks into the repository containing dir
// and returns the path of the bash hook
func Generate(ctx context.Context, dir string, force bool) (string, error) {
	logger := zerolog.Ctx(ctx)

	root, err := FindRepository(dir)
	if err != nil {
		return "", err
	}

	gitDir := filepath.Join(root, ".git")
	if info, err := os.Stat(gitDir); err != nil || !info.IsDir() {
		return "", trimerr.New(trimerr.GitNotFound, "no .git directory in "+root, "Linked worktrees and submodules are not supported")
	}

	hooksDir := filepath.Join(gitDir, "hooks")
	hookPath := filepath.Join(hooksDir, HookName)

	if _, err := os.Stat(hookPath); err == nil && !force {
		return "", trimerr.New(trimerr.HookExists, "hook already exists: "+hookPath, "Use --force to overwrite")
	}

	if err := os.MkdirAll(hooksDir, 0755); err != nil {
		return "", trimerr.Wrap(trimerr.HookFailed, errors.Errorf("creating hooks directory: %w", err), "")
	}

	for _, s := range Scripts() {
		path := filepath.Join(hooksDir, s.Name)
		if err := os.WriteFile(path, []byte(s.Content), s.Mode); err != nil {
			return "", trimerr.Wrap(trimerr.HookFailed, errors.Errorf("writing %s: %w", s.Name, err), "Check permissions on "+hooksDir)
		}
		// WriteFile keeps the mode of an existing file
		if err := os.Chmod(path, s.Mode); err != nil {
			return "", trimerr.Wrap(trimerr.HookFailed, errors.Errorf("setting mode of %s: %w", s.Name, err), "")
		}
		logger.Debug().Str("path", path).Msg("wrote hook")
	}

	return hookPath, nil
}

const bashHook = `#!/bin/bash
# codetrim pre-commit hook
# Trims whitespace in staged files and stages the result.

set -e

if ! command -v codetrim >/dev/null 2>&1; then
    echo "codetrim not found in PATH, skipping whitespace trimming" >&2
    exit 0
fi

if [ -z "$(git diff --cached --name-only --diff-filter=ACM)" ]; then
    exit 0
fi

git diff --cached --name-only -z --diff-filter=ACM | xargs -0 codetrim ` + trimArgs + `
git diff --cached --name-only -z --diff-filter=ACM | xargs -0 git add --
`

const batchHook = `@echo off
REM codetrim pre-commit hook
REM Trims whitespace in staged files and stages the result.

where codetrim >nul 2>nul
if errorlevel 1 (
    echo codetrim not found in PATH, skipping whitespace trimming
    exit /b 0
)

for /f "delims=" %%f in ('git diff --cached --name-only --diff-filter^=ACM') do (
    codetrim ` + trimArgs + ` "%%f"
    if errorlevel 1 exit /b 1
    git add -- "%%f"
)

exit /b 0
`

const powershellHook = `# codetrim pre-commit hook
# Trims whitespace in staged files and stages the result.

if (-not (Get-Command codetrim -ErrorAction SilentlyContinue)) {
    Write-Host "codetrim not found in PATH, skipping whitespace trimming"
    exit 0
}

$files = @(git diff --cached --name-only --diff-filter=ACM)
if ($files.Count -eq 0) {
    exit 0
}

& codetrim ` + trimArgs + ` @files
if ($LASTEXITCODE -ne 0) {
    Write-Host "codetrim failed, commit aborted"
    exit $LASTEXITCODE
}

git add -- @files
exit 0
`
