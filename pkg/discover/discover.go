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
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/monochromegane/go-gitignore"
	"github.com/rs/zerolog"
	"github.com/walteh/codetrim/pkg/trimerr"
	"gitlab.com/tozd/go/errors"
)

// 🔍 Options controls which files Discover returns
type Options struct {
	Include          string // comma separated globs matched against base names, "" or "*" for all
	Exclude          string // comma separated globs, "" for none
	IncludeHidden    bool
	FollowSymlinks   bool
	RespectGitignore bool // skip paths matched by <root>/.gitignore
}

// 🚶 Discover walks root and returns the sorted, de-duplicated absolute paths
// of every regular file selected by opts
func Discover(ctx context.Context, root string, opts Options) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Errorf("resolving root: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, trimerr.New(trimerr.FileNotFound, "directory does not exist: "+abs, "Check the path and try again")
		}
		return nil, trimerr.Wrap(trimerr.DirectoryAccess, err, "Check directory permissions")
	}
	if !info.IsDir() {
		return nil, trimerr.New(trimerr.DirectoryAccess, "path is not a directory: "+abs, "Pass a directory to process")
	}

	w := &walker{
		opts:    opts,
		include: ExpandPatterns(opts.Include),
		exclude: ExpandPatterns(opts.Exclude),
		seen:    map[string]bool{},
		files:   map[string]struct{}{},
	}

	if opts.RespectGitignore {
		ignorePath := filepath.Join(abs, ".gitignore")
		if _, err := os.Stat(ignorePath); err == nil {
			matcher, err := gitignore.NewGitIgnore(ignorePath, abs)
			if err != nil {
				return nil, errors.Errorf("loading .gitignore: %w", err)
			}
			w.ignore = matcher
		}
	}

	if err := w.walk(ctx, abs); err != nil {
		if ctx.Err() != nil {
			return nil, trimerr.Wrap(trimerr.Cancelled, err, "")
		}
		return nil, trimerr.Wrap(trimerr.DirectoryAccess, err, "Check directory permissions")
	}

	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	sort.Strings(out)

	logger.Debug().Str("root", abs).Int("files", len(out)).Msg("discovered files")
	return out, nil
}

type walker struct {
	opts    Options
	include []string
	exclude []string
	ignore  gitignore.IgnoreMatcher
	seen    map[string]bool // resolved directories already walked
	files   map[string]struct{}
}

func (w *walker) walk(ctx context.Context, dir string) error {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		real = dir
	}
	if w.seen[real] {
		return nil
	}
	w.seen[real] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Errorf("reading directory %s: %w", dir, err)
	}

	for _, d := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if !w.opts.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(dir, name)
		isDir := d.IsDir()
		if d.Type()&fs.ModeSymlink != 0 {
			if !w.opts.FollowSymlinks {
				continue
			}
			target, err := os.Stat(path)
			if err != nil {
				zerolog.Ctx(ctx).Debug().Err(err).Str("path", path).Msg("skipping broken symlink")
				continue
			}
			isDir = target.IsDir()
			if !isDir && !target.Mode().IsRegular() {
				continue
			}
		} else if !isDir && !d.Type().IsRegular() {
			continue
		}

		if w.ignored(path, isDir) {
			continue
		}

		if isDir {
			if err := w.walk(ctx, path); err != nil {
				if ctx.Err() != nil {
					return err
				}
				zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("skipping unreadable directory")
			}
			continue
		}

		if w.selected(name) {
			w.files[path] = struct{}{}
		}
	}
	return nil
}

func (w *walker) ignored(path string, isDir bool) bool {
	return w.ignore != nil && w.ignore.Match(path, isDir)
}

func (w *walker) selected(name string) bool {
	if len(w.include) > 0 && !MatchAny(name, w.include) {
		return false
	}
	return !MatchAny(name, w.exclude)
}

// 🎯 MatchAny reports whether name matches any of the glob patterns.
// "*" always matches.
func MatchAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if p == "*" {
			return true
		}
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// 🧩 ExpandPatterns splits a comma separated pattern list and expands one
// level of braces, so "*.{go,py},Makefile" yields "*.go", "*.py", "Makefile"
func ExpandPatterns(spec string) []string {
	var out []string
	for _, part := range splitTopLevel(spec) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, expandBraces(part)...)
	}
	return out
}

// splitTopLevel splits on commas that are not inside braces
func splitTopLevel(spec string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range spec {
		switch r {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, spec[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, spec[start:])
}

func expandBraces(pattern string) []string {
	open := strings.Index(pattern, "{")
	if open < 0 {
		return []string{pattern}
	}
	end := strings.Index(pattern[open:], "}")
	if end < 0 {
		return []string{pattern}
	}
	end += open

	prefix, body, suffix := pattern[:open], pattern[open+1:end], pattern[end+1:]
	var out []string
	for _, alt := range strings.Split(body, ",") {
		out = append(out, prefix+strings.TrimSpace(alt)+suffix)
	}
	return out
}
