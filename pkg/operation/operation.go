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

package operation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/walteh/codetrim/pkg/backup"
	"github.com/walteh/codetrim/pkg/binary"
	"github.com/walteh/codetrim/pkg/config"
	"github.com/walteh/codetrim/pkg/diff"
	"github.com/walteh/codetrim/pkg/discover"
	"github.com/walteh/codetrim/pkg/text"
	"github.com/walteh/codetrim/pkg/trimerr"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// DiffSink receives the rendered diff of a file during a dry run
type DiffSink func(ctx context.Context, path string, diff string)

// ResultHook is called after every file with its result
type ResultHook func(ctx context.Context, r Result)

// 💾 FileStore writes backups and trimmed content to disk
type FileStore interface {
	BackupFile(ctx context.Context, path string, original []byte) (string, error)
	WriteFileAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error
}

// 🔧 Options contains optional collaborators for the processor
type Options struct {
	// Backups writes backups and results; defaults to backup.New()
	Backups FileStore
	// DiffSink receives diffs when both dry_run and diff are set
	DiffSink DiffSink
	// OnResult observes each result as it is recorded
	OnResult ResultHook
}

// ⚙️ Processor runs the trimming pipeline over files
type Processor struct {
	cfg      *config.Config
	trimmer  *text.Trimmer
	backups  FileStore
	diffSink DiffSink
	onResult ResultHook
}

// 🏭 NewProcessor compiles the configured rules and creates a processor
func NewProcessor(cfg *config.Config, opts Options) (*Processor, error) {
	if cfg == nil {
		return nil, errors.Errorf("config is required")
	}

	rules, err := cfg.CompileRules()
	if err != nil {
		return nil, errors.Errorf("compiling rules: %w", err)
	}

	var backups FileStore = backup.New()
	if opts.Backups != nil {
		backups = opts.Backups
	}

	return &Processor{
		cfg: cfg,
		trimmer: text.New(text.Options{
			TrimTrailingWhitespace:   cfg.TrimTrailingWhitespace,
			MaxConsecutiveBlankLines: cfg.MaxConsecutiveBlankLines,
			EnsureFinalNewline:       cfg.EnsureFinalNewline,
			Rules:                    rules,
		}),
		backups:  backups,
		diffSink: opts.DiffSink,
		onResult: opts.OnResult,
	}, nil
}

// Config returns the configuration the processor was built with
func (p *Processor) Config() *config.Config {
	return p.cfg
}

// 📂 ProcessDirectory discovers the candidate files under root and processes
// them in order. Root errors abort before any file is touched.
func (p *Processor) ProcessDirectory(ctx context.Context, root string) (*Statistics, error) {
	logger := zerolog.Ctx(ctx)

	files, err := discover.Discover(ctx, root, discover.Options{
		Include:          p.cfg.Include,
		Exclude:          p.cfg.Exclude,
		IncludeHidden:    p.cfg.IncludeHidden,
		FollowSymlinks:   p.cfg.FollowSymlinks,
		RespectGitignore: p.cfg.RespectGitignore,
	})
	if err != nil {
		return nil, errors.Errorf("discovering files: %w", err)
	}

	// previous runs leave .bak files next to their originals
	files = slices.DeleteFunc(files, func(f string) bool {
		return strings.HasSuffix(f, backup.Suffix)
	})

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Errorf("resolving root: %w", err)
	}

	logger.Debug().Str("root", absRoot).Int("candidates", len(files)).Msg("discovered files")

	return p.run(ctx, absRoot, files)
}

// 📋 ProcessFiles processes an explicit list of files, as given
func (p *Processor) ProcessFiles(ctx context.Context, paths []string) (*Statistics, error) {
	return p.run(ctx, "", paths)
}

func (p *Processor) run(ctx context.Context, root string, files []string) (*Statistics, error) {
	logger := zerolog.Ctx(ctx)

	if limit := p.cfg.MaxFiles; !p.cfg.NoLimits && limit > 0 && len(files) > limit {
		logger.Warn().
			Int("found", len(files)).
			Int("max_files", limit).
			Msg("too many files, processing only the first max_files; use --no-limits to process all")
		files = files[:limit]
	}

	stats := NewStatistics(root)
	defer stats.finish()

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			logger.Warn().Int("remaining", len(files)-i).Msg("run cancelled")
			return stats, trimerr.Wrap(trimerr.Cancelled, err, "")
		}
		if p.cfg.FailFast && stats.HasFailures() {
			logger.Warn().Int("remaining", len(files)-i).Msg("stopping after first error (fail_fast)")
			break
		}

		res := p.processFile(ctx, path, root)
		stats.Add(res)
		if p.onResult != nil {
			p.onResult(ctx, res)
		}
	}

	return stats, nil
}

// 📄 ProcessFile runs the pipeline on a single file. It never fails: every
// problem is reported through the Result.
func (p *Processor) ProcessFile(ctx context.Context, path string) Result {
	return p.processFile(ctx, path, "")
}

func (p *Processor) processFile(ctx context.Context, path, root string) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			zerolog.Ctx(ctx).Error().Str("path", path).Interface("panic", r).Msg("unexpected failure processing file")
			res = Result{Path: path, Code: trimerr.Unexpected, Message: fmt.Sprintf("unexpected failure: %v", r)}
		}
		res.Elapsed = time.Since(start)
	}()

	res, err := p.trimFile(ctx, path, root)
	if err != nil {
		code, ok := trimerr.CodeOf(err)
		if !ok {
			code = trimerr.Unexpected
		}
		res.Code = code
		res.Message = trimerr.Message(err)
		zerolog.Ctx(ctx).Debug().Str("path", path).Str("code", string(code)).Msg(res.Message)
	}
	return res
}

func (p *Processor) trimFile(ctx context.Context, path, root string) (Result, error) {
	logger := zerolog.Ctx(ctx).With().Str("path", path).Logger()
	res := Result{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		return res, readError(path, err)
	}
	if info.IsDir() {
		return res, trimerr.New(trimerr.ReadFailed, "path is a directory: "+path, "")
	}

	if binary.ShouldSkip(path) {
		return res, trimerr.New(trimerr.BinarySkipped, "skipped "+binary.Describe(path)+" file", "")
	}

	if !p.cfg.NoLimits && p.cfg.MaxFileSize > 0 && info.Size() > p.cfg.MaxFileSize {
		return res, trimerr.New(trimerr.FileTooLarge,
			fmt.Sprintf("file is %d bytes, limit is %d", info.Size(), p.cfg.MaxFileSize),
			"Raise max_file_size or use --no-limits")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return res, readError(path, err)
	}

	content, enc := decode(raw)
	if enc != nil {
		logger.Debug().Msg("content is not valid UTF-8, using ISO-8859-1")
	}

	outcome := p.trimmer.Trim(ctx, content)
	if !outcome.WasModified {
		logger.Debug().Msg("unchanged")
		return res, nil
	}

	res.Modified = true
	res.BytesDelta = abs(len(outcome.Original) - len(outcome.Modified))
	res.LinesTrimmed = outcome.LinesTrimmed
	res.BlankLinesRemoved = outcome.BlankLinesRemoved
	logger.Debug().
		Int("bytes", res.BytesDelta).
		Int("lines_trimmed", outcome.LinesTrimmed).
		Int("blank_lines_removed", outcome.BlankLinesRemoved).
		Strs("rules", outcome.RulesHit).
		Msg("content changed")

	if p.cfg.DryRun {
		if p.cfg.Diff {
			res.Diff = diff.Generate(outcome.Original, outcome.Modified, displayName(path, root))
			if p.diffSink != nil {
				p.diffSink(ctx, path, res.Diff)
			}
		}
		return res, nil
	}

	out, err := encode(outcome.Modified, enc)
	if err != nil {
		return res, trimerr.Wrap(trimerr.WriteFailed, err, "A rule produced characters the file's encoding cannot hold")
	}

	if p.cfg.CreateBackups {
		backupPath, err := p.backups.BackupFile(ctx, path, raw)
		if err != nil {
			return res, err
		}
		res.BackupPath = backupPath
	}

	if err := p.backups.WriteFileAtomic(ctx, path, out, info.Mode().Perm()); err != nil {
		if _, ok := trimerr.CodeOf(err); ok {
			return res, err
		}
		return res, trimerr.Wrap(trimerr.WriteFailed, err, "")
	}

	return res, nil
}

func readError(path string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return trimerr.New(trimerr.FileNotFound, "file does not exist: "+path, "")
	case errors.Is(err, os.ErrPermission):
		return trimerr.Wrap(trimerr.PermissionDenied, err, "Check file permissions")
	default:
		return trimerr.Wrap(trimerr.ReadFailed, err, "")
	}
}

// decode returns the text of raw and, when raw is not UTF-8, the encoding
// used to decode it
func decode(raw []byte) (string, encoding.Encoding) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		// every byte is valid ISO-8859-1
		return string(raw), nil
	}
	return string(decoded), charmap.ISO8859_1
}

func encode(s string, enc encoding.Encoding) ([]byte, error) {
	if enc == nil {
		return []byte(s), nil
	}
	out, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.Errorf("re-encoding content: %w", err)
	}
	return out, nil
}

func displayName(path, root string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(strings.TrimPrefix(path, string(filepath.Separator)))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
