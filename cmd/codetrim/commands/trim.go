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
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/walteh/codetrim/cmd/codetrim/opts"
	"github.com/walteh/codetrim/pkg/operation"
	"github.com/walteh/codetrim/pkg/report"
	"gitlab.com/tozd/go/errors"
)

// ErrFilesFailed is returned when a run finished but some files hit errors.
// The per-file errors have already been printed.
var ErrFilesFailed = errors.Base("one or more files failed")

// NewTrimCmd creates the trim command
func NewTrimCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "trim [directory | file...]",
		Short: "Trim trailing whitespace and excess blank lines",
		Long: `Trim walks a directory (the current one by default) or the given files and:
1. Strips trailing spaces and tabs from every line
2. Collapses runs of blank lines
3. Applies any custom regex rules from the config, in order
4. Ends each file with exactly one newline

Modified files keep a .bak copy unless --create-backups=false.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunTrim(cmd.Context(), o, args)
		},
	}
}

// 🚀 RunTrim processes args with the resolved config and prints the results
func RunTrim(ctx context.Context, o *opts.RootOpts, args []string) error {
	cfg := o.Config
	logger := o.Logger

	proc, err := operation.NewProcessor(cfg, operation.Options{
		OnResult: func(ctx context.Context, r operation.Result) {
			logger.LogResult(ctx, r, cfg.DryRun)
			logger.Diff(r.Diff)
		},
	})
	if err != nil {
		return err
	}

	if len(args) == 0 {
		args = []string{"."}
	}

	mode := "trimming"
	if cfg.DryRun {
		mode = "dry run of"
	}
	logger.Header(fmt.Sprintf("%s %s", mode, strings.Join(args, " ")))

	var stats *operation.Statistics
	if len(args) == 1 && !isFile(args[0]) {
		stats, err = proc.ProcessDirectory(ctx, args[0])
	} else {
		stats, err = proc.ProcessFiles(ctx, args)
	}
	if err != nil {
		return err
	}

	logger.LogNewline()
	logger.Summary(stats, cfg.DryRun)

	if err := report.Dispatch(ctx, stats, report.Options{
		Format:   cfg.Report,
		Output:   cfg.ReportOutput,
		Endpoint: cfg.ReportEndpoint,
		DryRun:   cfg.DryRun,
	}); err != nil {
		return errors.Errorf("reporting: %w", err)
	}
	if cfg.Report != "" {
		logger.Infof("report written to %s", cfg.ReportOutput)
	}

	if stats.HasFailures() {
		logger.Warningf("%d file(s) failed", stats.FilesErrored)
		return ErrFilesFailed
	}

	switch {
	case stats.FilesModified == 0:
		logger.Success("nothing to trim")
	case cfg.DryRun:
		logger.Infof("%d file(s) would be trimmed", stats.FilesModified)
	default:
		logger.Successf("trimmed %d file(s)", stats.FilesModified)
	}
	return nil
}

// isFile reports whether path names something other than a directory;
// missing paths go through directory processing to get a root error
func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
