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

// Package report exports run statistics as JSON, CSV or SQLite files and
// optionally posts them to an HTTP endpoint.
package report

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/codetrim/pkg/operation"
	"github.com/walteh/codetrim/pkg/trimerr"
	"golang.org/x/sync/errgroup"
)

// 📑 Format is a report file format
type Format string

const (
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

// ParseFormat normalizes a format name; unknown names are CT-0061
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatSQLite:
		return f, nil
	default:
		return "", trimerr.New(trimerr.UnsupportedFormat, "unknown report format: "+s, "Use json, csv, or sqlite")
	}
}

// 📄 FileEntry is one result row
type FileEntry struct {
	FilePath         string  `json:"file_path"`
	WasModified      bool    `json:"was_modified"`
	BytesModified    int     `json:"bytes_modified"`
	ErrorCode        string  `json:"error_code,omitempty"`
	ErrorMessage     string  `json:"error_message,omitempty"`
	BackupPath       string  `json:"backup_path,omitempty"`
	ProcessingTimeMs float64 `json:"processing_time_ms"`
}

// 📊 Document is the serialized form of a run
type Document struct {
	RunID             string         `json:"run_id"`
	Timestamp         time.Time      `json:"timestamp"`
	Root              string         `json:"root,omitempty"`
	DryRun            bool           `json:"dry_run"`
	FilesProcessed    int            `json:"files_processed"`
	FilesModified     int            `json:"files_modified"`
	FilesSkipped      int            `json:"files_skipped"`
	FilesErrored      int            `json:"files_errored"`
	BytesTrimmed      int64          `json:"bytes_trimmed"`
	LinesTrimmed      int            `json:"lines_trimmed"`
	BlankLinesRemoved int            `json:"blank_lines_removed"`
	ExecutionTimeMs   float64        `json:"execution_time_ms"`
	Errors            map[string]int `json:"errors"`
	Results           []FileEntry    `json:"results"`
}

// 🏭 NewDocument flattens statistics into a Document
func NewDocument(stats *operation.Statistics, dryRun bool) Document {
	doc := Document{
		RunID:             stats.RunID,
		Timestamp:         stats.StartedAt.UTC(),
		Root:              stats.Root,
		DryRun:            dryRun,
		FilesProcessed:    stats.FilesProcessed,
		FilesModified:     stats.FilesModified,
		FilesSkipped:      stats.FilesSkipped,
		FilesErrored:      stats.FilesErrored,
		BytesTrimmed:      stats.BytesTrimmed,
		LinesTrimmed:      stats.LinesTrimmed,
		BlankLinesRemoved: stats.BlankLinesRemoved,
		ExecutionTimeMs:   stats.ElapsedMs(),
		Errors:            make(map[string]int, len(stats.Errors)),
		Results:           make([]FileEntry, 0, len(stats.Results)),
	}
	for code, n := range stats.Errors {
		doc.Errors[string(code)] = n
	}
	for _, r := range stats.Results {
		doc.Results = append(doc.Results, FileEntry{
			FilePath:         r.Path,
			WasModified:      r.Modified,
			BytesModified:    r.BytesDelta,
			ErrorCode:        string(r.Code),
			ErrorMessage:     r.Message,
			BackupPath:       r.BackupPath,
			ProcessingTimeMs: r.ElapsedMs(),
		})
	}
	return doc
}

// ErrorCodes returns the codes present in the document, sorted
func (d Document) ErrorCodes() []string {
	codes := make([]string, 0, len(d.Errors))
	for c := range d.Errors {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// 🔧 Options selects the sinks Dispatch writes to
type Options struct {
	Format   string // "" disables the file sink
	Output   string // file path for the file sink
	Endpoint string // "" disables the HTTP sink
	DryRun   bool

	Client *http.Client // defaults to a client with a 30s timeout
}

// 🚀 Dispatch writes the file report and posts to the endpoint concurrently
func Dispatch(ctx context.Context, stats *operation.Statistics, opts Options) error {
	logger := zerolog.Ctx(ctx)
	doc := NewDocument(stats, opts.DryRun)

	g, ctx := errgroup.WithContext(ctx)

	if opts.Format != "" {
		format, err := ParseFormat(opts.Format)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := Write(ctx, doc, format, opts.Output); err != nil {
				return err
			}
			logger.Info().Str("format", string(format)).Str("path", opts.Output).Msg("report written")
			return nil
		})
	}

	if opts.Endpoint != "" {
		g.Go(func() error {
			if err := Send(ctx, doc, opts.Endpoint, opts.Client); err != nil {
				return err
			}
			logger.Info().Str("endpoint", opts.Endpoint).Msg("report sent")
			return nil
		})
	}

	return g.Wait()
}

// 📝 Write writes doc to path in the given format
func Write(ctx context.Context, doc Document, format Format, path string) error {
	if path == "" {
		return trimerr.New(trimerr.ReportFailed, "no report output path", "Set report_output")
	}
	switch format {
	case FormatJSON:
		return writeFile(path, func() ([]byte, error) { return EncodeJSON(doc) })
	case FormatCSV:
		return writeFile(path, func() ([]byte, error) { return EncodeCSV(doc) })
	case FormatSQLite:
		return WriteSQLite(ctx, doc, path)
	default:
		return trimerr.New(trimerr.UnsupportedFormat, "unknown report format: "+string(format), "Use json, csv, or sqlite")
	}
}
