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

package log

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/codetrim/pkg/operation"
	"github.com/walteh/codetrim/pkg/trimerr"
	"gitlab.com/tozd/go/errors"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	statusWidth = 15 // Width for status text
)

// 🔊 Verbosity controls how much console output is produced
type Verbosity int

const (
	Normal Verbosity = iota
	Quiet            // errors only
	Verbose          // unchanged files too
)

// 🎯 Logger writes human readable run output to the console
type Logger struct {
	console   io.Writer
	verbosity Verbosity
	mu        sync.Mutex
}

// 🏭 New creates a new logger
func New(console io.Writer, verbosity Verbosity) *Logger {
	return &Logger{
		console:   console,
		verbosity: verbosity,
	}
}

// SetColor turns colored output on or off for both color and pterm
func SetColor(enabled bool) {
	color.NoColor = !enabled
	if enabled {
		pterm.EnableColor()
	} else {
		pterm.DisableColor()
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatResult formats a file result for display
func formatResult(r operation.Result, dryRun bool) string {
	var (
		symbol      rune
		symbolColor color.Attribute
		status      string
		detail      string
	)
	switch {
	case r.Skipped():
		symbol, symbolColor, status = '-', color.FgYellow, "skipped"
		detail = r.Message
	case r.Failed():
		symbol, symbolColor, status = '✗', color.FgRed, "error"
		detail = fmt.Sprintf("[%s] %s", r.Code, r.Message)
	case r.Modified && dryRun:
		symbol, symbolColor, status = '⟳', color.FgBlue, "would trim"
		detail = fmt.Sprintf("%d bytes", r.BytesDelta)
	case r.Modified:
		symbol, symbolColor, status = '✓', color.FgGreen, "trimmed"
		detail = fmt.Sprintf("%d bytes", r.BytesDelta)
	default:
		symbol, symbolColor, status = '•', color.FgCyan, "unchanged"
	}

	line := fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, r.Path),
		color.New(symbolColor).Sprint(fmt.Sprintf("%-*s", statusWidth, status)),
		detail)
	return strings.TrimRight(line, " ")
}

// 📝 LogResult prints one line for a processed file
func (l *Logger) LogResult(ctx context.Context, r operation.Result, dryRun bool) {
	zerolog.Ctx(ctx).Debug().
		Str("file", r.Path).
		Bool("modified", r.Modified).
		Int("bytes", r.BytesDelta).
		Str("code", string(r.Code)).
		Dur("elapsed", r.Elapsed).
		Msg("file processed")

	switch {
	case r.Failed():
		// errors always print
	case l.verbosity == Quiet:
		return
	case !r.Modified && !r.Skipped() && l.verbosity != Verbose:
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, formatResult(r, dryRun))
}

// 📝 Diff prints a unified diff with added lines green and removed lines red
func (l *Logger) Diff(diff string) {
	if diff == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			fmt.Fprintln(l.console, color.New(color.Bold).Sprint(line))
		case strings.HasPrefix(line, "@@"):
			fmt.Fprintln(l.console, color.New(color.FgCyan).Sprint(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprintln(l.console, color.New(color.FgGreen).Sprint(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprintln(l.console, color.New(color.FgRed).Sprint(line))
		default:
			fmt.Fprintln(l.console, line)
		}
	}
}

// 📊 Summary renders the run statistics as a table
func (l *Logger) Summary(stats *operation.Statistics, dryRun bool) {
	modifiedLabel := "Files modified"
	if dryRun {
		modifiedLabel = "Files to modify"
	}

	data := pterm.TableData{
		{"Metric", "Value"},
		{"Files processed", fmt.Sprint(stats.FilesProcessed)},
		{modifiedLabel, fmt.Sprint(stats.FilesModified)},
		{"Files skipped", fmt.Sprint(stats.FilesSkipped)},
		{"Files with errors", fmt.Sprint(stats.FilesErrored)},
		{"Bytes trimmed", fmt.Sprint(stats.BytesTrimmed)},
		{"Elapsed", fmt.Sprintf("%.1fms", stats.ElapsedMs())},
	}

	l.table(data)

	if len(stats.Errors) == 0 {
		return
	}

	codes := make([]string, 0, len(stats.Errors))
	for code := range stats.Errors {
		codes = append(codes, string(code))
	}
	sort.Strings(codes)

	errs := pterm.TableData{{"Code", "Title", "Count"}}
	for _, code := range codes {
		c := trimerr.Code(code)
		errs = append(errs, []string{code, c.Title(), fmt.Sprint(stats.Errors[c])})
	}
	l.table(errs)
}

// 📊 UndoResults renders the outcome of a restore
func (l *Logger) UndoResults(results map[string]bool) {
	if len(results) == 0 {
		l.Info("no backups found")
		return
	}

	paths := make([]string, 0, len(results))
	for p := range results {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	data := pterm.TableData{{"File", "Status"}}
	restored := 0
	for _, p := range paths {
		status := "failed"
		if results[p] {
			status = "restored"
			restored++
		}
		data = append(data, []string{p, status})
	}
	l.table(data)

	if restored == len(results) {
		l.Successf("restored %d file(s)", restored)
	} else {
		l.Warningf("restored %d of %d file(s)", restored, len(results))
	}
}

// 📋 Backups lists backup files, one per line
func (l *Logger) Backups(paths []string) {
	if len(paths) == 0 {
		l.Info("no backups found")
		return
	}

	l.mu.Lock()
	for _, p := range paths {
		fmt.Fprintf(l.console, "%*s%s\n", fileIndent, "", p)
	}
	l.mu.Unlock()

	l.Infof("%d backup(s)", len(paths))
}

func (l *Logger) table(data pterm.TableData) {
	if l.verbosity == Quiet {
		return
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, out)
}

// 🚨 Failure prints an error, with the full code explanation when verbose
func (l *Logger) Failure(err error) {
	var te *trimerr.Error
	if l.verbosity == Verbose && errors.As(err, &te) {
		l.Error(te.Detail())
		return
	}
	l.Error(err.Error())
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	if l.verbosity == Quiet {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	if l.verbosity == Quiet {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("codetrim")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	if l.verbosity == Quiet {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	if l.verbosity == Quiet {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	if l.verbosity == Quiet {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
