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

// Package trimerr defines the stable error codes reported by codetrim.
//
// Every failure that reaches a user carries a Code of the form CT-NNNN so
// that scripts, reports and the database sink can aggregate on it.
package trimerr

import (
	"fmt"
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🏷️ Code is a stable, user-facing error code
type Code string

const (
	// configuration
	InvalidConfig  Code = "CT-0001"
	ConfigNotFound Code = "CT-0002"
	InvalidValue   Code = "CT-0003"
	InvalidRule    Code = "CT-0004"
	InvalidPattern Code = "CT-0005"
	// file access
	FileNotFound     Code = "CT-0010"
	ReadFailed       Code = "CT-0011"
	WriteFailed      Code = "CT-0012"
	PermissionDenied Code = "CT-0013"
	DirectoryAccess  Code = "CT-0014"
	FileTooLarge     Code = "CT-0015"
	BinarySkipped    Code = "CT-0016"
	// backup / undo
	BackupFailed    Code = "CT-0040"
	RestoreFailed   Code = "CT-0041"
	BackupNotFound  Code = "CT-0042"
	BackupCorrupted Code = "CT-0043"
	// hooks
	HookFailed  Code = "CT-0050"
	GitNotFound Code = "CT-0051"
	HookExists  Code = "CT-0052"
	// reporting
	ReportFailed      Code = "CT-0060"
	UnsupportedFormat Code = "CT-0061"
	ReportSendFailed  Code = "CT-0062"
	DatabaseFailed    Code = "CT-0063"
	// generic
	Unexpected Code = "CT-0090"
	Cancelled  Code = "CT-0091"
	DiskFull   Code = "CT-0092"
)

type codeInfo struct {
	title       string
	description string
}

var catalog = map[Code]codeInfo{
	InvalidConfig:     {"Invalid configuration file", "Configuration file format is invalid"},
	ConfigNotFound:    {"Configuration file not found", "Specified config file does not exist"},
	InvalidValue:      {"Invalid configuration value", "Configuration value is out of range"},
	InvalidRule:       {"Invalid rule definition", "Custom rule is malformed or missing fields"},
	InvalidPattern:    {"Invalid regex pattern", "Regex pattern in rule is invalid"},
	FileNotFound:      {"File not found", "Specified file or directory does not exist"},
	ReadFailed:        {"File read error", "Cannot read file contents"},
	WriteFailed:       {"File write error", "Cannot write to file"},
	PermissionDenied:  {"Permission denied", "Insufficient permissions to access file"},
	DirectoryAccess:   {"Directory access error", "Cannot access or traverse directory"},
	FileTooLarge:      {"File too large", "File exceeds maximum size limit"},
	BinarySkipped:     {"Binary file skipped", "Binary file detected and skipped"},
	BackupFailed:      {"Backup creation failed", "Failed to create backup file"},
	RestoreFailed:     {"Restore failed", "Failed to restore from backup"},
	BackupNotFound:    {"Backup not found", "Backup file not found for restore"},
	BackupCorrupted:   {"Backup corrupted", "Backup file is corrupted or invalid"},
	HookFailed:        {"Hook generation failed", "Failed to generate pre-commit hook"},
	GitNotFound:       {"Not a git repository", ".git directory not found in path"},
	HookExists:        {"Hook already exists", "Pre-commit hook already exists"},
	ReportFailed:      {"Report generation failed", "Failed to generate report"},
	UnsupportedFormat: {"Unsupported report format", "Unsupported report format specified"},
	ReportSendFailed:  {"Report delivery failed", "Failed to send report to endpoint"},
	DatabaseFailed:    {"Database write failed", "Error writing to SQLite database"},
	Unexpected:        {"Unexpected error", "An unexpected error occurred"},
	Cancelled:         {"Operation cancelled", "Operation was cancelled by user"},
	DiskFull:          {"Insufficient disk space", "Insufficient disk space for operation"},
}

// Title returns the short human title for the code
func (c Code) Title() string {
	if info, ok := catalog[c]; ok {
		return info.title
	}
	return "Unknown error"
}

// Description returns the catalog description for the code
func (c Code) Description() string {
	if info, ok := catalog[c]; ok {
		return info.description
	}
	return ""
}

// Known reports whether the code is part of the catalog
func (c Code) Known() bool {
	_, ok := catalog[c]
	return ok
}

// Codes lists every catalogued code in ascending order
func Codes() []Code {
	out := make([]Code, 0, len(catalog))
	for c := range catalog {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// 🚨 Error is a coded failure carrying an optional cause and suggestion
type Error struct {
	Code       Code
	Cause      string
	Suggestion string
	err        error
}

// 🏭 New creates a coded error with a cause message
func New(code Code, cause string, suggestion string) *Error {
	return &Error{Code: code, Cause: cause, Suggestion: suggestion}
}

// 🏭 Newf creates a coded error with a formatted cause
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Cause: fmt.Sprintf(format, args...)}
}

// 🔗 Wrap attaches a code to an underlying error
func Wrap(code Code, err error, suggestion string) *Error {
	cause := ""
	if err != nil {
		cause = err.Error()
	}
	return &Error{Code: code, Cause: cause, Suggestion: suggestion, err: err}
}

func (e *Error) Error() string {
	if e.Cause == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Code.Title())
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Code.Title(), e.Cause)
}

func (e *Error) Unwrap() error {
	return e.err
}

// WithSuggestion returns a copy of the error with a different suggestion
func (e *Error) WithSuggestion(s string) *Error {
	cp := *e
	cp.Suggestion = s
	return &cp
}

// 📝 Detail renders the full multi-line explanation shown to users
func (e *Error) Detail() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Code.Title())
	if d := e.Code.Description(); d != "" {
		fmt.Fprintf(&b, "\nDescription: %s", d)
	}
	if e.Cause != "" {
		fmt.Fprintf(&b, "\nCause: %s", e.Cause)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\nSuggestion: %s", e.Suggestion)
	}
	return b.String()
}

// 🔍 CodeOf extracts the first code found in the error chain
func CodeOf(err error) (Code, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Code, true
	}
	return "", false
}

// Is reports whether err carries the given code anywhere in its chain
func Is(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// Message returns the cause text of a coded error, or err.Error() otherwise
func Message(err error) string {
	var te *Error
	if errors.As(err, &te) && te.Cause != "" {
		return te.Cause
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
