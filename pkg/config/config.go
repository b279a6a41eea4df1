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

package config

import (
	"context"
	"fmt"
	"regexp"

	"github.com/walteh/codetrim/pkg/text"
	"github.com/walteh/codetrim/pkg/trimerr"
)

const (
	// DefaultMaxFileSize is 5 MiB
	DefaultMaxFileSize int64 = 5 * 1024 * 1024
	// DefaultMaxFiles caps a run unless limits are disabled
	DefaultMaxFiles = 50
	// DefaultReportOutput is where file based reports are written
	DefaultReportOutput = "codetrim-report.json"
)

// ReportFormats lists the accepted values for Config.Report
var ReportFormats = []string{"json", "csv", "sqlite"}

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes, on top of the defaults
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔄 Rule is a named regex substitution applied after whitespace trimming
type Rule struct {
	Name        string `json:"name" yaml:"name"`
	Pattern     string `json:"pattern" yaml:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// 📚 Config represents the complete configuration
type Config struct {
	// discovery
	Include          string `json:"include" yaml:"include"`
	Exclude          string `json:"exclude" yaml:"exclude"`
	IncludeHidden    bool   `json:"include_hidden" yaml:"include_hidden"`
	FollowSymlinks   bool   `json:"follow_symlinks" yaml:"follow_symlinks"`
	RespectGitignore bool   `json:"respect_gitignore" yaml:"respect_gitignore"`

	// trimming
	MaxConsecutiveBlankLines int    `json:"max_consecutive_blank_lines" yaml:"max_consecutive_blank_lines"`
	EnsureFinalNewline       bool   `json:"ensure_final_newline" yaml:"ensure_final_newline"`
	TrimTrailingWhitespace   bool   `json:"trim_trailing_whitespace" yaml:"trim_trailing_whitespace"`
	Rules                    []Rule `json:"rules" yaml:"rules"`

	// limits
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`
	MaxFiles    int   `json:"max_files" yaml:"max_files"`
	NoLimits    bool  `json:"no_limits" yaml:"no_limits"`

	// run behaviour
	DryRun        bool `json:"dry_run" yaml:"dry_run"`
	Diff          bool `json:"diff" yaml:"diff"`
	CreateBackups bool `json:"create_backups" yaml:"create_backups"`
	FailFast      bool `json:"fail_fast" yaml:"fail_fast"`

	// output
	Verbose bool `json:"verbose" yaml:"verbose"`
	Quiet   bool `json:"quiet" yaml:"quiet"`
	NoColor bool `json:"no_color" yaml:"no_color"`

	// reporting
	Report         string `json:"report" yaml:"report"`
	ReportOutput   string `json:"report_output" yaml:"report_output"`
	ReportEndpoint string `json:"report_endpoint" yaml:"report_endpoint"`

	location string
}

// 🏭 Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Include:                  "*",
		MaxConsecutiveBlankLines: 2,
		EnsureFinalNewline:       true,
		TrimTrailingWhitespace:   true,
		MaxFileSize:              DefaultMaxFileSize,
		MaxFiles:                 DefaultMaxFiles,
		CreateBackups:            true,
		ReportOutput:             DefaultReportOutput,
	}
}

// Clone returns a deep copy that can be modified independently
func (cfg *Config) Clone() *Config {
	cp := *cfg
	cp.Rules = append([]Rule(nil), cfg.Rules...)
	return &cp
}

// Location returns the file the config was loaded from, if any
func (cfg *Config) Location() string {
	return cfg.location
}

// 🔍 Validate checks limits, report settings and rules
func (cfg *Config) Validate() error {
	if cfg.MaxConsecutiveBlankLines < 0 {
		return trimerr.New(trimerr.InvalidValue,
			fmt.Sprintf("max_consecutive_blank_lines must be >= 0, got %d", cfg.MaxConsecutiveBlankLines),
			"Set max_consecutive_blank_lines to 0 or a positive number")
	}
	if cfg.MaxFileSize < 0 {
		return trimerr.New(trimerr.InvalidValue,
			fmt.Sprintf("max_file_size must be >= 0, got %d", cfg.MaxFileSize),
			"Set max_file_size to a positive number of bytes, or 0 for unlimited")
	}
	if cfg.MaxFiles < 0 {
		return trimerr.New(trimerr.InvalidValue,
			fmt.Sprintf("max_files must be >= 0, got %d", cfg.MaxFiles),
			"Set max_files to a positive number, or 0 for unlimited")
	}
	if cfg.Quiet && cfg.Verbose {
		return trimerr.New(trimerr.InvalidValue, "quiet and verbose are mutually exclusive", "Pick one of --quiet or --verbose")
	}
	if cfg.Report != "" && !validReportFormat(cfg.Report) {
		return trimerr.New(trimerr.UnsupportedFormat,
			fmt.Sprintf("unsupported report format %q", cfg.Report),
			"Use one of: json, csv, sqlite")
	}

	for i, r := range cfg.Rules {
		if r.Name == "" {
			return trimerr.New(trimerr.InvalidRule, fmt.Sprintf("rule %d: name is required", i), "Give every rule a name")
		}
		if r.Pattern == "" {
			return trimerr.New(trimerr.InvalidRule, fmt.Sprintf("rule '%s': pattern is required", r.Name), "Give every rule a pattern")
		}
		if _, err := regexp.Compile(r.Pattern); err != nil {
			return trimerr.New(trimerr.InvalidPattern,
				fmt.Sprintf("rule '%s' has invalid pattern: %s", r.Name, err),
				"Check the regex syntax of the rule pattern")
		}
	}

	return nil
}

// 🧰 CompileRules compiles the configured rules in order
func (cfg *Config) CompileRules() ([]text.Rule, error) {
	out := make([]text.Rule, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		compiled, err := text.CompileRule(r.Name, r.Pattern, r.Replacement, r.Description)
		if err != nil {
			return nil, err
		}
		out = append(out, compiled)
	}
	return out, nil
}

// 📝 String returns a short summary of the config
func (cfg *Config) String() string {
	src := cfg.location
	if src == "" {
		src = "defaults"
	}
	return fmt.Sprintf("include=%q exclude=%q blank=%d rules=%d dry_run=%t (%s)",
		cfg.Include, cfg.Exclude, cfg.MaxConsecutiveBlankLines, len(cfg.Rules), cfg.DryRun, src)
}

func validReportFormat(f string) bool {
	for _, known := range ReportFormats {
		if f == known {
			return true
		}
	}
	return false
}
