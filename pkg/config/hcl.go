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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
//
//	include   = "*.go"
//	max_files = 100
//	rule "tabs" {
//	  pattern     = "\t"
//	  replacement = "    "
//	}
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclRule struct {
		Name        string `hcl:"name,label"`
		Pattern     string `hcl:"pattern,optional"`
		Replacement string `hcl:"replacement,optional"`
		Description string `hcl:"description,optional"`
	}
	type hclConfig struct {
		Include                  *string   `hcl:"include,optional"`
		Exclude                  *string   `hcl:"exclude,optional"`
		IncludeHidden            *bool     `hcl:"include_hidden,optional"`
		FollowSymlinks           *bool     `hcl:"follow_symlinks,optional"`
		RespectGitignore         *bool     `hcl:"respect_gitignore,optional"`
		MaxConsecutiveBlankLines *int      `hcl:"max_consecutive_blank_lines,optional"`
		EnsureFinalNewline       *bool     `hcl:"ensure_final_newline,optional"`
		TrimTrailingWhitespace   *bool     `hcl:"trim_trailing_whitespace,optional"`
		MaxFileSize              *int64    `hcl:"max_file_size,optional"`
		MaxFiles                 *int      `hcl:"max_files,optional"`
		NoLimits                 *bool     `hcl:"no_limits,optional"`
		DryRun                   *bool     `hcl:"dry_run,optional"`
		Diff                     *bool     `hcl:"diff,optional"`
		CreateBackups            *bool     `hcl:"create_backups,optional"`
		FailFast                 *bool     `hcl:"fail_fast,optional"`
		Verbose                  *bool     `hcl:"verbose,optional"`
		Quiet                    *bool     `hcl:"quiet,optional"`
		NoColor                  *bool     `hcl:"no_color,optional"`
		Report                   *string   `hcl:"report,optional"`
		ReportOutput             *string   `hcl:"report_output,optional"`
		ReportEndpoint           *string   `hcl:"report_endpoint,optional"`
		Rules                    []hclRule `hcl:"rule,block"`
	}

	var raw hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &raw)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := Default()
	setString(&cfg.Include, raw.Include)
	setString(&cfg.Exclude, raw.Exclude)
	setBool(&cfg.IncludeHidden, raw.IncludeHidden)
	setBool(&cfg.FollowSymlinks, raw.FollowSymlinks)
	setBool(&cfg.RespectGitignore, raw.RespectGitignore)
	setInt(&cfg.MaxConsecutiveBlankLines, raw.MaxConsecutiveBlankLines)
	setBool(&cfg.EnsureFinalNewline, raw.EnsureFinalNewline)
	setBool(&cfg.TrimTrailingWhitespace, raw.TrimTrailingWhitespace)
	if raw.MaxFileSize != nil {
		cfg.MaxFileSize = *raw.MaxFileSize
	}
	setInt(&cfg.MaxFiles, raw.MaxFiles)
	setBool(&cfg.NoLimits, raw.NoLimits)
	setBool(&cfg.DryRun, raw.DryRun)
	setBool(&cfg.Diff, raw.Diff)
	setBool(&cfg.CreateBackups, raw.CreateBackups)
	setBool(&cfg.FailFast, raw.FailFast)
	setBool(&cfg.Verbose, raw.Verbose)
	setBool(&cfg.Quiet, raw.Quiet)
	setBool(&cfg.NoColor, raw.NoColor)
	setString(&cfg.Report, raw.Report)
	setString(&cfg.ReportOutput, raw.ReportOutput)
	setString(&cfg.ReportEndpoint, raw.ReportEndpoint)

	for _, r := range raw.Rules {
		cfg.Rules = append(cfg.Rules, Rule{
			Name:        r.Name,
			Pattern:     r.Pattern,
			Replacement: r.Replacement,
			Description: r.Description,
		})
	}

	return cfg, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
