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
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/walteh/codetrim/pkg/trimerr"
	"gitlab.com/tozd/go/errors"
)

// EnvPrefix prefixes every environment override, e.g. CODETRIM_MAX_FILES
const EnvPrefix = "CODETRIM"

// 🧭 Sources names the layers Resolve merges on top of the defaults
type Sources struct {
	File  string         // explicit config file; wins over Dir
	Dir   string         // directory searched for FileNames when File is empty
	Flags *pflag.FlagSet // flags named like keys with "-" for "_"; only changed flags apply
}

type field struct {
	key   string
	ptr   any
	usage string
}

// fields lists every scalar option that env vars and flags may override
func (cfg *Config) fields() []field {
	return []field{
		{"include", &cfg.Include, "comma separated globs of files to process"},
		{"exclude", &cfg.Exclude, "comma separated globs of files to skip"},
		{"include_hidden", &cfg.IncludeHidden, "process dot files and dot directories"},
		{"follow_symlinks", &cfg.FollowSymlinks, "follow symbolic links"},
		{"respect_gitignore", &cfg.RespectGitignore, "skip files matched by .gitignore"},
		{"max_consecutive_blank_lines", &cfg.MaxConsecutiveBlankLines, "longest run of blank lines to keep"},
		{"ensure_final_newline", &cfg.EnsureFinalNewline, "end files with exactly one newline"},
		{"trim_trailing_whitespace", &cfg.TrimTrailingWhitespace, "strip spaces and tabs at line ends"},
		{"max_file_size", &cfg.MaxFileSize, "largest file in bytes to process, 0 for unlimited"},
		{"max_files", &cfg.MaxFiles, "most files to process per run, 0 for unlimited"},
		{"no_limits", &cfg.NoLimits, "ignore max-files and max-file-size"},
		{"dry_run", &cfg.DryRun, "report changes without writing"},
		{"diff", &cfg.Diff, "print unified diffs during a dry run"},
		{"create_backups", &cfg.CreateBackups, "keep a .bak copy of every modified file"},
		{"fail_fast", &cfg.FailFast, "stop at the first file error"},
		{"verbose", &cfg.Verbose, "show unchanged files and error details"},
		{"quiet", &cfg.Quiet, "only print errors"},
		{"no_color", &cfg.NoColor, "disable colored output"},
		{"report", &cfg.Report, "write a report: json, csv or sqlite"},
		{"report_output", &cfg.ReportOutput, "report file path"},
		{"report_endpoint", &cfg.ReportEndpoint, "URL to POST the JSON report to"},
	}
}

// 🚩 RegisterFlags adds one flag per option to fs, defaulting to the
// built-in value. Resolve only applies the ones the user changed.
func RegisterFlags(fs *pflag.FlagSet) {
	for _, f := range Default().fields() {
		name := FlagName(f.key)
		switch p := f.ptr.(type) {
		case *string:
			fs.String(name, *p, f.usage)
		case *bool:
			fs.Bool(name, *p, f.usage)
		case *int:
			fs.Int(name, *p, f.usage)
		case *int64:
			fs.Int64(name, *p, f.usage)
		}
	}
}

// FlagName returns the CLI flag spelling of a config key
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// 🎯 Resolve merges defaults, the config file, CODETRIM_* environment
// variables and changed CLI flags, then validates the result
func Resolve(ctx context.Context, src Sources) (*Config, error) {
	logger := zerolog.Ctx(ctx)

	var (
		cfg *Config
		err error
	)
	switch {
	case src.File != "":
		cfg, err = Load(ctx, src.File)
	case src.Dir != "":
		cfg, err = Discover(ctx, src.Dir)
	default:
		cfg = Default()
	}
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fields := cfg.fields()
	if src.Flags != nil {
		for _, f := range fields {
			if flag := src.Flags.Lookup(FlagName(f.key)); flag != nil {
				if err := v.BindPFlag(f.key, flag); err != nil {
					return nil, errors.Errorf("binding flag %s: %w", flag.Name, err)
				}
			}
		}
	}

	for _, f := range fields {
		if !v.IsSet(f.key) {
			continue
		}
		raw := v.GetString(f.key)
		if err := assign(f, raw); err != nil {
			return nil, err
		}
		logger.Debug().Str("key", f.key).Str("value", raw).Msg("config override")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func assign(f field, raw string) error {
	switch p := f.ptr.(type) {
	case *string:
		*p = raw
	case *bool:
		b, err := ParseBool(raw)
		if err != nil {
			return invalidValue(f.key, raw, "true or false")
		}
		*p = b
	case *int:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return invalidValue(f.key, raw, "an integer")
		}
		*p = n
	case *int64:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return invalidValue(f.key, raw, "an integer")
		}
		*p = n
	default:
		return errors.Errorf("unsupported option type %T for %s", f.ptr, f.key)
	}
	return nil
}

func invalidValue(key, raw, want string) error {
	return trimerr.New(trimerr.InvalidValue,
		fmt.Sprintf("%s must be %s, got %q", key, want, raw),
		fmt.Sprintf("Fix %s_%s or --%s", EnvPrefix, strings.ToUpper(key), FlagName(key)))
}

// ParseBool accepts true/false, 1/0, yes/no and on/off in any case
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on", "t", "y":
		return true, nil
	case "false", "0", "no", "off", "f", "n", "":
		return false, nil
	}
	return false, errors.Errorf("invalid boolean %q", s)
}
