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

package text

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/walteh/codetrim/pkg/trimerr"
)

// 🔄 Rule is a compiled regex substitution applied to the whole text
type Rule struct {
	Name        string
	Description string
	Pattern     *regexp.Regexp
	Replacement string
}

// 🏭 CompileRule compiles a rule pattern, failing with CT-0005 on a bad regex
func CompileRule(name, pattern, replacement, description string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, trimerr.New(trimerr.InvalidPattern,
			"rule '"+name+"' has invalid pattern: "+err.Error(),
			"Check the regex syntax of the rule pattern")
	}
	return Rule{Name: name, Description: description, Pattern: re, Replacement: replacement}, nil
}

// ⚙️ Options selects which trimming stages run
type Options struct {
	TrimTrailingWhitespace   bool
	MaxConsecutiveBlankLines int
	EnsureFinalNewline       bool
	Rules                    []Rule
}

// 📝 Outcome is the result of trimming a piece of text
type Outcome struct {
	Original    string
	Modified    string
	WasModified bool

	LinesTrimmed      int      // lines that lost trailing whitespace
	BlankLinesRemoved int      // blank lines dropped by the collapse
	RulesHit          []string // names of rules that changed the text
}

// ✂️ Trimmer applies the whitespace normalization pipeline
type Trimmer struct {
	opts Options
}

// 🏭 New creates a trimmer for the given options
func New(opts Options) *Trimmer {
	if opts.MaxConsecutiveBlankLines < 0 {
		opts.MaxConsecutiveBlankLines = 0
	}
	return &Trimmer{opts: opts}
}

// Options returns the options the trimmer was built with
func (t *Trimmer) Options() Options {
	return t.opts
}

// ✂️ Trim runs the pipeline: trailing whitespace, blank-line collapse, rules, final newline
func (t *Trimmer) Trim(ctx context.Context, content string) Outcome {
	out := Outcome{Original: content}

	lines := strings.Split(content, "\n")
	if t.opts.TrimTrailingWhitespace {
		lines, out.LinesTrimmed = TrimTrailingWhitespace(lines)
	}
	lines, out.BlankLinesRemoved = CollapseBlankLines(lines, t.opts.MaxConsecutiveBlankLines)

	result := strings.Join(lines, "\n")
	result, out.RulesHit = applyRules(ctx, result, t.opts.Rules)

	if t.opts.EnsureFinalNewline {
		result = EnsureFinalNewline(result)
	}

	out.Modified = result
	out.WasModified = result != content
	return out
}

// TrimTrailingWhitespace strips trailing whitespace from every line and
// reports how many lines changed
func TrimTrailingWhitespace(lines []string) ([]string, int) {
	out := make([]string, len(lines))
	changed := 0
	for i, line := range lines {
		out[i] = strings.TrimRightFunc(line, unicode.IsSpace)
		if out[i] != line {
			changed++
		}
	}
	return out, changed
}

// CollapseBlankLines keeps at most limit consecutive whitespace-only lines.
// Extra blank lines in a run are dropped; non-blank lines reset the run.
func CollapseBlankLines(lines []string, limit int) ([]string, int) {
	out := make([]string, 0, len(lines))
	run, removed := 0, 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			run++
			if run <= limit {
				out = append(out, line)
			} else {
				removed++
			}
			continue
		}
		run = 0
		out = append(out, line)
	}
	return out, removed
}

// EnsureFinalNewline makes the text end in exactly one newline; empty text becomes "\n"
func EnsureFinalNewline(s string) string {
	return strings.TrimRight(s, "\n") + "\n"
}

func applyRules(ctx context.Context, s string, rules []Rule) (string, []string) {
	var hit []string
	for _, rule := range rules {
		if rule.Pattern == nil {
			zerolog.Ctx(ctx).Debug().Str("rule", rule.Name).Msg("skipping rule without pattern")
			continue
		}
		next := rule.Pattern.ReplaceAllString(s, rule.Replacement)
		if next != s {
			hit = append(hit, rule.Name)
		}
		s = next
	}
	return s, hit
}
