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

// Package diff renders unified-style previews of trimming changes.
//
// The line matcher is a forward scan with one line of lookahead. It is not a
// minimal LCS diff and may emit extra substitutions when lines repeat.
package diff

import (
	"fmt"
	"strings"
)

// ContextLines is the number of unchanged lines kept around each change
const ContextLines = 3

// 🏷️ LineType tags a diff line
type LineType int

const (
	LineContext LineType = iota
	LineAdded
	LineRemoved
)

// Prefix returns the unified diff marker for the line type
func (t LineType) Prefix() string {
	switch t {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}

func (t LineType) String() string {
	switch t {
	case LineAdded:
		return "added"
	case LineRemoved:
		return "removed"
	default:
		return "context"
	}
}

// 📄 Line is a single diff line
type Line struct {
	Type    LineType
	Content string
	Number  int // 1-based line number on its own side

	oldPos int // 1-based cursor into the original when emitted
	newPos int // 1-based cursor into the modified text when emitted
}

// 📦 Hunk is a contiguous group of changes with surrounding context
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// Header renders the @@ line for the hunk
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
}

// 🔍 Lines computes the flat line sequence between original and modified
func Lines(original, modified string) []Line {
	orig := strings.Split(original, "\n")
	mod := strings.Split(modified, "\n")

	var out []Line
	i, j := 0, 0
	for i < len(orig) || j < len(mod) {
		switch {
		case i >= len(orig):
			out = append(out, Line{Type: LineAdded, Content: mod[j], Number: j + 1, oldPos: i + 1, newPos: j + 1})
			j++
		case j >= len(mod):
			out = append(out, Line{Type: LineRemoved, Content: orig[i], Number: i + 1, oldPos: i + 1, newPos: j + 1})
			i++
		case orig[i] == mod[j]:
			out = append(out, Line{Type: LineContext, Content: orig[i], Number: i + 1, oldPos: i + 1, newPos: j + 1})
			i++
			j++
		case i+1 < len(orig) && orig[i+1] == mod[j]:
			out = append(out, Line{Type: LineRemoved, Content: orig[i], Number: i + 1, oldPos: i + 1, newPos: j + 1})
			i++
		case j+1 < len(mod) && mod[j+1] == orig[i]:
			out = append(out, Line{Type: LineAdded, Content: mod[j], Number: j + 1, oldPos: i + 1, newPos: j + 1})
			j++
		default:
			out = append(out,
				Line{Type: LineRemoved, Content: orig[i], Number: i + 1, oldPos: i + 1, newPos: j + 1},
				Line{Type: LineAdded, Content: mod[j], Number: j + 1, oldPos: i + 2, newPos: j + 1},
			)
			i++
			j++
		}
	}
	return out
}

// 📦 Hunks groups changes into hunks with up to context lines around them.
// Change clusters separated by at most 2*context unchanged lines share a hunk.
func Hunks(lines []Line, context int) []Hunk {
	if context < 0 {
		context = 0
	}

	var hunks []Hunk
	first, last := -1, -1
	for idx, l := range lines {
		if l.Type == LineContext {
			continue
		}
		if first == -1 {
			first, last = idx, idx
			continue
		}
		if idx-last-1 <= 2*context {
			last = idx
			continue
		}
		hunks = append(hunks, buildHunk(lines, first, last, context))
		first, last = idx, idx
	}
	if first != -1 {
		hunks = append(hunks, buildHunk(lines, first, last, context))
	}
	return hunks
}

func buildHunk(lines []Line, first, last, context int) Hunk {
	from := max(0, first-context)
	to := min(len(lines)-1, last+context)

	h := Hunk{Lines: append([]Line(nil), lines[from:to+1]...)}
	for _, l := range h.Lines {
		switch l.Type {
		case LineContext:
			h.OldCount++
			h.NewCount++
		case LineRemoved:
			h.OldCount++
		case LineAdded:
			h.NewCount++
		}
	}

	h.OldStart = h.Lines[0].oldPos
	h.NewStart = h.Lines[0].newPos
	// an empty side points at the line before the insertion, as in GNU diff
	if h.OldCount == 0 {
		h.OldStart--
	}
	if h.NewCount == 0 {
		h.NewStart--
	}
	return h
}

// ✨ Generate renders a unified diff of original vs modified for the named
// file, or "" when the two are identical
func Generate(original, modified, name string) string {
	if original == modified {
		return ""
	}

	hunks := Hunks(Lines(original, modified), ContextLines)
	if len(hunks) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", name)
	fmt.Fprintf(&b, "+++ b/%s\n", name)
	for _, h := range hunks {
		b.WriteString(h.Header())
		b.WriteByte('\n')
		for _, l := range h.Lines {
			b.WriteString(l.Type.Prefix())
			b.WriteString(l.Content)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
