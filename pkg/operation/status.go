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
	"time"

	"github.com/google/uuid"
	"github.com/walteh/codetrim/pkg/trimerr"
)

// 📄 Result is the outcome of processing a single file
type Result struct {
	Path              string
	Modified          bool
	BytesDelta        int // |len(original) - len(trimmed)| of the decoded text
	LinesTrimmed      int
	BlankLinesRemoved int
	Code              trimerr.Code // empty on success
	Message           string
	BackupPath        string
	Elapsed           time.Duration
	Diff              string // only set for dry runs with diff enabled
}

// Skipped reports whether the file was left alone as binary
func (r Result) Skipped() bool {
	return r.Code == trimerr.BinarySkipped
}

// Failed reports whether the file hit a real error
func (r Result) Failed() bool {
	return r.Code != "" && !r.Skipped()
}

// ElapsedMs is the processing time in fractional milliseconds
func (r Result) ElapsedMs() float64 {
	return float64(r.Elapsed.Microseconds()) / 1000
}

// 📊 Statistics accumulates the results of one run
type Statistics struct {
	RunID     string
	StartedAt time.Time
	Root      string

	FilesProcessed int
	FilesModified  int
	FilesSkipped   int
	FilesErrored   int
	BytesTrimmed   int64
	Elapsed        time.Duration

	LinesTrimmed      int
	BlankLinesRemoved int

	Errors  map[trimerr.Code]int
	Results []Result
}

// 🏭 NewStatistics starts an empty accumulator with a fresh run ID
func NewStatistics(root string) *Statistics {
	return &Statistics{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Root:      root,
		Errors:    map[trimerr.Code]int{},
	}
}

// ➕ Add records a completed result
func (s *Statistics) Add(r Result) {
	s.FilesProcessed++
	s.Results = append(s.Results, r)

	switch {
	case r.Skipped():
		s.FilesSkipped++
	case r.Failed():
		s.FilesErrored++
	case r.Modified:
		s.FilesModified++
		s.BytesTrimmed += int64(r.BytesDelta)
		s.LinesTrimmed += r.LinesTrimmed
		s.BlankLinesRemoved += r.BlankLinesRemoved
	}

	if r.Code != "" {
		s.Errors[r.Code]++
	}
}

// HasFailures reports whether any result carries an error other than a binary skip
func (s *Statistics) HasFailures() bool {
	return s.FilesErrored > 0
}

// finish stamps the total elapsed time
func (s *Statistics) finish() {
	s.Elapsed = time.Since(s.StartedAt)
}

// ElapsedMs is the run time in fractional milliseconds
func (s *Statistics) ElapsedMs() float64 {
	return float64(s.Elapsed.Microseconds()) / 1000
}

// Modified returns the results for files that changed
func (s *Statistics) Modified() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Modified {
			out = append(out, r)
		}
	}
	return out
}
