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

package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/walteh/codetrim/pkg/trimerr"
	"gitlab.com/tozd/go/errors"
)

// CSVHeader is the first row of every CSV report
var CSVHeader = []string{
	"file_path",
	"was_modified",
	"bytes_modified",
	"error_code",
	"error_message",
	"backup_path",
	"processing_time_ms",
}

// EncodeJSON renders doc as indented JSON
func EncodeJSON(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Errorf("encoding JSON report: %w", err)
	}
	return append(data, '\n'), nil
}

// EncodeCSV renders one row per file result
func EncodeCSV(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(CSVHeader); err != nil {
		return nil, errors.Errorf("writing CSV header: %w", err)
	}
	for _, r := range doc.Results {
		row := []string{
			r.FilePath,
			strconv.FormatBool(r.WasModified),
			strconv.Itoa(r.BytesModified),
			r.ErrorCode,
			r.ErrorMessage,
			r.BackupPath,
			strconv.FormatFloat(r.ProcessingTimeMs, 'f', 3, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, errors.Errorf("writing CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Errorf("flushing CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func writeFile(path string, encode func() ([]byte, error)) error {
	data, err := encode()
	if err != nil {
		return trimerr.Wrap(trimerr.ReportFailed, err, "")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return trimerr.Wrap(trimerr.ReportFailed, errors.Errorf("creating report directory: %w", err), "")
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return trimerr.Wrap(trimerr.ReportFailed, errors.Errorf("writing report: %w", err), "Check that the report path is writable")
	}
	return nil
}
