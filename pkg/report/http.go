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
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/walteh/codetrim/pkg/trimerr"
	"gitlab.com/tozd/go/errors"
)

const sendTimeout = 30 * time.Second

// 📡 Send POSTs doc as JSON to endpoint
func Send(ctx context.Context, doc Document, endpoint string, client *http.Client) error {
	if client == nil {
		client = &http.Client{Timeout: sendTimeout}
	}

	body, err := EncodeJSON(doc)
	if err != nil {
		return trimerr.Wrap(trimerr.ReportFailed, err, "")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return trimerr.Wrap(trimerr.ReportSendFailed, errors.Errorf("creating request: %w", err), "Check report_endpoint")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "codetrim")

	resp, err := client.Do(req)
	if err != nil {
		return trimerr.Wrap(trimerr.ReportSendFailed, errors.Errorf("sending report: %w", err), "Check that the endpoint is reachable")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode >= http.StatusBadRequest {
		return trimerr.New(trimerr.ReportSendFailed,
			fmt.Sprintf("endpoint returned %s", resp.Status),
			"Check the endpoint logs")
	}
	return nil
}
