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

package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// 🏷️ buildInfo describes the running binary, read from the module build info
type buildInfo struct {
	version  string
	revision string
	built    string
	dirty    bool
}

func readBuildInfo() buildInfo {
	b := buildInfo{version: "dev"}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		b.version = v
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	b.revision = settings["vcs.revision"]
	b.built = settings["vcs.time"]
	b.dirty = settings["vcs.modified"] == "true"

	return b
}

// shortRevision trims a commit hash for display
func (b buildInfo) shortRevision() string {
	if len(b.revision) > 12 {
		return b.revision[:12]
	}
	return b.revision
}

func (b buildInfo) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✂️ codetrim %s\n", b.version)
	if rev := b.shortRevision(); rev != "" {
		if b.dirty {
			rev += "-dirty"
		}
		fmt.Fprintf(&sb, "Revision:  %s\n", rev)
	}
	if b.built != "" {
		fmt.Fprintf(&sb, "Built:     %s\n", b.built)
	}
	fmt.Fprintf(&sb, "Go:        %s\n", runtime.Version())
	fmt.Fprintf(&sb, "Platform:  %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return sb.String()
}
