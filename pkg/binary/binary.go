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

// Package binary decides which files must never be edited as text.
package binary

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// ProbeSize is how many leading bytes are scanned for a NUL byte
const ProbeSize = 8192

// 🚫 blockedExtensions are always treated as binary
var blockedExtensions = []string{
	// images
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".ico", ".webp",
	// media
	".mp3", ".mp4", ".wav", ".avi", ".mov", ".mkv", ".flv",
	// executables and libraries
	".exe", ".dll", ".so", ".dylib", ".bin", ".com", ".msi",
	// archives
	".zip", ".rar", ".7z", ".gz", ".tar", ".jar", ".war", ".ear",
	// documents
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
	// compiled and editor artifacts
	".class", ".o", ".pyc", ".pyo", ".swp", ".swo",
	// misc
	".git", ".lock", ".cache",
}

// Extensions returns a copy of the extension blocklist
func Extensions() []string {
	return append([]string(nil), blockedExtensions...)
}

// HasBinaryExtension reports whether the file name ends in a blocked extension
func HasBinaryExtension(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, ext := range blockedExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// HasBinaryContent reports whether the first ProbeSize bytes contain a NUL.
// Files that cannot be opened or read are reported as binary.
func HasBinaryContent(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, ProbeSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return true
	}
	return bytes.IndexByte(buf[:n], 0) >= 0
}

// 🔍 ShouldSkip reports whether the file is binary by extension or content
func ShouldSkip(path string) bool {
	return HasBinaryExtension(path) || HasBinaryContent(path)
}

// 🏷️ Describe names the detected file kind for log output, e.g. "image/png".
// It returns "binary" when the kind is not recognised.
func Describe(path string) string {
	kind, err := filetype.MatchFile(path)
	if err != nil || kind == filetype.Unknown {
		return "binary"
	}
	return kind.MIME.Value
}
