package binary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0644), "writing test file should succeed")
	return path
}

func TestShouldSkip(t *testing.T) {
	pngHeader := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

	tests := []struct {
		name    string
		file    string
		content []byte
		want    bool
	}{
		{name: "plain_text", file: "main.go", content: []byte("package main\n"), want: false},
		{name: "extension_blocked", file: "photo.PNG", content: []byte("not really a png"), want: true},
		{name: "lock_suffix", file: "package.lock", content: []byte("{}"), want: true},
		{name: "nul_in_content", file: "data.txt", content: []byte("abc\x00def"), want: true},
		{name: "empty_file", file: "empty.txt", content: nil, want: false},
		{name: "magic_bytes_with_text_extension", file: "image.txt", content: pngHeader, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)
			assert.Equal(t, tt.want, ShouldSkip(path), "skip decision should match")
		})
	}
}

func TestHasBinaryContent(t *testing.T) {
	dir := t.TempDir()

	t.Run("nul_past_probe_window", func(t *testing.T) {
		content := make([]byte, ProbeSize+10)
		for i := range content {
			content[i] = 'a'
		}
		content[ProbeSize+5] = 0
		path := writeFile(t, dir, "late.txt", content)
		assert.False(t, HasBinaryContent(path), "only the first window is probed")
	})

	t.Run("unreadable_is_binary", func(t *testing.T) {
		assert.True(t, HasBinaryContent(filepath.Join(dir, "missing.txt")))
	})
}

func TestHasBinaryExtension(t *testing.T) {
	assert.True(t, HasBinaryExtension("/a/b/archive.tar"))
	assert.True(t, HasBinaryExtension("Module.CLASS"))
	assert.False(t, HasBinaryExtension("/a/b/readme.md"))
	assert.Contains(t, Extensions(), ".pdf")
}

func TestDescribe(t *testing.T) {
	dir := t.TempDir()
	png := writeFile(t, dir, "x.png", []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d})
	assert.Equal(t, "image/png", Describe(png))

	txt := writeFile(t, dir, "x.txt", []byte("hello"))
	assert.Equal(t, "binary", Describe(txt))
}
