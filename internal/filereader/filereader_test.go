package filereader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.txt")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestReadLinesInFile(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    []string
	}{
		{
			name:    "plain utf8",
			content: []byte("line one\nline two\n"),
			want:    []string{"line one", "line two"},
		},
		{
			name:    "utf8 bom is stripped",
			content: append([]byte{0xEF, 0xBB, 0xBF}, []byte("package main\n")...),
			want:    []string{"package main"},
		},
		{
			name:    "utf16 little endian",
			content: []byte{0xFF, 0xFE, 'h', 0, 'i', 0, '\n', 0, 'x', 0},
			want:    []string{"hi", "x"},
		},
		{
			name:    "crlf line endings",
			content: []byte("a\r\nb"),
			want:    []string{"a", "b"},
		},
		{
			name:    "empty file",
			content: nil,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.content)

			lines, err := ReadLinesInFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, lines)
		})
	}
}

func TestLocalFileReader(t *testing.T) {
	path := writeFile(t, []byte("1\n2\n3\n"))
	reader := NewLocalFileReader()

	count, err := reader.CountLines(path)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	info, err := reader.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, "source.txt", info.Name())

	_, err = reader.ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
