package filereader

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// maxLineLength bounds a single source line; minified sources can be very long.
const maxLineLength = 4 * 1024 * 1024

// LocalFileReader reads source files from the local disk. It satisfies the
// FileReader abstractions of the parsers and model.SourceReader.
type LocalFileReader struct{}

// NewLocalFileReader creates a LocalFileReader.
func NewLocalFileReader() *LocalFileReader {
	return &LocalFileReader{}
}

// ReadFile reads all lines from a file.
func (LocalFileReader) ReadFile(path string) ([]string, error) {
	return ReadLinesInFile(path)
}

// CountLines counts the number of lines in a file.
func (LocalFileReader) CountLines(path string) (int, error) {
	return CountLinesInFile(path)
}

// Stat returns a FileInfo describing the named file.
func (LocalFileReader) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

// CountLinesInFile counts the number of physical lines in a file.
func CountLinesInFile(filePath string) (int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	scanner := newScanner(file)
	lineCount := 0
	for scanner.Scan() {
		lineCount++
	}
	return lineCount, scanner.Err()
}

// ReadLinesInFile reads all lines from a file and returns them as a slice of strings.
// A UTF-8 or UTF-16 byte order mark selects the decoding; without one the content
// is treated as UTF-8 and the BOM never shows up in the first line.
func ReadLinesInFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	scanner := newScanner(transform.NewReader(file, decoder))

	lines := []string{}
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	return lines, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	return scanner
}
