package gocover

import "io/fs"

// FileReader abstracts source file access so parsing can be tested without a disk.
type FileReader interface {
	// ReadFile reads all lines from a file at the given path.
	ReadFile(path string) ([]string, error)
	// CountLines counts the number of lines in a file at the given path.
	CountLines(path string) (int, error)
	// Stat returns a FileInfo describing the named file, or an error.
	Stat(name string) (fs.FileInfo, error)
}
