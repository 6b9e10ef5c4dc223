package cobertura

import "io/fs"

// FileReader defines an interface for reading source files. This abstraction
// allows the parsing logic to be unit-tested without hitting the file system.
type FileReader interface {
	// ReadFile reads all lines from a file at the given path.
	ReadFile(path string) ([]string, error)
	// CountLines counts the number of lines in a file at the given path.
	CountLines(path string) (int, error)
	// Stat returns a FileInfo describing the named file, or an error.
	Stat(name string) (fs.FileInfo, error)
}
