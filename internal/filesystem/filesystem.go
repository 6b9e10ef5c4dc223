package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Filesystem is the read-only view of the host file system used for report file discovery.
type Filesystem interface {
	Stat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	Getwd() (string, error)
	Abs(path string) (string, error)
}

// DefaultFS implements the Filesystem interface using the standard `os` and `filepath` packages.
type DefaultFS struct{}

func (DefaultFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (DefaultFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

func (DefaultFS) Getwd() (string, error) {
	return os.Getwd()
}

func (DefaultFS) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// MemFS serves file discovery from an afero file system, usually an
// afero.NewMemMapFs in tests. Relative names resolve against Wd.
type MemFS struct {
	Fs afero.Fs
	Wd string
}

func (m MemFS) Stat(name string) (fs.FileInfo, error) {
	return m.Fs.Stat(filepath.FromSlash(name))
}

func (m MemFS) ReadDir(name string) ([]fs.DirEntry, error) {
	infos, err := afero.ReadDir(m.Fs, filepath.FromSlash(name))
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, 0, len(infos))
	for _, fi := range infos {
		entries = append(entries, fs.FileInfoToDirEntry(fi))
	}
	return entries, nil
}

func (m MemFS) Getwd() (string, error) {
	return m.Wd, nil
}

func (m MemFS) Abs(name string) (string, error) {
	if filepath.IsAbs(name) {
		return filepath.Clean(name), nil
	}
	return filepath.Join(m.Wd, name), nil
}
