package utils

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Statter is the part of a file system abstraction needed to probe for files.
type Statter interface {
	Stat(name string) (fs.FileInfo, error)
}

// FindFileInSourceDirs attempts to locate a file, first checking if it's absolute,
// then searching through the provided source directories.
func FindFileInSourceDirs(relativePath string, sourceDirs []string, fsys Statter) (string, error) {
	if filepath.IsAbs(relativePath) {
		if _, err := fsys.Stat(relativePath); err == nil {
			return relativePath, nil
		}
		// A rooted path from another machine may still share a suffix with a source dir.
	}

	cleanedRelativePath := filepath.Clean(filepath.FromSlash(relativePath))

	for _, dir := range sourceDirs {
		absPath := filepath.Join(filepath.Clean(dir), cleanedRelativePath)
		if _, err := fsys.Stat(absPath); err == nil {
			return absPath, nil
		}

		// Try successively shorter suffixes of the path below the source dir,
		// similar to ReportGenerator's LocalFileReader.MapPath.
		pathParts := strings.Split(cleanedRelativePath, string(filepath.Separator))
		for i := 1; i < len(pathParts); i++ {
			potentialPath := filepath.Join(filepath.Clean(dir), filepath.Join(pathParts[i:]...))
			if _, err := fsys.Stat(potentialPath); err == nil {
				return potentialPath, nil
			}
		}
	}
	return "", fmt.Errorf("file %q not found in any source directory (%v) or as absolute path", relativePath, sourceDirs)
}
