// Package glob expands report file patterns against a file system.
//
// Supported syntax (case-insensitive):
//   - `?`: any single character in a file or directory name.
//   - `*`: zero or more characters in a file or directory name.
//   - `**`: zero or more directories.
//   - `[...]`: a character class, e.g. `[abc]` or `[a-z]`.
//   - `{a,b}`: any of the comma separated alternatives.
package glob

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	gobwas "github.com/gobwas/glob"

	"github.com/IgorBayerl/covreport/internal/filesystem"
)

const globCharacters = "*?[]{}"

// Glob holds a pattern and the file system it is expanded against.
type Glob struct {
	Pattern string
	fs      filesystem.Filesystem
}

// NewGlob creates a Glob for pattern. A nil fsys uses the host file system.
func NewGlob(pattern string, fsys filesystem.Filesystem) *Glob {
	if fsys == nil {
		fsys = filesystem.DefaultFS{}
	}
	return &Glob{Pattern: pattern, fs: fsys}
}

// GetFiles expands pattern on the host file system.
func GetFiles(pattern string) ([]string, error) {
	return NewGlob(pattern, nil).ExpandNames()
}

// ExpandNames returns the absolute paths of all regular files matching the pattern, sorted.
// A pattern without wildcards yields the file itself if it exists.
func (g *Glob) ExpandNames() ([]string, error) {
	pattern := strings.TrimSpace(g.Pattern)
	if pattern == "" {
		return nil, fmt.Errorf("empty pattern")
	}

	absPattern, err := g.fs.Abs(pattern)
	if err != nil {
		return nil, fmt.Errorf("resolving pattern %q: %w", pattern, err)
	}
	absPattern = filepath.ToSlash(absPattern)

	if !strings.ContainsAny(absPattern, globCharacters) {
		info, err := g.fs.Stat(filepath.FromSlash(absPattern))
		if err != nil || info.IsDir() {
			return []string{}, nil
		}
		return []string{filepath.FromSlash(absPattern)}, nil
	}

	base, rest := splitBase(absPattern)
	matchers, err := compile(absPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	maxDepth := strings.Count(rest, "/") + 1
	if strings.Contains(rest, "**") {
		maxDepth = -1
	}

	var files []string
	if err := g.walk(base, 1, maxDepth, func(p string) {
		lower := strings.ToLower(p)
		for _, m := range matchers {
			if m.Match(lower) {
				files = append(files, filepath.FromSlash(p))
				return
			}
		}
	}); err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (g *Glob) walk(dir string, depth, maxDepth int, visit func(string)) error {
	entries, err := g.fs.ReadDir(filepath.FromSlash(dir))
	if err != nil {
		if depth == 1 {
			// The fixed part of the pattern does not exist: nothing matches.
			return nil
		}
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}
	for _, e := range entries {
		p := path.Join(dir, e.Name())
		if e.IsDir() {
			if maxDepth < 0 || depth < maxDepth {
				if err := g.walk(p, depth+1, maxDepth, visit); err != nil {
					return err
				}
			}
			continue
		}
		if e.Type()&fs.ModeType == 0 {
			visit(p)
		}
	}
	return nil
}

// splitBase splits a slash separated absolute pattern into the directory prefix
// without wildcards and the remainder.
func splitBase(pattern string) (string, string) {
	segments := strings.Split(pattern, "/")
	i := 0
	for i < len(segments)-1 && !strings.ContainsAny(segments[i], globCharacters) {
		i++
	}
	base := strings.Join(segments[:i], "/")
	if base == "" {
		base = "/"
	}
	return base, strings.Join(segments[i:], "/")
}

// compile builds the matchers for pattern. "a/**/b" must also match "a/b",
// so a variant with the empty directory sequence is compiled as well.
func compile(pattern string) ([]gobwas.Glob, error) {
	lower := strings.ToLower(pattern)
	variants := []string{lower}
	if collapsed := strings.ReplaceAll(lower, "/**/", "/"); collapsed != lower {
		variants = append(variants, collapsed)
	}
	matchers := make([]gobwas.Glob, 0, len(variants))
	for _, v := range variants {
		m, err := gobwas.Compile(v, '/')
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}
