package filtering

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// IFilter defines an interface for filtering elements.
type IFilter interface {
	IsElementIncludedInReport(name string) bool
	HasCustomFilters() bool
}

// DefaultFilter is the default implementation of IFilter.
type DefaultFilter struct {
	includeFilters []glob.Glob
	excludeFilters []glob.Glob
	hasCustom      bool
	osPathSep      bool
}

// NewDefaultFilter creates a new DefaultFilter from "+pattern" (include) and
// "-pattern" (exclude) entries. Empty entries are ignored.
// osIndependantPathSeparator is optional, defaults to false. When set, '/' and '\'
// match each other, which is what file filters need.
func NewDefaultFilter(filters []string, osIndependantPathSeparator ...bool) (IFilter, error) {
	osPathSep := false
	if len(osIndependantPathSeparator) > 0 {
		osPathSep = osIndependantPathSeparator[0]
	}

	df := &DefaultFilter{osPathSep: osPathSep}
	var errs []string

	for _, f := range filters {
		f = strings.TrimSpace(f)
		switch {
		case f == "":
			continue
		case strings.HasPrefix(f, "+"):
			g, err := createFilterGlob(f, osPathSep)
			if err != nil {
				errs = append(errs, fmt.Sprintf("invalid include filter '%s': %v", f, err))
				continue
			}
			df.includeFilters = append(df.includeFilters, g)
		case strings.HasPrefix(f, "-"):
			g, err := createFilterGlob(f, osPathSep)
			if err != nil {
				errs = append(errs, fmt.Sprintf("invalid exclude filter '%s': %v", f, err))
				continue
			}
			df.excludeFilters = append(df.excludeFilters, g)
		default:
			errs = append(errs, fmt.Sprintf("filter '%s' must start with '+' or '-'", f))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("error creating default filter: %s", strings.Join(errs, "; "))
	}

	df.hasCustom = len(df.includeFilters) > 0 || len(df.excludeFilters) > 0

	// If no include filters are specified, default to including everything.
	if len(df.includeFilters) == 0 {
		g, _ := createFilterGlob("+*", false)
		df.includeFilters = append(df.includeFilters, g)
	}

	return df, nil
}

// ParseFilterList splits a ';' or ',' separated filter option into its entries.
func ParseFilterList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })
}

// IsElementIncludedInReport checks if the given name matches the filter rules.
// Exclusions take precedence over inclusions.
func (df *DefaultFilter) IsElementIncludedInReport(name string) bool {
	name = df.normalize(name)
	for _, exclude := range df.excludeFilters {
		if exclude.Match(name) {
			return false
		}
	}

	for _, include := range df.includeFilters {
		if include.Match(name) {
			return true
		}
	}
	return false
}

// HasCustomFilters returns true if any include or exclude filters were specified.
func (df *DefaultFilter) HasCustomFilters() bool {
	return df.hasCustom
}

func (df *DefaultFilter) normalize(name string) string {
	name = strings.ToLower(name)
	if df.osPathSep {
		name = strings.ReplaceAll(name, `\`, "/")
	}
	return name
}

// createFilterGlob converts a filter string (e.g., "+MyNamespace.*") to a compiled
// case-insensitive glob. Only '*' and '?' keep their wildcard meaning.
func createFilterGlob(filter string, osIndependantPathSeparator bool) (glob.Glob, error) {
	if len(filter) < 2 {
		return nil, fmt.Errorf("empty filter pattern")
	}
	pattern := strings.ToLower(filter[1:])
	if osIndependantPathSeparator {
		pattern = strings.ReplaceAll(pattern, `\`, "/")
	}

	var b strings.Builder
	for _, r := range pattern {
		switch r {
		case '[', ']', '{', '}', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return glob.Compile(b.String())
}
