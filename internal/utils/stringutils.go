package utils

import (
	"regexp"
	"strings"
)

var invalidPathCharsRegex = regexp.MustCompile(`[^\w\.\-]+`)

// SplitThatEnsuresGlobsAreSafe splits s by any of the separators, except inside
// brace groups like {a;b}. Parts are trimmed and empty parts dropped.
func SplitThatEnsuresGlobsAreSafe(s string, separators []rune) []string {
	parts := []string{}
	var current strings.Builder
	depth := 0

	flush := func() {
		if part := strings.TrimSpace(current.String()); part != "" {
			parts = append(parts, part)
		}
		current.Reset()
	}

	for _, r := range s {
		switch {
		case r == '{':
			depth++
		case r == '}' && depth > 0:
			depth--
		case depth == 0 && strings.ContainsRune(string(separators), r):
			flush()
			continue
		}
		current.WriteRune(r)
	}
	flush()
	return parts
}

// ReplaceInvalidPathChars replaces characters in a path that are not word characters, dots, or hyphens with an underscore.
func ReplaceInvalidPathChars(path string) string {
	return invalidPathCharsRegex.ReplaceAllString(path, "_")
}

// GetShortMethodName shortens a method signature for display:
// "Add(int, int)" becomes "Add(...)", "Run()" and "Run" stay as they are.
func GetShortMethodName(fullName string) string {
	open := strings.Index(fullName, "(")
	if open <= 0 {
		return fullName
	}
	closing := strings.Index(fullName[open:], ")")
	if closing == -1 {
		return fullName
	}
	if closing > 1 {
		return fullName[:open] + "(...)"
	}
	return fullName[:open] + "()"
}

// DistinctBy returns the elements of items with a unique key, keeping the first occurrence.
func DistinctBy[T any, K comparable](items []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(items))
	result := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, item)
	}
	return result
}
