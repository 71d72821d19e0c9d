// Package utils provides shared utility functions used across multiple packages.
package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// AppendPointer appends token to a JSON Pointer (RFC 6901), escaping the
// reserved characters.
// For example, AppendPointer("/properties", "a/b") becomes "/properties/a~1b".
func AppendPointer(ptr, token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	token = strings.ReplaceAll(token, "/", "~1")
	return ptr + "/" + token
}

// JSONPointerToPath converts a JSON Pointer (RFC 6901) to a dot-notation path.
// For example, "#/foo/bar/0/baz" becomes "foo.bar[0].baz".
// This is useful for converting JSON Schema validation error locations to
// human-readable paths.
func JSONPointerToPath(ptr string) string {
	if ptr == "" {
		return ""
	}
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	parts := strings.Split(ptr, "/")
	path := ""
	for _, part := range parts {
		// Unescape JSON Pointer reserved characters
		// ~1 represents /
		// ~0 represents ~
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		// Array indices are represented with brackets
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}

	return path
}
