package form

import (
	"errors"
	"fmt"
	"strings"
)

var errEmptyPath = errors.New("field path is empty")

// ValidatePath checks that path is a non-empty dotted path without empty
// segments.
func ValidatePath(path string) error {
	if path == "" {
		return errEmptyPath
	}
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return fmt.Errorf("field path %q has an empty segment", path)
		}
	}
	return nil
}

// Join builds a dotted path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, ".")
}

// covers reports whether path equals prefix or lies below it.
func covers(prefix, path string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+".")
}
