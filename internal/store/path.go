package store

import (
	"fmt"
	"strings"
)

// SplitPath splits a `/`-separated absolute path into an ordered sequence
// of non-empty components. Per the decision recorded for spec.md §9's open
// question: the path must be absolute (start with `/`); repeated separators
// collapse (so "//a" behaves like "/a"); the empty path is rejected.
func SplitPath(path string) ([]string, error) {
	if path == "" || path[0] != '/' {
		return nil, NewDriverErrorWithMessage(ErrNotFound, fmt.Sprintf("path %q is not absolute", path))
	}

	parts := strings.Split(path, "/")
	components := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			components = append(components, p)
		}
	}
	return components, nil
}

// SplitParentAndName splits a path into its parent directory path and its
// final component (the basename). The root itself has no parent and no
// name, so calling this with "/" returns an error.
func SplitParentAndName(path string) (parentPath string, name string, err error) {
	components, err := SplitPath(path)
	if err != nil {
		return "", "", err
	}
	if len(components) == 0 {
		return "", "", NewDriverErrorWithMessage(ErrNotFound, fmt.Sprintf("path %q has no basename", path))
	}

	name = components[len(components)-1]
	if len(components) == 1 {
		return "/", name, nil
	}
	return "/" + strings.Join(components[:len(components)-1], "/"), name, nil
}
