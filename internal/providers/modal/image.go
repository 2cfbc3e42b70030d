package modal

import "strings"

// defaultImage is used when CreateOptions.Image is empty.
const defaultImage = "python:3.12-slim"

// resolveImage accepts both plain Docker Hub references and Modal's
// "registry/repo:tag" shorthand verbatim; only the empty-hint default
// needs adapter-specific handling (spec.md §4.4.2).
func resolveImage(hint string) string {
	if strings.TrimSpace(hint) == "" {
		return defaultImage
	}
	return hint
}
