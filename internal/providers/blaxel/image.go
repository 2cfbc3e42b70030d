package blaxel

import "strings"

const defaultImage = "blaxel/base:latest"

// resolveImage applies Blaxel's base image when the caller leaves Image
// empty (spec.md §4.4.2).
func resolveImage(hint string) string {
	if strings.TrimSpace(hint) == "" {
		return defaultImage
	}
	return hint
}
