package vercel

import "strings"

const defaultImage = "vercel/sandbox-node22"

// resolveImage applies Vercel's default runtime image when the caller
// leaves Image empty (spec.md §4.4.2).
func resolveImage(hint string) string {
	if strings.TrimSpace(hint) == "" {
		return defaultImage
	}
	return hint
}
