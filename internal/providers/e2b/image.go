package e2b

import "strings"

// defaultImage mirrors E2B's own default "base" template.
const defaultImage = "base"

// resolveImage accepts both E2B's named templates ("base", "code-interpreter-v1")
// and plain Docker image references, applying the vendor default when
// the hint is empty (spec.md §4.4.2).
func resolveImage(hint string) string {
	if strings.TrimSpace(hint) == "" {
		return defaultImage
	}
	return hint
}
