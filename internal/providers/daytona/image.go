package daytona

import "strings"

const defaultImage = "daytonaio/workspace-project:latest"

// resolveImage accepts Daytona-native image references and plain Docker
// Hub tags interchangeably, applying the vendor default when empty
// (spec.md §4.4.2).
func resolveImage(hint string) string {
	if strings.TrimSpace(hint) == "" {
		return defaultImage
	}
	return hint
}
