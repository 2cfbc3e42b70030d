package cloudflare

import "strings"

const defaultImage = "docker.io/cloudflare/sandbox:latest"

// resolveImage applies Cloudflare's default sandbox image when the
// caller leaves Image empty (spec.md §4.4.2).
func resolveImage(hint string) string {
	if strings.TrimSpace(hint) == "" {
		return defaultImage
	}
	return hint
}
