package docker

import "strings"

// defaultImage is used when CreateOptions.Image is empty — Docker
// accepts any Docker Hub reference directly, so resolveImage only needs
// to fill in a sane default and leave everything else untouched
// (spec.md §4.4.2).
const defaultImage = "python:3.12-slim"

// resolveImage maps a user-supplied image hint to a concrete Docker
// reference. Docker-native images need no translation; this mainly
// exists to apply the documented default and to normalize the handful
// of short template aliases the teacher's HTTP handler used to hardcode.
func resolveImage(hint string) string {
	switch hint {
	case "":
		return defaultImage
	case "python-data-science":
		return "boxed-python:3.9"
	default:
		if strings.Contains(hint, ":") || strings.Contains(hint, "/") {
			return hint
		}
		return hint + ":latest"
	}
}
