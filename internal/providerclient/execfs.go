package providerclient

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/boxed-run/sdk/internal/sandbox"
)

// EncodeArgv base64-wraps an argv slice into the single shell one-liner
// spec.md §4.4.4 describes for providers whose exec API takes a plain
// command string rather than argv: `sh -c 'echo ... | base64 -d | sh'`.
// Quoting and multi-byte payloads survive the round trip untouched.
func EncodeArgv(argv []string) string {
	joined := strings.Join(quoteAll(argv), " ")
	encoded := base64.StdEncoding.EncodeToString([]byte(joined))
	return fmt.Sprintf("echo %s | base64 -d | sh", encoded)
}

// EncodeArgvWithEnv is EncodeArgv plus a base64'd `export` preamble so
// environment variables survive the same transport without their own
// quoting hazards.
func EncodeArgvWithEnv(argv []string, env map[string]string) string {
	var preamble strings.Builder
	for k, v := range env {
		preamble.WriteString(fmt.Sprintf("export %s=%s\n", k, shellQuote(v)))
	}
	preamble.WriteString(strings.Join(quoteAll(argv), " "))
	encoded := base64.StdEncoding.EncodeToString([]byte(preamble.String()))
	return fmt.Sprintf("echo %s | base64 -d | sh", encoded)
}

func quoteAll(argv []string) []string {
	out := make([]string, len(argv))
	for i, a := range argv {
		out[i] = shellQuote(a)
	}
	return out
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// CatCommand returns the argv that reads a file's contents to stdout,
// used to implement Fs.ReadFile on providers without a native file API
// (spec.md §4.4.5).
func CatCommand(path string) []string { return []string{"cat", path} }

// WriteFileCommand base64-encodes content and decodes it into path via
// shell redirection, for binary-safe writes over a text-only exec API.
func WriteFileCommand(path string, content []byte) []string {
	encoded := base64.StdEncoding.EncodeToString(content)
	return []string{"sh", "-c", fmt.Sprintf("echo %s | base64 -d > %s", encoded, shellQuote(path))}
}

// MkdirCommand returns the argv for creating path and any missing
// parents.
func MkdirCommand(path string) []string { return []string{"mkdir", "-p", path} }

// RmCommand returns the argv for removing path with the requested flags.
func RmCommand(path string, recursive, force bool) []string {
	args := []string{"rm"}
	if recursive {
		args = append(args, "-r")
	}
	if force {
		args = append(args, "-f")
	}
	return append(args, path)
}

// ListDirCommand returns the argv for a long-format directory listing.
func ListDirCommand(path string) []string { return []string{"ls", "-la", path} }

// ParseLsLa parses `ls -la` output into FsEntry records, per spec.md
// §4.4.5: skip the leading "total N" line, split each remaining line on
// whitespace, the name is everything from the ninth field on (joined by
// single spaces), and the entry type is the first character of the
// permission string (`d` => directory). Lines with fewer than nine
// fields and the "." and ".." entries are skipped.
func ParseLsLa(basePath, output string) []*sandbox.FsEntry {
	var entries []*sandbox.FsEntry
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "total ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 9 {
			continue
		}
		name := strings.Join(fields[8:], " ")
		if name == "." || name == ".." {
			continue
		}
		entryType := sandbox.EntryFile
		if strings.HasPrefix(fields[0], "d") {
			entryType = sandbox.EntryDir
		}
		entries = append(entries, &sandbox.FsEntry{
			Path: strings.TrimRight(basePath, "/") + "/" + name,
			Type: entryType,
		})
	}
	return entries
}
