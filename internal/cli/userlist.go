package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	fromPrefix = "from%3A"
	orSep      = "%20OR%20"
)

// ResolveUserList expands a --userlist value into a URL-encoded from:
// disjunction, e.g. "alice,bob" -> "from%3Aalice%20OR%20from%3Abob".
// list is read as a newline-delimited file when it names an existing path
// and split on commas otherwise. Order and duplicates are kept.
func ResolveUserList(list string) (string, error) {
	if list == "" {
		return "", nil
	}

	users := strings.Split(list, ",")
	if abs, err := filepath.Abs(list); err == nil {
		if _, statErr := os.Stat(abs); statErr == nil {
			data, readErr := os.ReadFile(abs)
			if readErr != nil {
				slog.Debug("userlist read failed", slog.String("path", abs), slog.Any("error", readErr))
				return "", invalid("Unable to read userlist: " + abs)
			}
			users = splitLines(data)
			slog.Debug("userlist loaded", slog.String("path", abs), slog.Int("users", len(users)))
		}
	}

	var b strings.Builder
	for _, u := range users {
		b.WriteString(orSep)
		b.WriteString(fromPrefix)
		b.WriteString(u)
	}
	return strings.TrimPrefix(b.String(), orSep), nil
}

// splitLines splits on \n and \r\n; a trailing newline adds no element.
func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	text := strings.TrimSuffix(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	return strings.Split(text, "\n")
}
