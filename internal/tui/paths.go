package tui

import (
	"os"
	"strings"

	"github.com/mattn/go-shellwords"
)

// splitPaths splits a line of paths the way terminals paste dropped files:
// whitespace separated, with quotes or backslash escapes around names
// containing spaces. file:// prefixes are stripped. A line that does not
// parse (an unclosed quote) yields no paths.
func splitPaths(s string) []string {
	words, err := shellwords.Parse(s)
	if err != nil || len(words) == 0 {
		return nil
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, strings.TrimPrefix(w, "file://"))
	}
	return out
}

// looksLikePaths reports whether every entry of a paste names an existing
// file or directory, which is how a terminal file drop arrives.
func looksLikePaths(s string) ([]string, bool) {
	paths := splitPaths(s)
	if len(paths) == 0 {
		return nil, false
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return nil, false
		}
	}
	return paths, true
}
