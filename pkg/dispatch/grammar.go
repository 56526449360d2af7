package dispatch

import (
	"strings"
	"time"
	"unicode"

	"github.com/dlclark/regexp2"
)

// grammar is the allow-list every step must satisfy before dispatch.
var grammar = func() *regexp2.Regexp {
	re := regexp2.MustCompile(`^(?:ls|pwd|cpu|mem|ps)$|^(?:cd|mkdir|rm|cat|touch|move)(?:\s+.+)?$`,
		regexp2.IgnoreCase)
	re.MatchTimeout = time.Second
	return re
}()

// Allowed reports whether cmd satisfies the command grammar.
func Allowed(cmd string) bool {
	ok, err := grammar.MatchString(cmd)
	return err == nil && ok
}

// Parse splits a command into its lowercased verb and argument text.
func Parse(cmd string) (verb, arg string) {
	cmd = strings.TrimLeftFunc(cmd, unicode.IsSpace)
	idx := strings.IndexFunc(cmd, unicode.IsSpace)
	if idx < 0 {
		return strings.ToLower(cmd), ""
	}
	return strings.ToLower(cmd[:idx]), strings.TrimLeftFunc(cmd[idx:], unicode.IsSpace)
}

// SplitBatch splits text on the && conjunction, dropping blank segments.
func SplitBatch(text string) []string {
	var out []string
	for _, part := range strings.Split(text, Conjunction) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Reorder moves mkdir steps first and touch steps second, keeping the
// relative order inside each group.
func Reorder(cmds []string) []string {
	var mkdirs, touches, rest []string
	for _, c := range cmds {
		switch {
		case strings.HasPrefix(c, "mkdir"):
			mkdirs = append(mkdirs, c)
		case strings.HasPrefix(c, "touch"):
			touches = append(touches, c)
		default:
			rest = append(rest, c)
		}
	}
	out := make([]string, 0, len(cmds))
	out = append(out, mkdirs...)
	out = append(out, touches...)
	return append(out, rest...)
}

// splitMove separates a move argument into its source list and destination
// at the first run of whitespace.
func splitMove(arg string) (src, dest string, ok bool) {
	arg = strings.TrimSpace(arg)
	idx := strings.IndexFunc(arg, unicode.IsSpace)
	if idx < 0 {
		return "", "", false
	}
	return arg[:idx], strings.TrimSpace(arg[idx:]), true
}
