package nlp

import (
	"strings"
)

// Conjunction joins canonical commands in a batch.
const Conjunction = "&&"

// Translate maps a natural-language sentence onto canonical commands joined by
// " && ". Clauses are separated by the word "and"; a pronoun (it, this, that)
// in a move clause refers to the last name created by an earlier clause.
// It reports false when no rule produced a command.
func Translate(text string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return "", false
	}

	st := &state{}
	var commands []string
	for _, clause := range splitClauses(t) {
		for _, r := range cascade {
			cmds, matched := r.apply(clause, st)
			if matched {
				commands = append(commands, cmds...)
				break
			}
		}
	}
	if len(commands) == 0 {
		return "", false
	}
	return strings.Join(commands, " "+Conjunction+" "), true
}

var fillers = map[string]bool{
	"the": true, "a": true, "an": true, "new": true, "please": true,
	"recently": true, "is": true, "called": true, "named": true,
}

// StripFillers drops filler words and collapses whitespace. Words are whole
// whitespace-separated tokens, so names such as "a.txt" survive.
func StripFillers(text string) string {
	fields := strings.Fields(text)
	out := fields[:0]
	for _, f := range fields {
		if fillers[strings.ToLower(f)] {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}
