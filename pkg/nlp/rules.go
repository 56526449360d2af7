package nlp

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

const matchTimeout = time.Second

// state is threaded through the clauses of one translation.
type state struct {
	lastCreated string
}

// rule inspects one clause. matched stops the cascade for that clause even
// when no command is produced.
type rule struct {
	name  string
	apply func(clause string, st *state) (cmds []string, matched bool)
}

// cascade is evaluated in order; the first matching rule wins.
var cascade = []rule{
	{name: "move", apply: applyMove},
	{name: "create-folder", apply: applyCreateFolder},
	{name: "create-file", apply: applyCreateFile},
	{name: "delete", apply: applyDelete},
	{name: "change-directory", apply: applyChangeDir},
	{name: "read", apply: applyRead},
	{name: "keyword", apply: applyKeywords},
}

var (
	moveRe = compile(`\b(?:move|transfer)\s+` +
		`([\w.\-]+(?:\s*,\s*[\w.\-]+)*)\s+` +
		`(?:into|to|inside)\s+([\w\-]+)`)

	// The (?!.*\bfile\b) lookahead hands any clause mentioning "file" after
	// the verb to the file rule, even when the word is unrelated to the target.
	createFolderRe = compile(`\b(?:create|make|add|new|generate|build|initiate)\s+` +
		`(?:(?:the|a|an|my|please|recently|new)\b\s*)*` +
		`(?:(?:folders?|directory|directories|dirs?|subfolders?|file\s*containers?)\b)?\s*` +
		`(?:(?:called|named|as|is)\b)?\s*` +
		`(?!.*\bfile\b)` +
		`([\w\-\s,]+)`)

	createFileRe = compile(`\b(?:create|add|make|new|generate|build|initiate)\s+` +
		`(?:(?:the|a|an|my|please|recently|new)\b\s*)*` +
		`(?:(?:files?|documents?|texts?)\b\s*)*` +
		`(?:(?:called|named|as|is)\b)?\s*` +
		`(\w[\w.\-]*(?:\s*,\s*[\w.\-]+)*)`)

	deleteRe = compile(`\b(?:delete|remove|rm|erase|discard|clear|terminate)\s+` +
		`(?:(?:the|my|recent)\b\s*)*` +
		`(?:(?:folders?|directory|directories|dirs?|files?|subfolders?)\b)?\s*` +
		`(?:(?:called|named|as|is)\b)?\s*` +
		`([\w.\-]+(?:\s*,\s*[\w.\-]+)*)`)

	changeDirRe = compile(`\b(?:go to|cd to|change directory to|enter|open)\s+` +
		`(?:(?:the|a|an|my)\b\s*)*` +
		`(?:new\s+)?` +
		`(?:(?:folder|directory|dir|subfolder)\b)?\s*` +
		`(?:(?:called|named|as|is)\b)?\s*` +
		`([\w\-/.]+|/)`)

	readRe = compile(`\b(?:read|open|cat|show content of|display)\s+` +
		`(?:(?:the|a|an|my)\b\s*)*` +
		`(?:new\s+)?` +
		`(?:(?:file|document|text)\b)?\s*` +
		`(?:(?:called|named|as|is)\b)?\s*` +
		`([\w.\-]+)`)

	clauseSplitRe = compile(`\s+and\s+`)
)

var (
	pronouns = map[string]bool{"it": true, "this": true, "that": true}

	folderNoise = map[string]bool{
		"folder": true, "folders": true, "directory": true, "directories": true,
		"dir": true, "dirs": true, "subfolder": true, "subfolders": true,
		"file": true, "container": true, "containers": true,
	}

	fileNoise = map[string]bool{
		"file": true, "files": true, "document": true, "documents": true,
		"text": true, "texts": true,
	}
)

// keywordCategories are scanned in order; at most one command per clause.
var keywordCategories = []struct {
	command  string
	keywords []string
}{
	{"ls", []string{"list", "show files", "show folders", "ls", "show all files", "show all folders", "show"}},
	{"pwd", []string{"where am i", "current directory", "current path", "path", "pwd"}},
	{"cpu", []string{"cpu"}},
	{"mem", []string{"mem", "ram"}},
	{"ps", []string{"process", "ps"}},
}

func compile(expr string) *regexp2.Regexp {
	re := regexp2.MustCompile(expr, regexp2.IgnoreCase)
	re.MatchTimeout = matchTimeout
	return re
}

// group returns the numbered groups of the first match of re in s.
func group(re *regexp2.Regexp, s string) ([]string, bool) {
	m, err := re.FindStringMatch(s)
	if err != nil || m == nil {
		return nil, false
	}
	groups := m.Groups()
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.String()
	}
	return out, true
}

func splitClauses(text string) []string {
	var clauses []string
	start := 0
	m, _ := clauseSplitRe.FindStringMatch(text)
	for m != nil {
		clauses = append(clauses, strings.TrimSpace(text[start:m.Index]))
		start = m.Index + m.Length
		m, _ = clauseSplitRe.FindNextMatch(m)
	}
	return append(clauses, strings.TrimSpace(text[start:]))
}

func splitNames(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func withoutNoise(names []string, noise map[string]bool) []string {
	out := names[:0]
	for _, n := range names {
		if n != "" && !noise[strings.ToLower(n)] {
			out = append(out, n)
		}
	}
	return out
}

func applyMove(clause string, st *state) ([]string, bool) {
	g, ok := group(moveRe, clause)
	if !ok {
		return nil, false
	}
	dest := g[2]
	var cmds []string
	for _, src := range strings.Split(g[1], ",") {
		src = strings.TrimSpace(src)
		if pronouns[strings.ToLower(src)] && st.lastCreated != "" {
			src = st.lastCreated
		}
		cmds = append(cmds, "move "+src+" "+dest)
	}
	return cmds, true
}

func applyCreateFolder(clause string, st *state) ([]string, bool) {
	return applyCreate(createFolderRe, folderNoise, "mkdir", clause, st)
}

func applyCreateFile(clause string, st *state) ([]string, bool) {
	return applyCreate(createFileRe, fileNoise, "touch", clause, st)
}

func applyCreate(re *regexp2.Regexp, noise map[string]bool, verb, clause string, st *state) ([]string, bool) {
	g, ok := group(re, clause)
	if !ok {
		return nil, false
	}
	names := withoutNoise(splitNames(g[1]), noise)
	if len(names) == 0 {
		return nil, true
	}
	st.lastCreated = names[len(names)-1]
	return []string{verb + " " + strings.Join(names, " ")}, true
}

func applyDelete(clause string, _ *state) ([]string, bool) {
	g, ok := group(deleteRe, clause)
	if !ok {
		return nil, false
	}
	parts := strings.Split(g[1], ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return []string{"rm " + strings.Join(parts, " ")}, true
}

func applyChangeDir(clause string, _ *state) ([]string, bool) {
	g, ok := group(changeDirRe, clause)
	if !ok {
		return nil, false
	}
	return []string{"cd " + g[1]}, true
}

func applyRead(clause string, _ *state) ([]string, bool) {
	g, ok := group(readRe, clause)
	if !ok {
		return nil, false
	}
	return []string{"cat " + g[1]}, true
}

func applyKeywords(clause string, _ *state) ([]string, bool) {
	for _, cat := range keywordCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(clause, kw) {
				return []string{cat.command}, true
			}
		}
	}
	return nil, false
}
