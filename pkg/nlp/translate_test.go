package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"create a folder called reports and move it to archive", "mkdir reports && move reports archive"},
		{"delete the files a.txt, b.txt", "rm a.txt b.txt"},
		{"show files", "ls"},
		{"Make folders alpha, beta and create file notes.txt", "mkdir alpha beta && touch notes.txt"},
		{"create file report.txt and move it into docs", "touch report.txt && move report.txt docs"},
		{"transfer a.txt, b.txt into backup", "move a.txt backup && move b.txt backup"},
		{"move it to archive", "move it archive"},
		{"create directory src", "mkdir src"},
		{"create apple", "mkdir apple"},
		{"create a new text file named todo.md", "touch todo.md"},
		{"go to the folder docs", "cd docs"},
		{"go to ..", "cd .."},
		{"open the directory called src", "cd src"},
		{"read notes.txt", "cat notes.txt"},
		{"display the file notes.txt", "cat notes.txt"},
		{"where am i", "pwd"},
		{"cpu usage please", "cpu"},
		{"how much ram", "mem"},
		{"list processes", "ls"},
		{"running processes", "ps"},
		{"  LIST  ", "ls"},
	}
	for _, c := range cases {
		got, ok := Translate(c.in)
		assert.True(t, ok, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestTranslateNoMatch(t *testing.T) {
	for _, in := range []string{"", "   ", "banana", "hello world"} {
		got, ok := Translate(in)
		assert.False(t, ok, in)
		assert.Empty(t, got, in)
	}
}

func TestFolderRuleYieldsToFileMention(t *testing.T) {
	// Any later mention of "file" hands the clause to the file rule.
	got, ok := Translate("create folder docs for my file")
	assert.True(t, ok)
	assert.Equal(t, "touch folder", got)
}

func TestCreateRuleWithOnlyNounsEmitsNothing(t *testing.T) {
	got, ok := Translate("create folder and list")
	assert.True(t, ok)
	assert.Equal(t, "ls", got)
}

func TestSplitClauses(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitClauses("a and b  and\tc"))
	assert.Equal(t, []string{"sandbox"}, splitClauses("sandbox"))
	assert.Equal(t, []string{"brand new"}, splitClauses("brand new"))
}

func TestRulesIndependently(t *testing.T) {
	st := &state{}
	cmds, ok := applyCreateFolder("make dirs x, y z", st)
	assert.True(t, ok)
	assert.Equal(t, []string{"mkdir x y z"}, cmds)
	assert.Equal(t, "z", st.lastCreated)

	cmds, ok = applyMove("move this, that to out", st)
	assert.True(t, ok)
	assert.Equal(t, []string{"move z out", "move z out"}, cmds)

	_, ok = applyDelete("create folder x", st)
	assert.False(t, ok)

	cmds, ok = applyKeywords("show me the current path", st)
	assert.True(t, ok)
	assert.Equal(t, []string{"ls"}, cmds)

	_, ok = applyKeywords("banana", st)
	assert.False(t, ok)
}

func TestStripFillers(t *testing.T) {
	assert.Equal(t, "mkdir reports", StripFillers("mkdir the  new called reports"))
	assert.Equal(t, "touch a.txt an.md", StripFillers("touch A a.txt an.md"))
	assert.Equal(t, "ls && pwd", StripFillers("  ls  &&   pwd "))
	assert.Equal(t, "", StripFillers("The Please Named"))
}
