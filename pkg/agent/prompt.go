package agent

import "fmt"

const promptTemplate = "Convert the user's natural language into a terminal command: " +
	"ls, pwd, cd <dir>, mkdir <dir>, touch <file>, rm <target>, move <file> <folder>, cpu, mem, ps, cat <file>. " +
	"Handle multiple commands separated by 'and'. Remove filler words: the, a, an, called, named, is. " +
	"User input: %s\nOutput command:"

// BuildPrompt wraps text in the instruction shared by every provider.
func BuildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}
