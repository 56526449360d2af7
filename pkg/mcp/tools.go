package mcp

// Tool names exposed through tools/list and tools/call.
const (
	ToolExec      = "exec"
	ToolTranslate = "translate"
)

// ToolDescriptors describes the callable tools.
func ToolDescriptors() []Tool {
	return []Tool{
		{
			Name:        ToolExec,
			Description: "Run shell commands (ls, pwd, cd, mkdir, touch, rm, cat, move, cpu, mem, ps) joined by &&, or natural language prefixed with \"ai \".",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cmd": map[string]any{"type": "string", "description": "Command batch"},
				},
				"required": []string{"cmd"},
			},
		},
		{
			Name:        ToolTranslate,
			Description: "Translate a natural-language request into shell commands without running them.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{"type": "string", "description": "Natural-language request"},
				},
				"required": []string{"text"},
			},
		},
	}
}
