package llm

// ChatCompletionSchema describes the subset of a chat/completions response we rely on:
// at least one choice carrying a string message content.
func ChatCompletionSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"choices"},
		"properties": map[string]any{
			"choices": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":     "object",
					"required": []string{"message"},
					"properties": map[string]any{
						"message": map[string]any{
							"type":     "object",
							"required": []string{"content"},
							"properties": map[string]any{
								"content": map[string]any{"type": "string"},
							},
						},
					},
				},
			},
		},
	}
}
