package assistant

func NewAssistantInput(instructions, prompt string, schema *JSONSchema) AssistantInput {
	return AssistantInput{
		Instructions: instructions,
		Prompt:       prompt,
		Schema:       schema,
	}
}
