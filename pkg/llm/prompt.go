package llm

import "strings"

const promptTemplate = `You are a helpful assistant that answers questions based on the provided context.

Context:
{context}

Question: {question}

Please provide a comprehensive answer based on the context above. If the context doesn't contain relevant information, please say so.`

// BuildPrompt wraps question in the grounding template. With no context the
// question is sent as-is.
func BuildPrompt(context, question string) string {
	if context == "" {
		return question
	}
	return strings.NewReplacer("{context}", context, "{question}", question).Replace(promptTemplate)
}
