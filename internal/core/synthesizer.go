// ABOUTME: Synthesizer renders the fixed answer prompt and calls the chat model once
// ABOUTME: The model reply is returned verbatim with no retries
package core

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
)

// ChatModel completes a prompt
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const answerPrompt = `You are an intelligent assistant. Your goal is to provide a comprehensive and accurate answer based on the user's question, the retrieved context from documents, and the ongoing chat history.

1. Synthesize information from both the "Vector Context" and "Graph Context".
2. Prioritize the most relevant details to form a coherent answer.
3. If the context does not contain the answer, state that the information is not available in the provided documents.
4. Incorporate the chat history to understand follow-up questions.

Chat History:
{{.History}}

Vector Context:
{{.VectorContext}}

Graph Context:
{{.GraphContext}}

Question:
{{.Question}}

Answer:
`

var answerTemplate = template.Must(template.New("answer").Parse(answerPrompt))

type promptData struct {
	History       string
	VectorContext string
	GraphContext  string
	Question      string
}

// Synthesizer turns fused context into an answer
type Synthesizer struct {
	model ChatModel
}

// NewSynthesizer creates a Synthesizer
func NewSynthesizer(model ChatModel) *Synthesizer {
	return &Synthesizer{model: model}
}

// BuildPrompt renders the answer prompt for fc
func BuildPrompt(fc *FusedContext) (string, error) {
	var buf bytes.Buffer
	err := answerTemplate.Execute(&buf, promptData{
		History:       fc.History,
		VectorContext: fc.Evidence.VectorContext(),
		GraphContext:  fc.Evidence.GraphContext(),
		Question:      fc.Question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

// Answer renders the prompt and makes one completion call
func (s *Synthesizer) Answer(ctx context.Context, fc *FusedContext) (string, error) {
	prompt, err := BuildPrompt(fc)
	if err != nil {
		return "", err
	}
	answer, err := s.model.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	return answer, nil
}
