package chat

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"medassist-be/pkg/llm"
	"medassist-be/pkg/prompt"
)

// historyWindowSize caps how much conversation history the transform
// prompt sees.
const historyWindowSize = 5

// Transformer decomposes a user question into standalone sub-questions
// using the query_transform template.
type Transformer struct {
	llm      llm.LLMProvider
	registry *prompt.Registry
}

func NewTransformer(provider llm.LLMProvider, registry *prompt.Registry) *Transformer {
	return &Transformer{
		llm:      provider,
		registry: registry,
	}
}

// Decompose returns the sub-questions in the order the model listed
// them. Unparseable output yields the original query as the single
// sub-question.
func (t *Transformer) Decompose(ctx context.Context, query string, history []llm.Message) ([]string, error) {
	windowed := HistoryWindow(history, historyWindowSize)
	lines := make([]string, 0, len(windowed))
	for _, msg := range windowed {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
	}

	formatted := t.registry.MustGet("query_transform").Format(map[string]string{
		"history": strings.Join(lines, "\n"),
		"query":   query,
	})

	output, err := t.llm.Generate(ctx, formatted)
	if err != nil {
		return nil, fmt.Errorf("query transform failed: %w", err)
	}

	subs := parseNumberedList(output)
	if len(subs) == 0 {
		subs = []string{query}
	}
	return subs, nil
}

// parseNumberedList extracts "1. question" style lines, tolerating
// bracketed items some models emit.
func parseNumberedList(output string) []string {
	var subs []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !unicode.IsDigit(rune(line[0])) {
			continue
		}

		parts := strings.SplitN(line, ".", 2)
		if len(parts) != 2 {
			continue
		}

		sub := strings.TrimSpace(parts[1])
		sub = strings.Trim(sub, "[]")
		if sub != "" {
			subs = append(subs, sub)
		}
	}
	return subs
}
