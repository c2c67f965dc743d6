package chat

import (
	"context"
	"fmt"
	"strings"

	"medassist-be/pkg/llm"
	"medassist-be/pkg/prompt"
)

// Synthesizer turns retrieved context chunks into one answer. The first
// chunk goes through the QA template; each further chunk refines the
// running answer.
type Synthesizer struct {
	llm      llm.LLMProvider
	registry *prompt.Registry
}

func NewSynthesizer(provider llm.LLMProvider, registry *prompt.Registry) *Synthesizer {
	return &Synthesizer{
		llm:      provider,
		registry: registry,
	}
}

func (s *Synthesizer) Synthesize(ctx context.Context, query string, contexts []string) (string, error) {
	if len(contexts) == 0 {
		// No supporting context. Answer from the QA template anyway so
		// the model can state what information is missing.
		return s.answer(ctx, query, "")
	}

	answer, err := s.answer(ctx, query, contexts[0])
	if err != nil {
		return "", err
	}

	refinePrompt := s.registry.MustGet("refine")
	for _, context_ := range contexts[1:] {
		refined, err := s.llm.Generate(ctx, refinePrompt.Format(map[string]string{
			"query":           query,
			"existing_answer": answer,
			"context":         context_,
		}))
		if err != nil {
			return "", fmt.Errorf("refine step failed: %w", err)
		}
		answer = strings.TrimSpace(refined)
	}

	return answer, nil
}

func (s *Synthesizer) answer(ctx context.Context, query, context_ string) (string, error) {
	qaPrompt := s.registry.MustGet("qa")
	answer, err := s.llm.Generate(ctx, qaPrompt.Format(map[string]string{
		"query":   query,
		"context": context_,
	}))
	if err != nil {
		return "", fmt.Errorf("qa step failed: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
