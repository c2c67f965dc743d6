package chat

import (
	"context"
	"fmt"
	"sync"

	"medassist-be/pkg/llm"
)

// SubQuestionEngine decomposes an incoming question, answers each
// sub-question against its target engine concurrently, and synthesizes
// one answer from the results in decomposition order.
//
// It doubles as an agent tool so the reasoning loop can invoke it by
// name.
type SubQuestionEngine struct {
	name        string
	description string
	transformer *Transformer
	synth       *Synthesizer
	target      QueryEngine
	history     []llm.Message
}

func NewSubQuestionEngine(name, description string, transformer *Transformer, synth *Synthesizer, target QueryEngine, history []llm.Message) *SubQuestionEngine {
	return &SubQuestionEngine{
		name:        name,
		description: description,
		transformer: transformer,
		synth:       synth,
		target:      target,
		history:     history,
	}
}

func (e *SubQuestionEngine) Name() string {
	return e.name
}

func (e *SubQuestionEngine) Description() string {
	return e.description
}

func (e *SubQuestionEngine) Invoke(ctx context.Context, input string) (string, error) {
	return e.Query(ctx, input)
}

func (e *SubQuestionEngine) Query(ctx context.Context, query string) (string, error) {
	// No retrieval target means no source to query; synthesize a
	// best-effort answer so the agent gets a usable observation.
	if e.target == nil {
		return e.synth.Synthesize(ctx, query, nil)
	}

	subs, err := e.transformer.Decompose(ctx, query, e.history)
	if err != nil {
		return "", err
	}

	answers := make([]string, len(subs))
	errs := make([]error, len(subs))

	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, sub string) {
			defer wg.Done()
			answers[i], errs[i] = e.target.Query(ctx, sub)
		}(i, sub)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return "", fmt.Errorf("sub-question failed: %w", err)
		}
	}

	contexts := make([]string, len(subs))
	for i, sub := range subs {
		contexts[i] = fmt.Sprintf("Sub-question: %s\nAnswer: %s", sub, answers[i])
	}

	return e.synth.Synthesize(ctx, query, contexts)
}
