package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTarget struct {
	mu      sync.Mutex
	queries []string
	answers map[string]string
	err     error
}

func (r *recordingTarget) Query(ctx context.Context, query string) (string, error) {
	r.mu.Lock()
	r.queries = append(r.queries, query)
	r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	return r.answers[query], nil
}

func TestSubQuestion_SynthesisFollowsDecompositionOrder(t *testing.T) {
	provider := &replyLLM{reply: func(p string) (string, error) {
		if strings.HasPrefix(p, "HISTORY:") {
			return "1. first sub\n2. second sub", nil
		}
		// Synthesis sees the contexts through QA/refine prompts.
		return p, nil
	}}
	registry := testRegistry(t)
	target := &recordingTarget{answers: map[string]string{
		"first sub":  "alpha",
		"second sub": "beta",
	}}

	engine := NewSubQuestionEngine("records", "d", NewTransformer(provider, registry), NewSynthesizer(provider, registry), target, nil)

	answer, err := engine.Query(context.Background(), "composite question")
	require.NoError(t, err)

	// QA prompt carries the first sub-question's context, the refine
	// prompt the second, regardless of which goroutine finished first.
	assert.Contains(t, answer, "Sub-question: second sub\nAnswer: beta")
	assert.ElementsMatch(t, []string{"first sub", "second sub"}, target.queries)

	qaIdx := strings.Index(answer, "REFINE|QA|Sub-question: first sub")
	assert.GreaterOrEqual(t, qaIdx, 0)
}

func TestSubQuestion_TargetErrorPropagates(t *testing.T) {
	provider := &replyLLM{reply: func(p string) (string, error) {
		if strings.HasPrefix(p, "HISTORY:") {
			return "1. only sub", nil
		}
		return "synth", nil
	}}
	registry := testRegistry(t)
	target := &recordingTarget{err: errors.New("retrieval down")}

	engine := NewSubQuestionEngine("records", "d", NewTransformer(provider, registry), NewSynthesizer(provider, registry), target, nil)

	_, err := engine.Query(context.Background(), "q")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieval down")
}

func TestSubQuestion_NilTargetSynthesizesWithoutContexts(t *testing.T) {
	var sawPrompt string
	provider := &replyLLM{reply: func(p string) (string, error) {
		sawPrompt = p
		return "best effort", nil
	}}
	registry := testRegistry(t)

	engine := NewSubQuestionEngine("records", "d", NewTransformer(provider, registry), NewSynthesizer(provider, registry), nil, nil)

	answer, err := engine.Query(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, "best effort", answer)
	assert.True(t, strings.HasPrefix(sawPrompt, "QA||"))
}

func TestParseNumberedList(t *testing.T) {
	output := "Here are the sub-questions:\n1. What is the dose?\n2. [Any interactions?]\n\nnot numbered"

	subs := parseNumberedList(output)

	assert.Equal(t, []string{"What is the dose?", "Any interactions?"}, subs)
}
