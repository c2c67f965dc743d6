package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"medassist-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM returns canned outputs in order, one per Chat call.
type scriptedLLM struct {
	outputs []string
	calls   int
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if s.calls >= len(s.outputs) {
		return "", errors.New("script exhausted")
	}
	out := s.outputs[s.calls]
	s.calls++
	return out, nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

// streamingScriptedLLM additionally streams each output rune by rune.
type streamingScriptedLLM struct {
	scriptedLLM
}

func (s *streamingScriptedLLM) StreamChat(ctx context.Context, history []llm.Message, options ...llm.Option) (<-chan string, <-chan error) {
	tokens := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(tokens)
		defer close(errs)

		out, err := s.Chat(ctx, history, options...)
		if err != nil {
			errs <- err
			return
		}
		for _, r := range out {
			tokens <- string(r)
		}
	}()

	return tokens, errs
}

type fakeTool struct {
	name        string
	observation string
	gotInput    string
	err         error
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "fake tool" }
func (f *fakeTool) Invoke(ctx context.Context, input string) (string, error) {
	f.gotInput = input
	return f.observation, f.err
}

func TestAgent_Chat_ToolThenAnswer(t *testing.T) {
	tool := &fakeTool{name: "pubmed_engine", observation: "Article 1: ..."}
	provider := &scriptedLLM{outputs: []string{
		"Thought: search first\nAction: pubmed_engine\nAction Input: aspirin",
		"Thought: done\nFinal Answer: Aspirin inhibits platelet aggregation.",
	}}
	a := New(provider, "system", []Tool{tool})

	result, err := a.Chat(context.Background(), []llm.Message{{Role: "user", Content: "aspirin?"}})

	require.NoError(t, err)
	assert.Equal(t, "Aspirin inhibits platelet aggregation.", result.Answer)
	assert.Equal(t, "aspirin", tool.gotInput)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, "pubmed_engine", result.Steps[0].Tool)
	assert.Equal(t, "Article 1: ...", result.Steps[0].Observation)
}

func TestAgent_Chat_UnknownToolBecomesObservation(t *testing.T) {
	provider := &scriptedLLM{outputs: []string{
		"Action: nonexistent\nAction Input: x",
		"Final Answer: recovered",
	}}
	a := New(provider, "system", nil)

	result, err := a.Chat(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Answer)
	require.Len(t, result.Steps, 1)
	assert.Contains(t, result.Steps[0].Observation, "Unknown tool")
}

func TestAgent_Chat_StepLimit(t *testing.T) {
	tool := &fakeTool{name: "loop_tool", observation: "again"}
	outputs := make([]string, MaxSteps+1)
	for i := range outputs {
		outputs[i] = "Action: loop_tool\nAction Input: x"
	}
	provider := &scriptedLLM{outputs: outputs}
	a := New(provider, "system", []Tool{tool})

	_, err := a.Chat(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("%d steps", MaxSteps))
	assert.Equal(t, MaxSteps, provider.calls)
}

func TestAgent_StreamChat_OnlyFinalAnswerTokens(t *testing.T) {
	tool := &fakeTool{name: "pubmed_engine", observation: "obs"}
	provider := &streamingScriptedLLM{scriptedLLM{outputs: []string{
		"Thought: look it up\nAction: pubmed_engine\nAction Input: q",
		"Thought: done\nFinal Answer: Streamed reply.",
	}}}
	a := New(provider, "system", []Tool{tool})

	tokens, errs := a.StreamChat(context.Background(), nil)

	var sb strings.Builder
	for token := range tokens {
		sb.WriteString(token)
	}
	require.NoError(t, <-errs)

	assert.Equal(t, "Streamed reply.", sb.String())
	assert.NotContains(t, sb.String(), "Thought")
	assert.NotContains(t, sb.String(), "pubmed_engine")
}

func TestAgent_StreamChat_FallbackWithoutStreamingProvider(t *testing.T) {
	provider := &scriptedLLM{outputs: []string{"Final Answer: whole chunk"}}
	a := New(provider, "system", nil)

	tokens, errs := a.StreamChat(context.Background(), nil)

	var collected []string
	for token := range tokens {
		collected = append(collected, token)
	}
	require.NoError(t, <-errs)
	assert.Equal(t, []string{"whole chunk"}, collected)
}
