package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize_SingleContextUsesQAOnly(t *testing.T) {
	var prompts []string
	provider := &replyLLM{reply: func(p string) (string, error) {
		prompts = append(prompts, p)
		return "answer", nil
	}}
	synth := NewSynthesizer(provider, testRegistry(t))

	answer, err := synth.Synthesize(context.Background(), "q", []string{"ctx1"})

	require.NoError(t, err)
	assert.Equal(t, "answer", answer)
	require.Len(t, prompts, 1)
	assert.True(t, strings.HasPrefix(prompts[0], "QA|ctx1|q"))
}

func TestSynthesize_RefinesRemainingContexts(t *testing.T) {
	var prompts []string
	provider := &replyLLM{reply: func(p string) (string, error) {
		prompts = append(prompts, p)
		if strings.HasPrefix(p, "QA|") {
			return "draft", nil
		}
		return "refined", nil
	}}
	synth := NewSynthesizer(provider, testRegistry(t))

	answer, err := synth.Synthesize(context.Background(), "q", []string{"ctx1", "ctx2", "ctx3"})

	require.NoError(t, err)
	assert.Equal(t, "refined", answer)
	require.Len(t, prompts, 3)
	assert.Equal(t, "REFINE|draft|ctx2|q", prompts[1])
	assert.Equal(t, "REFINE|refined|ctx3|q", prompts[2])
}

func TestSynthesize_EmptyContexts(t *testing.T) {
	provider := &replyLLM{reply: func(p string) (string, error) {
		assert.True(t, strings.HasPrefix(p, "QA||"))
		return "insufficient information", nil
	}}
	synth := NewSynthesizer(provider, testRegistry(t))

	answer, err := synth.Synthesize(context.Background(), "q", nil)

	require.NoError(t, err)
	assert.Equal(t, "insufficient information", answer)
}
