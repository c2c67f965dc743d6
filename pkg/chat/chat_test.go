package chat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"medassist-be/pkg/embedding"
	"medassist-be/pkg/llm"
	"medassist-be/pkg/prompt"
	"medassist-be/pkg/vectorstore"

	"github.com/stretchr/testify/require"
)

// shared fakes for the package tests

type fakeStore struct {
	vectorstore.Service
	count      int64
	countCalls int
	matches    []vectorstore.Match
	lastFilter map[string]string
}

func (f *fakeStore) Count(ctx context.Context, collection string) (int64, error) {
	f.countCalls++
	return f.count, nil
}

func (f *fakeStore) Search(ctx context.Context, collection string, vector []float32, filter map[string]string, k int) ([]vectorstore.Match, error) {
	f.lastFilter = filter
	return f.matches, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Generate(text string, taskType string) (*embedding.Response, error) {
	return &embedding.Response{Embedding: embedding.ResponseEmbedding{Values: []float32{0.1, 0.2}}}, nil
}

// replyLLM answers every Generate call from a function.
type replyLLM struct {
	reply func(prompt string) (string, error)
}

func (r *replyLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	last := ""
	if len(history) > 0 {
		last = history[len(history)-1].Content
	}
	return r.reply(last)
}

func (r *replyLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return r.reply(prompt)
}

func testRegistry(t *testing.T) *prompt.Registry {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"system.txt":          "system {tools} {tool_names}",
		"query_transform.txt": "HISTORY:{history}\nQUERY:{query}",
		"qa.txt":              "QA|{context}|{query}",
		"refine.txt":          "REFINE|{existing_answer}|{context}|{query}",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	registry, err := prompt.Load(dir)
	require.NoError(t, err)
	return registry
}
