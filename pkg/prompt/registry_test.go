package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePrompts(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
		require.NoError(t, err)
	}
	return dir
}

func TestLoad_MissingRequiredTemplate(t *testing.T) {
	dir := writePrompts(t, map[string]string{
		"system.txt": "You answer in {language}.",
	})

	_, err := Load(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "query_transform")
}

func TestFormat_DefaultsAndOverrides(t *testing.T) {
	dir := writePrompts(t, map[string]string{
		"system.txt":          "Answer in {language} about {specialties} using {data_sources}.",
		"query_transform.txt": "Question: {query}",
		"qa.txt":              "{context}\n{query}",
		"refine.txt":          "{existing_answer}\n{context}\n{query}",
	})

	registry, err := Load(dir)
	require.NoError(t, err)

	formatted := registry.MustGet("system").Format(nil)
	assert.Contains(t, formatted, "English")
	assert.Contains(t, formatted, "PubMed")

	formatted = registry.MustGet("system").Format(map[string]string{"language": "Spanish"})
	assert.Contains(t, formatted, "Spanish")
	assert.NotContains(t, formatted, "{language}")
}

func TestFormat_PlainParams(t *testing.T) {
	dir := writePrompts(t, map[string]string{
		"system.txt":          "s",
		"query_transform.txt": "History:\n{history}\n\nQuestion: {query}",
		"qa.txt":              "q",
		"refine.txt":          "r",
	})

	registry, err := Load(dir)
	require.NoError(t, err)

	formatted := registry.MustGet("query_transform").Format(map[string]string{
		"history": "user: hi",
		"query":   "what is hypertension?",
	})

	assert.Equal(t, "History:\nuser: hi\n\nQuestion: what is hypertension?", formatted)
}
