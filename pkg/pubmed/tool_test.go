package pubmed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeEutils(t *testing.T, ids string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "esearch"):
			w.Write([]byte(`{"esearchresult": {"idlist": [` + ids + `]}}`))
		case strings.Contains(r.URL.Path, "esummary"):
			w.Write([]byte(`{"result": {"123": {"title": "Aspirin and stroke prevention", "fulljournalname": "The Lancet"}}}`))
		case strings.Contains(r.URL.Path, "efetch"):
			w.Write([]byte(strings.Repeat("Aspirin reduces recurrent stroke risk. ", 10)))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestQuery_FormatsArticles(t *testing.T) {
	server := newFakeEutils(t, `"123"`)
	defer server.Close()

	tool := NewTool(NewClient(server.URL, 3), nil, 0)

	result, err := tool.Query(context.Background(), "aspirin stroke")

	require.NoError(t, err)
	assert.Contains(t, result, "Article 1:")
	assert.Contains(t, result, "Title: Aspirin and stroke prevention")
	assert.Contains(t, result, "Journal: The Lancet")
	assert.Contains(t, result, "URL: https://pubmed.ncbi.nlm.nih.gov/123/")
	assert.Contains(t, result, strings.Repeat("-", 50))
}

func TestQuery_ExcerptCapped(t *testing.T) {
	server := newFakeEutils(t, `"123"`)
	defer server.Close()

	tool := NewTool(NewClient(server.URL, 3), nil, 0)

	result, err := tool.Query(context.Background(), "aspirin stroke")
	require.NoError(t, err)

	excerptIdx := strings.Index(result, "Excerpt:\n")
	require.GreaterOrEqual(t, excerptIdx, 0)
	excerpt := result[excerptIdx+len("Excerpt:\n"):]
	excerpt = excerpt[:strings.Index(excerpt, "\n")]
	assert.LessOrEqual(t, len(excerpt), 100)
}

func TestQuery_NoResults(t *testing.T) {
	server := newFakeEutils(t, ``)
	defer server.Close()

	tool := NewTool(NewClient(server.URL, 3), nil, 0)

	result, err := tool.Query(context.Background(), "zzzz nonexistent")

	require.NoError(t, err)
	assert.Equal(t, NoResultsMessage, result)
}

func TestFormatArticles_Empty(t *testing.T) {
	assert.Equal(t, NoResultsMessage, FormatArticles(nil))
}

func TestFormatArticles_ExcerptCapRespectsRuneBoundaries(t *testing.T) {
	result := FormatArticles([]Article{{
		PMID:    "123",
		Title:   "Betablocker",
		Excerpt: strings.Repeat("β", 150),
	}})

	excerptIdx := strings.Index(result, "Excerpt:\n")
	require.GreaterOrEqual(t, excerptIdx, 0)
	excerpt := result[excerptIdx+len("Excerpt:\n"):]
	excerpt = excerpt[:strings.Index(excerpt, "\n")]

	assert.True(t, utf8.ValidString(excerpt))
	assert.Equal(t, 100, utf8.RuneCountInString(excerpt))
}
