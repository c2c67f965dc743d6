package pubmed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NoResultsMessage is returned verbatim when a search matches nothing,
// so the agent sees a stable observation instead of an empty string.
const NoResultsMessage = "No articles were found matching the search query."

const excerptLimit = 100

// Tool exposes PubMed search as an agent tool and a query engine.
// Results are cached in Redis keyed by query; a cache failure falls
// through to the live API.
type Tool struct {
	client   *Client
	redis    *redis.Client
	cacheTTL time.Duration
}

func NewTool(client *Client, redisClient *redis.Client, cacheTTL time.Duration) *Tool {
	return &Tool{
		client:   client,
		redis:    redisClient,
		cacheTTL: cacheTTL,
	}
}

func (t *Tool) Name() string {
	return "pubmed_engine"
}

func (t *Tool) Description() string {
	return "Searches PubMed for peer reviewed medical literature. Input is a search query; output is a list of matching articles with title, journal, link and abstract excerpt."
}

func (t *Tool) Invoke(ctx context.Context, input string) (string, error) {
	return t.Query(ctx, input)
}

// Query runs the search and formats results for model consumption.
func (t *Tool) Query(ctx context.Context, query string) (string, error) {
	cacheKey := "pubmed:" + query

	if t.redis != nil {
		if cached, err := t.redis.Get(ctx, cacheKey).Result(); err == nil {
			return cached, nil
		}
	}

	articles, err := t.client.Search(ctx, query)
	if err != nil {
		return "", err
	}

	formatted := FormatArticles(articles)

	if t.redis != nil {
		// Best effort; a write failure only costs the next lookup.
		t.redis.Set(ctx, cacheKey, formatted, t.cacheTTL)
	}
	return formatted, nil
}

// FormatArticles renders articles in the fixed layout the agent prompt
// expects. Abstract excerpts are capped at 100 characters, counted in
// runes.
func FormatArticles(articles []Article) string {
	if len(articles) == 0 {
		return NoResultsMessage
	}

	var sb strings.Builder
	for i, article := range articles {
		excerpt := article.Excerpt
		// Cap on a rune boundary so multibyte text is never split.
		if runes := []rune(excerpt); len(runes) > excerptLimit {
			excerpt = string(runes[:excerptLimit])
		}

		sb.WriteString(fmt.Sprintf("Article %d:\n", i+1))
		sb.WriteString(fmt.Sprintf("Title: %s\n", article.Title))
		sb.WriteString(fmt.Sprintf("Journal: %s\n", article.Journal))
		sb.WriteString(fmt.Sprintf("URL: %s\n", article.URL))
		sb.WriteString(fmt.Sprintf("Excerpt:\n%s\n", excerpt))
		sb.WriteString(strings.Repeat("-", 50) + "\n")
	}
	return sb.String()
}
