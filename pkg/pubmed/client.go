package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Article is one PubMed search result with a short abstract excerpt.
type Article struct {
	PMID    string
	Title   string
	Journal string
	URL     string
	Excerpt string
}

// Client talks to the NCBI E-utilities API: esearch for IDs, esummary
// for metadata, efetch for abstract text.
type Client struct {
	BaseURL    string
	MaxResults int
	HTTPClient *http.Client
}

func NewClient(baseURL string, maxResults int) *Client {
	if baseURL == "" {
		baseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	}
	if maxResults <= 0 {
		maxResults = 3
	}
	return &Client{
		BaseURL:    baseURL,
		MaxResults: maxResults,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type esearchResponse struct {
	ESearchResult struct {
		IdList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type esummaryDoc struct {
	Title           string `json:"title"`
	FullJournalName string `json:"fulljournalname"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/%s?%s", c.BaseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pubmed request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pubmed error: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// Search runs the full esearch, esummary, efetch pipeline for a query.
func (c *Client) Search(ctx context.Context, query string) ([]Article, error) {
	ids, err := c.searchIds(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	summaries, err := c.fetchSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	abstracts := c.fetchAbstracts(ctx, ids)

	articles := make([]Article, 0, len(ids))
	for _, id := range ids {
		doc, ok := summaries[id]
		if !ok {
			continue
		}
		articles = append(articles, Article{
			PMID:    id,
			Title:   doc.Title,
			Journal: doc.FullJournalName,
			URL:     fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", id),
			Excerpt: abstracts[id],
		})
	}
	return articles, nil
}

func (c *Client) searchIds(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", query)
	params.Set("retmax", fmt.Sprintf("%d", c.MaxResults))
	params.Set("retmode", "json")
	params.Set("sort", "relevance")

	body, err := c.get(ctx, "esearch.fcgi", params)
	if err != nil {
		return nil, err
	}

	var result esearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal esearch response: %w", err)
	}
	return result.ESearchResult.IdList, nil
}

func (c *Client) fetchSummaries(ctx context.Context, ids []string) (map[string]esummaryDoc, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "json")

	body, err := c.get(ctx, "esummary.fcgi", params)
	if err != nil {
		return nil, err
	}

	var result esummaryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal esummary response: %w", err)
	}

	docs := make(map[string]esummaryDoc, len(ids))
	for _, id := range ids {
		raw, ok := result.Result[id]
		if !ok {
			continue
		}
		var doc esummaryDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		docs[id] = doc
	}
	return docs, nil
}

// fetchAbstracts is best effort; a missing abstract leaves the excerpt
// empty rather than failing the whole search.
func (c *Client) fetchAbstracts(ctx context.Context, ids []string) map[string]string {
	abstracts := make(map[string]string, len(ids))

	for _, id := range ids {
		params := url.Values{}
		params.Set("db", "pubmed")
		params.Set("id", id)
		params.Set("rettype", "abstract")
		params.Set("retmode", "text")

		body, err := c.get(ctx, "efetch.fcgi", params)
		if err != nil {
			continue
		}
		abstracts[id] = strings.TrimSpace(string(body))
	}
	return abstracts
}
