package embedding

// Provider generates text embeddings. taskType hints the intended use
// (retrieval_document vs retrieval_query) for providers that support it.
type Provider interface {
	Generate(text string, taskType string) (*Response, error)
}

type requestContentPart struct {
	Text string `json:"text"`
}

type requestContent struct {
	Parts []requestContentPart `json:"parts"`
}

type geminiRequest struct {
	Model    string         `json:"model"`
	Content  requestContent `json:"content"`
	TaskType string         `json:"task_type,omitempty"`
}

type ResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type Response struct {
	Embedding ResponseEmbedding `json:"embedding"`
}
