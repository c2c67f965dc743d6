package chat

import (
	"context"
	"fmt"
	"time"

	"medassist-be/pkg/agent"
	"medassist-be/pkg/llm"
	"medassist-be/pkg/prompt"

	"github.com/google/uuid"
)

// QueryEngine answers a standalone question from some knowledge source.
type QueryEngine interface {
	Query(ctx context.Context, query string) (string, error)
}

// Engine is one chat turn's reasoning pipeline: an agent whose tools
// are the per-user medical record engine and the PubMed engine.
type Engine struct {
	agent   *agent.Agent
	history []llm.Message
}

// Factory assembles an Engine per request. Engines are cheap; the
// expensive pieces (index accessor, providers) are shared.
type Factory struct {
	llm       llm.LLMProvider
	registry  *prompt.Registry
	accessor  *IndexAccessor
	pubmed    QueryEngine
	recordCfg AccessorConfig
}

func NewFactory(provider llm.LLMProvider, registry *prompt.Registry, accessor *IndexAccessor, pubmedEngine QueryEngine, recordCfg AccessorConfig) *Factory {
	return &Factory{
		llm:       provider,
		registry:  registry,
		accessor:  accessor,
		pubmed:    pubmedEngine,
		recordCfg: recordCfg,
	}
}

// NewEngine builds the chat engine for a user. The medical records
// engine is scoped to the user's own vectors; when the user has no
// ingested records yet its retrieval target is absent and the engine
// answers on synthesis alone.
func (f *Factory) NewEngine(ctx context.Context, userId uuid.UUID, history []llm.Message) (*Engine, error) {
	synth := NewSynthesizer(f.llm, f.registry)
	transformer := NewTransformer(f.llm, f.registry)

	index, err := f.accessor.GetIndex(ctx, f.recordCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to access record index: %w", err)
	}

	var recordTarget QueryEngine
	if index != nil {
		recordTarget = index.AsQueryEngine(synth, map[string]string{
			"user_id": userId.String(),
		})
	}

	recordsEngine := NewSubQuestionEngine(
		"medical_records_engine",
		"Answers questions about the patient's own medical records, lab results and clinical documents.",
		transformer, synth, recordTarget, history,
	)
	pubmedEngine := NewSubQuestionEngine(
		"pubmed_engine",
		"Answers questions that need published medical literature and research evidence from PubMed.",
		transformer, synth, f.pubmed, history,
	)

	tools := []agent.Tool{recordsEngine, pubmedEngine}

	reactAgent := agent.New(f.llm, "", tools)
	systemPrompt := f.registry.MustGet("system").Format(map[string]string{
		"tools":      reactAgent.ToolDescriptions(),
		"tool_names": reactAgent.ToolNames(),
	})
	reactAgent = agent.New(f.llm, systemPrompt, tools)

	return &Engine{
		agent:   reactAgent,
		history: history,
	}, nil
}

// Chat runs one turn to completion.
func (e *Engine) Chat(ctx context.Context) (*agent.Result, error) {
	return e.agent.Chat(ctx, e.history)
}

// StreamChat runs one turn streaming the final answer tokens.
func (e *Engine) StreamChat(ctx context.Context) (<-chan string, <-chan error) {
	return e.agent.StreamChat(ctx, e.history)
}

// HistoryWindow trims a conversation to its most recent messages for
// prompting. A window of 0 keeps everything.
func HistoryWindow(history []llm.Message, window int) []llm.Message {
	if window <= 0 || len(history) <= window {
		return history
	}
	return history[len(history)-window:]
}

// DefaultIndexTTL is how long a built index handle stays cached before
// the accessor rebuilds it from storage.
const DefaultIndexTTL = 5 * time.Minute
