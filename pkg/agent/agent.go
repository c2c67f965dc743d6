package agent

import (
	"context"
	"fmt"
	"strings"

	"medassist-be/pkg/llm"
)

// MaxSteps bounds the reasoning loop. Each step is one model call plus
// at most one tool invocation; a run that has not produced a final
// answer within MaxSteps fails rather than loop forever.
const MaxSteps = 8

// ToolCall records one executed tool invocation for audit purposes.
type ToolCall struct {
	Tool        string
	Input       string
	Observation string
}

// Result is a completed agent run.
type Result struct {
	Answer string
	Steps  []ToolCall
}

// Agent runs a reasoning loop over an LLM with a fixed tool set. The
// system prompt must instruct the model to emit Thought/Action/Action
// Input/Final Answer sections.
type Agent struct {
	llm          llm.LLMProvider
	tools        map[string]Tool
	toolOrder    []string
	systemPrompt string
}

func New(provider llm.LLMProvider, systemPrompt string, tools []Tool) *Agent {
	toolMap := make(map[string]Tool, len(tools))
	order := make([]string, 0, len(tools))
	for _, tool := range tools {
		toolMap[tool.Name()] = tool
		order = append(order, tool.Name())
	}
	return &Agent{
		llm:          provider,
		tools:        toolMap,
		toolOrder:    order,
		systemPrompt: systemPrompt,
	}
}

// ToolDescriptions renders the tool list for the system prompt.
func (a *Agent) ToolDescriptions() string {
	var sb strings.Builder
	for _, name := range a.toolOrder {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", name, a.tools[name].Description()))
	}
	return sb.String()
}

// ToolNames returns the comma separated tool names for the prompt.
func (a *Agent) ToolNames() string {
	return strings.Join(a.toolOrder, ", ")
}

func (a *Agent) buildMessages(history []llm.Message, transcript string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: a.systemPrompt})
	messages = append(messages, history...)
	if transcript != "" {
		messages = append(messages, llm.Message{Role: "assistant", Content: transcript})
		messages = append(messages, llm.Message{Role: "user", Content: "Continue."})
	}
	return messages
}

func (a *Agent) runTool(ctx context.Context, step Step) (string, ToolCall) {
	tool, ok := a.tools[step.Action]
	if !ok {
		observation := fmt.Sprintf("Unknown tool %q. Available tools: %s", step.Action, a.ToolNames())
		return observation, ToolCall{Tool: step.Action, Input: step.ActionInput, Observation: observation}
	}

	observation, err := tool.Invoke(ctx, step.ActionInput)
	if err != nil {
		observation = fmt.Sprintf("Tool %s failed: %v", step.Action, err)
	}
	return observation, ToolCall{Tool: step.Action, Input: step.ActionInput, Observation: observation}
}

// Chat runs the loop to completion and returns the final answer.
func (a *Agent) Chat(ctx context.Context, history []llm.Message) (*Result, error) {
	var transcript strings.Builder
	result := &Result{}

	for i := 0; i < MaxSteps; i++ {
		output, err := a.llm.Chat(ctx, a.buildMessages(history, transcript.String()))
		if err != nil {
			return nil, fmt.Errorf("agent model call failed: %w", err)
		}

		step := ParseStep(output)
		if step.IsFinal {
			result.Answer = step.FinalAnswer
			return result, nil
		}

		observation, call := a.runTool(ctx, step)
		result.Steps = append(result.Steps, call)

		transcript.WriteString(output)
		transcript.WriteString(fmt.Sprintf("\nObservation: %s\n", observation))
	}

	return nil, fmt.Errorf("agent did not produce a final answer within %d steps", MaxSteps)
}

// StreamChat runs the same loop but streams the final answer tokens as
// they arrive. Intermediate reasoning steps are consumed silently; only
// text after the Final Answer marker reaches the channel. Providers
// without streaming support fall back to a single chunk.
func (a *Agent) StreamChat(ctx context.Context, history []llm.Message) (<-chan string, <-chan error) {
	tokens := make(chan string)
	errs := make(chan error, 1)

	streamer, canStream := a.llm.(llm.StreamProvider)

	go func() {
		defer close(tokens)
		defer close(errs)

		if !canStream {
			result, err := a.Chat(ctx, history)
			if err != nil {
				errs <- err
				return
			}
			select {
			case tokens <- result.Answer:
			case <-ctx.Done():
				errs <- ctx.Err()
			}
			return
		}

		var transcript strings.Builder

		for i := 0; i < MaxSteps; i++ {
			stepTokens, stepErrs := streamer.StreamChat(ctx, a.buildMessages(history, transcript.String()))

			output, streamed, err := a.forwardFinalAnswer(ctx, stepTokens, stepErrs, tokens)
			if err != nil {
				errs <- err
				return
			}
			if streamed {
				return
			}

			step := ParseStep(output)
			if step.IsFinal {
				// Marker never appeared mid-stream (e.g. bare answer with
				// no sections); emit the parsed answer whole.
				select {
				case tokens <- step.FinalAnswer:
				case <-ctx.Done():
					errs <- ctx.Err()
				}
				return
			}

			observation, _ := a.runTool(ctx, step)
			transcript.WriteString(output)
			transcript.WriteString(fmt.Sprintf("\nObservation: %s\n", observation))
		}

		errs <- fmt.Errorf("agent did not produce a final answer within %d steps", MaxSteps)
	}()

	return tokens, errs
}

// forwardFinalAnswer buffers one model turn until the Final Answer
// marker is seen, then forwards everything after it live. It returns
// the full buffered output, whether tokens were forwarded, and any
// stream error.
func (a *Agent) forwardFinalAnswer(ctx context.Context, stepTokens <-chan string, stepErrs <-chan error, out chan<- string) (string, bool, error) {
	var buffer strings.Builder
	forwarding := false
	emitted := false

	for token := range stepTokens {
		if forwarding {
			buffer.WriteString(token)
			if !emitted {
				// Swallow whitespace between the marker and the answer.
				token = strings.TrimLeft(token, " \n")
				if token == "" {
					continue
				}
				emitted = true
			}
			select {
			case out <- token:
			case <-ctx.Done():
				return buffer.String(), true, ctx.Err()
			}
			continue
		}

		buffer.WriteString(token)
		text := buffer.String()

		// Do not start forwarding if an Action precedes the marker;
		// that turn belongs to a tool step.
		if idx := strings.Index(text, finalAnswerMarker); idx >= 0 {
			if actionIdx := strings.Index(text, actionMarker); actionIdx >= 0 && actionIdx < idx {
				continue
			}
			forwarding = true
			after := strings.TrimLeft(text[idx+len(finalAnswerMarker):], " \n")
			if after != "" {
				emitted = true
				select {
				case out <- after:
				case <-ctx.Done():
					return text, true, ctx.Err()
				}
			}
		}
	}

	if err := <-stepErrs; err != nil {
		return buffer.String(), forwarding, err
	}
	return buffer.String(), forwarding, nil
}
