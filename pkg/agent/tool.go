package agent

import "context"

// Tool is a capability the agent can invoke by name. Description is
// shown to the model verbatim, so it should explain when the tool is
// the right choice.
type Tool interface {
	Name() string
	Description() string
	Invoke(ctx context.Context, input string) (string, error)
}
