package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStep_ToolAction(t *testing.T) {
	output := "Thought: I should search the literature.\nAction: pubmed_engine\nAction Input: metformin cardiovascular outcomes"

	step := ParseStep(output)

	assert.False(t, step.IsFinal)
	assert.Equal(t, "I should search the literature.", step.Thought)
	assert.Equal(t, "pubmed_engine", step.Action)
	assert.Equal(t, "metformin cardiovascular outcomes", step.ActionInput)
}

func TestParseStep_FinalAnswer(t *testing.T) {
	output := "Thought: I now know the final answer\nFinal Answer: Metformin is first line therapy."

	step := ParseStep(output)

	assert.True(t, step.IsFinal)
	assert.Equal(t, "Metformin is first line therapy.", step.FinalAnswer)
	assert.Empty(t, step.Action)
}

func TestParseStep_ActionWinsOverLaterFinalAnswer(t *testing.T) {
	output := "Action: medical_records_engine\nAction Input: latest HbA1c\nFinal Answer: not yet"

	step := ParseStep(output)

	assert.False(t, step.IsFinal)
	assert.Equal(t, "medical_records_engine", step.Action)
	assert.Equal(t, "latest HbA1c", step.ActionInput)
}

func TestParseStep_QuotedActionInput(t *testing.T) {
	output := "Action: pubmed_engine\nAction Input: \"statin myopathy\""

	step := ParseStep(output)

	assert.Equal(t, "statin myopathy", step.ActionInput)
}

func TestParseStep_BareTextIsFinal(t *testing.T) {
	output := "Hello! How can I help you today?"

	step := ParseStep(output)

	assert.True(t, step.IsFinal)
	assert.Equal(t, "Hello! How can I help you today?", step.FinalAnswer)
}
