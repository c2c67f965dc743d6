package agent

import (
	"strings"
)

// Step is one parsed model turn of the reasoning loop.
type Step struct {
	Thought     string
	Action      string
	ActionInput string
	FinalAnswer string
	IsFinal     bool
}

const (
	thoughtMarker     = "Thought:"
	actionMarker      = "Action:"
	actionInputMarker = "Action Input:"
	finalAnswerMarker = "Final Answer:"
)

// ParseStep extracts the structured step from raw model output. An
// Action appearing before a Final Answer wins, since models sometimes
// hallucinate both in one turn. Output with neither marker is treated
// as a final answer so a chatty model still produces a usable reply.
func ParseStep(output string) Step {
	step := Step{}

	actionIdx := strings.Index(output, actionMarker)
	finalIdx := strings.Index(output, finalAnswerMarker)

	if thoughtIdx := strings.Index(output, thoughtMarker); thoughtIdx >= 0 {
		rest := output[thoughtIdx+len(thoughtMarker):]
		step.Thought = strings.TrimSpace(firstSection(rest))
	}

	if actionIdx >= 0 && (finalIdx < 0 || actionIdx < finalIdx) {
		rest := output[actionIdx+len(actionMarker):]
		step.Action = strings.TrimSpace(firstSection(rest))

		if inputIdx := strings.Index(output, actionInputMarker); inputIdx > actionIdx {
			inputRest := output[inputIdx+len(actionInputMarker):]
			step.ActionInput = strings.Trim(strings.TrimSpace(firstSection(inputRest)), `"`)
		}
		return step
	}

	if finalIdx >= 0 {
		step.IsFinal = true
		step.FinalAnswer = strings.TrimSpace(output[finalIdx+len(finalAnswerMarker):])
		return step
	}

	step.IsFinal = true
	step.FinalAnswer = strings.TrimSpace(output)
	return step
}

// firstSection returns text up to the next marker, so multi-field
// turns don't bleed into each other.
func firstSection(text string) string {
	end := len(text)
	for _, marker := range []string{thoughtMarker, actionMarker, actionInputMarker, finalAnswerMarker, "Observation:"} {
		if idx := strings.Index(text, marker); idx >= 0 && idx < end {
			end = idx
		}
	}
	return text[:end]
}
