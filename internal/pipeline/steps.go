// Package pipeline orchestrates the job-search workflow: profile capture, lead discovery,
// deep analysis with refinement and chat, and tracking.
package pipeline

import (
	"fmt"
	"strings"
)

// Step is a screen of the workflow
type Step string

const (
	StepProfile  Step = "Profile"
	StepSearch   Step = "Search"
	StepAnalysis Step = "Analysis"
	StepTracker  Step = "Tracker"
)

// StepDefinition defines metadata for a workflow step
type StepDefinition struct {
	Name Step
	// Next lists the steps reachable from this one through workflow actions
	Next []Step
	// Navigable steps can be opened directly from anywhere
	Navigable bool
}

// StepRegistry holds all step definitions
var StepRegistry = map[Step]StepDefinition{
	StepProfile: {
		Name:      StepProfile,
		Next:      []Step{StepSearch},
		Navigable: true,
	},
	StepSearch: {
		Name:      StepSearch,
		Next:      []Step{StepAnalysis},
		Navigable: true,
	},
	StepAnalysis: {
		Name: StepAnalysis,
		Next: []Step{StepTracker, StepSearch},
	},
	StepTracker: {
		Name:      StepTracker,
		Next:      []Step{StepSearch, StepAnalysis},
		Navigable: true,
	},
}

// ParseStep parses a step name case-insensitively
func ParseStep(s string) (Step, error) {
	for name := range StepRegistry {
		if strings.EqualFold(strings.TrimSpace(s), string(name)) {
			return name, nil
		}
	}
	return "", fmt.Errorf("unknown step %q", s)
}

// CanTransition reports whether a workflow action may move from one step to another
func CanTransition(from, to Step) bool {
	def, ok := StepRegistry[from]
	if !ok {
		return false
	}
	for _, next := range def.Next {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionError represents a navigation that is not allowed
type TransitionError struct {
	From   Step
	To     Step
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move from %s to %s: %s", e.From, e.To, e.Reason)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
