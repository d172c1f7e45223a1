package agent

import "fmt"

// Operation names the agent call that failed
type Operation string

const (
	OpDiscover Operation = "discover"
	OpAnalyze  Operation = "analyze"
	OpRefine   Operation = "refine"
	OpChat     Operation = "chat"
)

// AgentError is the single error kind returned by every agent operation.
// Transport failures, empty answers, malformed JSON and schema mismatches all surface as this type.
type AgentError struct {
	Op      Operation
	Message string
	Cause   error
}

func (e *AgentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("agent %s error: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("agent %s error: %s", e.Op, e.Message)
}

func (e *AgentError) Unwrap() error {
	return e.Cause
}
