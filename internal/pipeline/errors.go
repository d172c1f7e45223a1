package pipeline

import "errors"

var (
	// ErrProfileIncomplete is returned when discovery is requested without a title and at least one skill
	ErrProfileIncomplete = errors.New("profile needs a title and at least one skill")
	// ErrBusy is returned when a call of the same category is still outstanding; the request is dropped
	ErrBusy = errors.New("operation already in progress")
	// ErrNoAnalysis is returned by refinement and chat when no analysis is resident
	ErrNoAnalysis = errors.New("no job analysis selected")
	// ErrEmptyMessage is returned for blank chat messages
	ErrEmptyMessage = errors.New("message is empty")
	// ErrEmptyInstruction is returned for blank refinement instructions
	ErrEmptyInstruction = errors.New("refinement instruction is empty")
	// ErrInvalidTransition is returned for navigation the workflow does not allow
	ErrInvalidTransition = errors.New("invalid step transition")
	// ErrStaleResult is returned when a call completes after its context was replaced; the result is dropped
	ErrStaleResult = errors.New("result discarded: context changed while the request was in flight")
	// ErrJobNotFound is returned when a job ID is in neither the discovery list nor the current selection
	ErrJobNotFound = errors.New("job not found")
)
