package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/career-pilot/internal/agent"
	"github.com/jonathan/career-pilot/internal/pipeline"
	"github.com/jonathan/career-pilot/internal/tracker"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// validationError converts validator output into ErrValidation, reporting the first failing field
func validationError(err error) error {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		ve := ves[0]
		return &ErrValidation{Field: ve.Field(), Message: ve.Tag()}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation *ErrValidation
		transition *pipeline.TransitionError
		agentErr   *agent.AgentError
	)
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.As(err, &validation),
		errors.Is(err, pipeline.ErrEmptyMessage),
		errors.Is(err, pipeline.ErrEmptyInstruction),
		errors.Is(err, tracker.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrJobNotFound), errors.Is(err, tracker.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrProfileIncomplete):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrBusy),
		errors.Is(err, pipeline.ErrStaleResult),
		errors.Is(err, pipeline.ErrNoAnalysis),
		errors.As(err, &transition):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &agentErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
