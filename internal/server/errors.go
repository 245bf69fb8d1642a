package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/content-agent/internal/pipeline"
	"github.com/jonathan/content-agent/internal/sessions"
	"github.com/jonathan/content-agent/internal/tools"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailExists *ErrEmailAlreadyExists
		badCreds    *ErrInvalidCredentials
		invalid     *ErrValidation
		unknownTool *tools.UnknownToolError
		stageErr    *pipeline.StageError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &emailExists):
		return http.StatusConflict
	case errors.As(err, &badCreds):
		return http.StatusUnauthorized
	case errors.As(err, &invalid), errors.Is(err, pipeline.ErrEmptyTopic):
		return http.StatusBadRequest
	case errors.Is(err, sessions.ErrSessionNotFound), errors.As(err, &unknownTool):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrCancelled):
		return http.StatusRequestTimeout
	case errors.As(err, &stageErr):
		// The model provider failed, not this server.
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
