package service

import (
	"errors"
	"fmt"

	"plew-backend/internal/model"
)

var (
	// ErrNotFound means a requested question or pack does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the verified identity does not own the target
	// resource. Ownership failures must never be swallowed.
	ErrForbidden = errors.New("forbidden")
	// ErrBudgetExceeded means the deployment-wide LLM spend ceiling is hit.
	ErrBudgetExceeded = errors.New("usage budget exceeded")
	// ErrInvalidSignature means a webhook payload failed verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// AccessDeniedError is returned when a free-tier user has exhausted their
// quota. It carries what the client needs to render an upgrade prompt, which
// is why it is distinct from plain ErrForbidden.
type AccessDeniedError struct {
	Tier               model.Tier
	QuestionsCompleted int
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("free question limit reached (%d completed)", e.QuestionsCompleted)
}

// ValidationError reports a malformed or out-of-range input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
