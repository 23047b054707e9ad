package service

import (
	"errors"
	"fmt"

	"polar.sh/ghsync/internal/githubapp"
)

var (
	ErrOrganizationNotFound = errors.New("external organization not found")
	ErrRepositoryNotFound   = errors.New("repository not found")
	ErrInvalidDelivery      = errors.New("invalid webhook delivery")
)

// TaskError marks whether a failed task is worth retrying.
type TaskError struct {
	Op        string
	Err       error
	Retryable bool
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

func NewRetryableError(op string, err error) error {
	return &TaskError{Op: op, Err: err, Retryable: true}
}

func NewPermanentError(op string, err error) error {
	return &TaskError{Op: op, Err: err, Retryable: false}
}

// IsRetryable classifies a task failure. Errors nobody classified are
// assumed transient (database, network) and retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var taskErr *TaskError
	if errors.As(err, &taskErr) {
		return taskErr.Retryable
	}
	var apiErr *githubapp.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	return true
}
