package githubapp

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/google/go-github/v71/github"
)

// APIError is returned for any failed GitHub API call.
type APIError struct {
	Op         string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("github %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("github %s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err carries a retryable APIError.
func IsRetryable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Retryable
}

// IsNotFound reports whether the API answered 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// WrapAPIError classifies a go-github error.
func WrapAPIError(op string, err error) error {
	if err == nil {
		return nil
	}

	apiErr := &APIError{Op: op, Err: err}

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var respErr *github.ErrorResponse
	var netErr net.Error

	switch {
	case errors.As(err, &rateErr):
		apiErr.StatusCode = statusOf(rateErr.Response)
		apiErr.Retryable = true
	case errors.As(err, &abuseErr):
		apiErr.StatusCode = statusOf(abuseErr.Response)
		apiErr.Retryable = true
	case errors.As(err, &respErr):
		apiErr.StatusCode = statusOf(respErr.Response)
		apiErr.Retryable = apiErr.StatusCode >= http.StatusInternalServerError ||
			apiErr.StatusCode == http.StatusTooManyRequests
	case errors.As(err, &netErr):
		apiErr.Retryable = true
	}

	return apiErr
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
