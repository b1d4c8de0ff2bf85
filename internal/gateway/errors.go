package gateway

import (
	"fmt"

	"github.com/google/go-github/v62/github"
)

// FetchError reports a failed page request for a repository or user.
type FetchError struct {
	// Identifier is the repository (owner/name) or user login being listed.
	Identifier string
	// StatusCode is the HTTP status of the failed response, or 0 when no
	// response was received.
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: HTTP %d", e.Identifier, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.Identifier, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func newFetchError(identifier string, resp *github.Response, err error) *FetchError {
	fe := &FetchError{Identifier: identifier, Err: err}
	if resp != nil && resp.Response != nil {
		fe.StatusCode = resp.StatusCode
	}
	return fe
}
