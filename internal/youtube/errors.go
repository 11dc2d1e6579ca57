package youtube

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthOrQuota: the API key is invalid or the daily quota is spent (HTTP 403).
	ErrAuthOrQuota = errors.New("api key invalid or quota exceeded")
	// ErrBadRequest: the upstream rejected the search parameters (HTTP 400).
	ErrBadRequest = errors.New("invalid search parameters")
	// ErrUpstream: any other failed call, including transport errors.
	ErrUpstream = errors.New("upstream api error")
	// ErrInvalidBatch: a statistics batch is empty or larger than MaxBatchSize.
	ErrInvalidBatch = errors.New("invalid statistics batch")
)

// networkErrorMessage is shown when a call fails before any HTTP status is known.
const networkErrorMessage = "network error: check your internet connection"

// APIError carries the HTTP status of a failed call together with the
// category sentinel it maps to.
type APIError struct {
	StatusCode int
	Kind       error
	Body       string
}

func (e *APIError) Error() string {
	switch e.Kind {
	case ErrAuthOrQuota, ErrBadRequest:
		return e.Kind.Error()
	}
	return fmt.Sprintf("api call failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap lets errors.Is match the category sentinel.
func (e *APIError) Unwrap() error { return e.Kind }

// classifyStatus maps a non-2xx status onto the error taxonomy.
func classifyStatus(code int, body string) *APIError {
	kind := ErrUpstream
	switch code {
	case http.StatusForbidden:
		kind = ErrAuthOrQuota
	case http.StatusBadRequest:
		kind = ErrBadRequest
	}
	return &APIError{StatusCode: code, Kind: kind, Body: body}
}

// transportError wraps a failure that produced no response.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return networkErrorMessage }

func (e *transportError) Unwrap() []error { return []error{ErrUpstream, e.err} }
