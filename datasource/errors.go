package datasource

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey means no credential is configured for a provider.
	// It is a configuration error and is returned before any network call.
	ErrMissingAPIKey = errors.New("API key is missing")

	// ErrEmptyQuery means the city name was empty after trimming
	ErrEmptyQuery = errors.New("empty location query")
)

// APIError is returned when the provider answered with a failure status
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s API error (status %d)", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
}

// TransportError is returned when no response was received at all
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
