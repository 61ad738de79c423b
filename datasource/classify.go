package datasource

import (
	"errors"
	"net/http"

	"weatherwatch/config"
	"weatherwatch/geolocation"
)

// User-facing failure messages
const (
	MessageMissingAPIKey        = "API Key is missing! Please check your environment variable."
	MessageMissingSuggestionKey = "City suggestion API Key is missing! Please check your environment variable."
	MessageUnauthorized         = "Unauthorized: Invalid API key or missing credentials."
	MessageNotFound             = "City not found. Please try again."
	MessageServiceError         = "Something went wrong. Please check your internet connection or try again later."
	MessageUnknownError         = "An unknown error occurred. Please check your connection and try again."
	MessageEmptyQuery           = "Please enter a valid city name."
	MessageLocationDenied       = "Failed to retrieve location. Please allow location access."
	MessageUnsupported          = "Geolocation is not supported in this environment."
)

// Kind is the category of a classified failure
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindUnauthorized  Kind = "unauthorized"
	KindNotFound      Kind = "not_found"
	KindService       Kind = "service"
	KindNoResponse    Kind = "no_response"
	KindInvalidInput  Kind = "invalid_input"
	KindGeolocation   Kind = "geolocation"
)

// Classification is the user-facing view of a failure
type Classification struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	// Fatal marks configuration errors that block every request until fixed
	Fatal bool `json:"fatal"`
}

// Classify maps a failure from a weather lookup or a geolocation attempt
// to one of a fixed set of messages. Only the HTTP status is consulted for
// provider failures, never the response body.
func Classify(err error) Classification {
	var apiErr *APIError

	switch {
	case errors.Is(err, config.ErrMissingSuggestionKey):
		return Classification{Kind: KindConfiguration, Message: MessageMissingSuggestionKey, Fatal: true}
	case errors.Is(err, ErrMissingAPIKey), errors.Is(err, config.ErrMissingWeatherKey):
		return Classification{Kind: KindConfiguration, Message: MessageMissingAPIKey, Fatal: true}
	case errors.Is(err, ErrEmptyQuery):
		return Classification{Kind: KindInvalidInput, Message: MessageEmptyQuery}
	case errors.Is(err, geolocation.ErrUnsupported):
		return Classification{Kind: KindGeolocation, Message: MessageUnsupported}
	case errors.Is(err, geolocation.ErrPermissionDenied):
		return Classification{Kind: KindGeolocation, Message: MessageLocationDenied}
	case errors.As(err, &apiErr):
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			return Classification{Kind: KindUnauthorized, Message: MessageUnauthorized}
		case http.StatusNotFound:
			return Classification{Kind: KindNotFound, Message: MessageNotFound}
		default:
			return Classification{Kind: KindService, Message: MessageServiceError}
		}
	default:
		return Classification{Kind: KindNoResponse, Message: MessageUnknownError}
	}
}

// ClassifyAll classifies each error joined into err, in order, dropping
// duplicate messages. A nil err yields nil.
func ClassifyAll(err error) []Classification {
	if err == nil {
		return nil
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}

	var out []Classification
	seen := map[string]bool{}
	for _, e := range errs {
		c := Classify(e)
		if seen[c.Message] {
			continue
		}
		seen[c.Message] = true
		out = append(out, c)
	}
	return out
}
