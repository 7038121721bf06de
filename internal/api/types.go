package api

import (
	"net/http"
	"time"
)

// Config controls how the client reaches the onboarding backend.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	RetryDelay time.Duration

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// ProfileInput is the body of POST /profile-details.
type ProfileInput struct {
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	CorporationNumber string `json:"corporationNumber"`
	Phone             string `json:"phone"`
}

// ProfileResponse is the error body returned by POST /profile-details.
type ProfileResponse struct {
	Message string `json:"message,omitempty"`
}

// CorporationResponse is the body of GET /corporation-number/{value}.
type CorporationResponse struct {
	CorporationNumber string `json:"corporationNumber,omitempty"`
	Valid             bool   `json:"valid"`
	Message           string `json:"message,omitempty"`
}

type ErrorType string

const (
	ErrNetworkConnection ErrorType = "network_connection"
	ErrTimeout           ErrorType = "timeout"
	ErrRateLimited       ErrorType = "rate_limited"
	ErrServerError       ErrorType = "server_error"
	ErrBadRequest        ErrorType = "bad_request"
	ErrNotFound          ErrorType = "not_found"
	ErrInvalidResponse   ErrorType = "invalid_response"
	ErrCanceled          ErrorType = "canceled"
)

// APIError describes a failed backend call. ServerMessage carries the
// `message` field of the response body when the backend supplied one.
type APIError struct {
	Type          ErrorType
	Message       string
	StatusCode    int
	ServerMessage string
	Cause         error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Cause
}
