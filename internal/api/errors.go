package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

func NewAPIError(errType ErrorType, message string, cause error) *APIError {
	return &APIError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

func NewNetworkError(message string, cause error) *APIError {
	return NewAPIError(ErrNetworkConnection, message, cause)
}

func NewTimeoutError(operation string, timeout time.Duration) *APIError {
	return NewAPIError(ErrTimeout,
		fmt.Sprintf("operation %s timed out after %v", operation, timeout), nil)
}

func NewInvalidResponseError(message string, cause error) *APIError {
	return NewAPIError(ErrInvalidResponse, message, cause)
}

// NewStatusError builds the error for a non-200 response. serverMessage is the
// `message` field of the body, empty when absent or unparsable.
func NewStatusError(operation string, statusCode int, serverMessage string) *APIError {
	err := NewAPIError(typeForStatus(statusCode),
		fmt.Sprintf("%s failed with status %d", operation, statusCode), nil)
	err.StatusCode = statusCode
	err.ServerMessage = serverMessage
	return err
}

func typeForStatus(code int) ErrorType {
	switch {
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return ErrTimeout
	case code >= 500:
		return ErrServerError
	default:
		return ErrBadRequest
	}
}

// ClassifyError maps transport failures onto APIError. Errors that already are
// (or wrap) an *APIError are returned as is.
func ClassifyError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, context.Canceled):
		return NewAPIError(ErrCanceled, "request canceled", err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewAPIError(ErrTimeout, "request deadline exceeded", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewAPIError(ErrTimeout, "network operation timed out", err)
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded"):
		return NewAPIError(ErrTimeout, "network request timed out", err)
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host"):
		return NewNetworkError("connection failed", err)
	case strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "too many requests"):
		return NewAPIError(ErrRateLimited, "rate limited", err)
	default:
		return NewNetworkError("unknown network error", err)
	}
}

func (e *APIError) IsRetryable() bool {
	switch e.Type {
	case ErrNetworkConnection, ErrTimeout, ErrRateLimited, ErrServerError:
		return true
	default:
		return false
	}
}

func (e *APIError) UserMessage() string {
	switch e.Type {
	case ErrNetworkConnection:
		return "Network connection failed. Please check your internet connection."
	case ErrTimeout:
		return "Request timed out. Please try again."
	case ErrRateLimited:
		return "Too many requests. Please wait a moment and try again."
	case ErrServerError:
		return "The onboarding service is temporarily unavailable."
	case ErrBadRequest, ErrNotFound:
		if e.ServerMessage != "" {
			return e.ServerMessage
		}
		return "The request was rejected by the server."
	case ErrInvalidResponse:
		return "The server sent an unexpected response."
	case ErrCanceled:
		return "Request canceled."
	default:
		return "An unexpected error occurred."
	}
}
