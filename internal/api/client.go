package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"rhystmorgan/onboardTerm/internal/metrics"
	"rhystmorgan/onboardTerm/internal/validation"
)

const (
	DefaultBaseURL    = "https://fe-hometask-api.qa.vault.tryvault.com/"
	DefaultTimeout    = 30 * time.Second
	// Lookups are attempted once unless retries are configured.
	DefaultRetryCount = 1
	DefaultRetryDelay = 2 * time.Second

	corporationEndpoint = "corporation-number"
	profileEndpoint     = "profile-details"

	// Error bodies are small JSON documents; anything larger is not one.
	maxErrorBody = 64 << 10
)

// Client talks to the onboarding backend.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	config     Config
	log        *zap.SugaredLogger

	// Collapses concurrent lookups of the same number (blur racing submit).
	lookups singleflight.Group
}

func NewClient(config Config, log *zap.SugaredLogger) (*Client, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.RetryCount < 1 {
		config.RetryCount = DefaultRetryCount
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = DefaultRetryDelay
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", config.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		config:     config,
		log:        log,
	}, nil
}

// ValidateCorporationNumber asks the backend whether number is a known,
// valid corporation number. Transport failures and non-200 responses are
// returned as *APIError.
func (c *Client) ValidateCorporationNumber(ctx context.Context, number string) (validation.ValidationResult, error) {
	ch := c.lookups.DoChan(number, func() (any, error) {
		// Detached from the first caller so a canceled blur does not fail a
		// submit waiting on the same flight.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.Timeout)
		defer cancel()
		return c.fetchCorporationWithRetry(ctx, number)
	})

	select {
	case <-ctx.Done():
		return validation.ValidationResult{}, ClassifyError(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return validation.ValidationResult{}, res.Err
		}
		return res.Val.(validation.ValidationResult), nil
	}
}

func (c *Client) fetchCorporationWithRetry(ctx context.Context, number string) (validation.ValidationResult, error) {
	var lastErr error

	for attempt := 0; attempt < c.config.RetryCount; attempt++ {
		if attempt > 0 {
			c.log.Warnw("retrying corporation lookup",
				"attempt", attempt+1,
				"err", lastErr,
			)
			select {
			case <-ctx.Done():
				return validation.ValidationResult{}, ClassifyError(ctx.Err())
			case <-time.After(c.config.RetryDelay * time.Duration(attempt)):
			}
		}

		result, err := c.doFetchCorporation(ctx, number)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if apiErr := ClassifyError(err); apiErr != nil && !apiErr.IsRetryable() {
			break
		}
	}

	return validation.ValidationResult{}, ClassifyError(lastErr)
}

func (c *Client) doFetchCorporation(ctx context.Context, number string) (validation.ValidationResult, error) {
	endpoint := c.baseURL.JoinPath(corporationEndpoint, number)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return validation.ValidationResult{}, fmt.Errorf("failed to build lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req, corporationEndpoint)
	if err != nil {
		return validation.ValidationResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return validation.ValidationResult{}, NewStatusError("corporation lookup", resp.StatusCode, readServerMessage(resp.Body))
	}

	var body CorporationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return validation.ValidationResult{}, NewInvalidResponseError("failed to decode lookup response", err)
	}

	return validation.ValidationResult{Valid: body.Valid, Message: body.Message}, nil
}

// PostProfile submits a profile. Only a 200 response counts as success; its
// body is ignored. Submissions are never retried.
func (c *Client) PostProfile(ctx context.Context, input ProfileInput) error {
	payload, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	endpoint := c.baseURL.JoinPath(profileEndpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build profile request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req, profileEndpoint)
	if err != nil {
		return ClassifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NewStatusError("profile submission", resp.StatusCode, readServerMessage(resp.Body))
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	return nil
}

func (c *Client) do(req *http.Request, endpoint string) (*http.Response, error) {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())

	if err != nil {
		c.log.Debugw("backend request failed",
			"method", req.Method,
			"endpoint", endpoint,
			"request_id", requestID,
			"elapsed", elapsed,
			"err", err,
		)
		// The caller's context is still live, so the client timeout fired.
		var netErr net.Error
		if req.Context().Err() == nil && errors.As(err, &netErr) && netErr.Timeout() {
			timeoutErr := NewTimeoutError(endpoint, c.config.Timeout)
			timeoutErr.Cause = err
			return nil, timeoutErr
		}
		return nil, err
	}

	c.log.Debugw("backend request",
		"method", req.Method,
		"endpoint", endpoint,
		"request_id", requestID,
		"status", resp.StatusCode,
		"elapsed", elapsed,
	)
	return resp, nil
}

// readServerMessage extracts `message` from a JSON error body, returning ""
// when the body is missing, not JSON, or has no usable message.
func readServerMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var parsed ProfileResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return ""
	}
	return strings.TrimSpace(parsed.Message)
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
