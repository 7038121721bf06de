// Package profile maps validated form data onto the profile submission
// request and turns the backend's answer into a user-facing notice.
package profile

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"rhystmorgan/onboardTerm/internal/api"
	"rhystmorgan/onboardTerm/internal/metrics"
	"rhystmorgan/onboardTerm/internal/validation"
)

// ProfileClient is the part of the API client the submitter needs.
type ProfileClient interface {
	PostProfile(ctx context.Context, input api.ProfileInput) error
}

type Translator interface {
	T(key string) string
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is the one-shot alert shown after a submission attempt.
type Notice struct {
	Kind    NoticeKind
	Title   string
	Message string
}

type Submitter struct {
	client     ProfileClient
	translator Translator
	log        *zap.SugaredLogger
}

func NewSubmitter(client ProfileClient, translator Translator, log *zap.SugaredLogger) *Submitter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Submitter{client: client, translator: translator, log: log}
}

// ToRequest trims the names and corporation number. The phone is sent as
// entered; the formatter already guarantees its shape.
func ToRequest(data validation.ProfileFormData) api.ProfileInput {
	return api.ProfileInput{
		FirstName:         strings.TrimSpace(data.FirstName),
		LastName:          strings.TrimSpace(data.LastName),
		Phone:             data.Phone,
		CorporationNumber: strings.TrimSpace(data.CorporationNumber),
	}
}

// Submit posts the profile and never fails: every outcome becomes a Notice.
func (s *Submitter) Submit(ctx context.Context, data validation.ProfileFormData) Notice {
	err := s.client.PostProfile(ctx, ToRequest(data))
	if err == nil {
		metrics.ProfileSubmissionsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
		s.log.Infow("profile submitted")
		return Notice{
			Kind:    NoticeSuccess,
			Title:   s.translator.T("alerts.success.title"),
			Message: s.translator.T("alerts.success.message"),
		}
	}

	metrics.ProfileSubmissionsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
	s.log.Warnw("profile submission failed",
		"err", err,
		"reason", api.ClassifyError(err).UserMessage(),
	)

	return Notice{
		Kind:    NoticeError,
		Title:   s.translator.T("alerts.error.title"),
		Message: s.failureMessage(err),
	}
}

func (s *Submitter) failureMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.ServerMessage != "" {
		return apiErr.ServerMessage
	}
	return s.translator.T("alerts.error.message")
}
