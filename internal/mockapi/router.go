// Package mockapi serves a local stand-in for the onboarding backend: the
// corporation-number lookup and the profile submission endpoint.  It backs
// the onboard-mockapi command and the API client tests.
package mockapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"rhystmorgan/onboardTerm/internal/api"
	"rhystmorgan/onboardTerm/internal/i18n"
	"rhystmorgan/onboardTerm/internal/utils"
	"rhystmorgan/onboardTerm/internal/validation"
)

const invalidCorporationMessage = "Invalid corporation number"

// Options configures the mock backend.
type Options struct {
	// Rejected maps corporation numbers to the message returned for them.
	// An empty message yields {"valid": false} with no message.
	Rejected map[string]string
	// Latency is added before every response.
	Latency time.Duration
	Log     *zap.SugaredLogger
}

// Server keeps the submissions it accepted so tests can inspect them.
type Server struct {
	opts   Options
	schema *validation.Schema
	log    *zap.SugaredLogger

	mu       sync.Mutex
	profiles []api.ProfileInput
	lookups  int
}

func NewServer(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{
		opts:   opts,
		schema: validation.NewSchema(i18n.MustTranslator(i18n.English)),
		log:    log,
	}
}

// Routes returns the chi router for both endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.delay)

	r.Get("/corporation-number/{number}", s.handleCorporationNumber)
	r.Post("/profile-details", s.handleProfileDetails)

	return r
}

func (s *Server) handleCorporationNumber(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	s.mu.Lock()
	s.lookups++
	s.mu.Unlock()

	if malformedCorporationNumber(number) {
		writeJSON(w, http.StatusBadRequest, api.ProfileResponse{Message: invalidCorporationMessage})
		return
	}

	if msg, rejected := s.opts.Rejected[number]; rejected {
		s.log.Infow("corporation number rejected", "number", number, "request_id", middleware.GetReqID(r.Context()))
		writeJSON(w, http.StatusOK, api.CorporationResponse{CorporationNumber: number, Valid: false, Message: msg})
		return
	}

	writeJSON(w, http.StatusOK, api.CorporationResponse{CorporationNumber: number, Valid: true})
}

func (s *Server) handleProfileDetails(w http.ResponseWriter, r *http.Request) {
	var input api.ProfileInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, api.ProfileResponse{Message: "Invalid request body"})
		return
	}

	data := validation.ProfileFormData{
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		Phone:             input.Phone,
		CorporationNumber: input.CorporationNumber,
	}
	if errs := s.schema.Validate(data); errs.HasErrors() {
		first := errs.Err().(validation.ValidationErrors)[0]
		writeJSON(w, http.StatusBadRequest, api.ProfileResponse{Message: first.Message})
		return
	}

	if _, rejected := s.opts.Rejected[input.CorporationNumber]; rejected {
		writeJSON(w, http.StatusBadRequest, api.ProfileResponse{Message: invalidCorporationMessage})
		return
	}

	s.mu.Lock()
	s.profiles = append(s.profiles, input)
	s.mu.Unlock()

	s.log.Infow("profile accepted",
		"corporation_number", input.CorporationNumber,
		"request_id", middleware.GetReqID(r.Context()),
	)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Latency > 0 {
			select {
			case <-time.After(s.opts.Latency):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Profiles returns a copy of every accepted submission.
func (s *Server) Profiles() []api.ProfileInput {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]api.ProfileInput, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// Lookups reports how many lookup requests were served.
func (s *Server) Lookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups
}

// ParseRejected turns "123456789=reason,987654321" into a Rejected map.
func ParseRejected(spec string) map[string]string {
	out := make(map[string]string)
	for _, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		number, msg, _ := strings.Cut(item, "=")
		out[strings.TrimSpace(number)] = strings.TrimSpace(msg)
	}
	return out
}

func malformedCorporationNumber(number string) bool {
	return len(number) != utils.CorporationNumberLen || utils.FormatCorporationNumber(number) != number
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
