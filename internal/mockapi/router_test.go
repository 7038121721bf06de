package mockapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rhystmorgan/onboardTerm/internal/api"
)

func serve(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func TestCorporationNumberLookup(t *testing.T) {
	s := NewServer(Options{Rejected: map[string]string{"111111111": "Not registered"}})

	tests := []struct {
		name     string
		number   string
		status   int
		expected api.CorporationResponse
	}{
		{"valid", "123456789", http.StatusOK, api.CorporationResponse{CorporationNumber: "123456789", Valid: true}},
		{"rejected", "111111111", http.StatusOK, api.CorporationResponse{CorporationNumber: "111111111", Message: "Not registered"}},
		{"too short", "12345", http.StatusBadRequest, api.CorporationResponse{Message: "Invalid corporation number"}},
		{"non-digit", "12345678x", http.StatusBadRequest, api.CorporationResponse{Message: "Invalid corporation number"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, s, http.MethodGet, "/corporation-number/"+tt.number, "")
			if rec.Code != tt.status {
				t.Fatalf("Expected status %d, got %d", tt.status, rec.Code)
			}

			var got api.CorporationResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("Failed to decode body: %v", err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Response mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if s.Lookups() != len(tests) {
		t.Errorf("Expected %d lookups, got %d", len(tests), s.Lookups())
	}
}

func TestProfileDetails(t *testing.T) {
	s := NewServer(Options{Rejected: map[string]string{"111111111": ""}})

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{
			name:   "accepted",
			body:   `{"firstName":"John","lastName":"Doe","phone":"+11234567890","corporationNumber":"123456789"}`,
			status: http.StatusOK,
		},
		{
			name:    "malformed body",
			body:    `{`,
			status:  http.StatusBadRequest,
			message: "Invalid request body",
		},
		{
			name:    "missing first name",
			body:    `{"lastName":"Doe","phone":"+11234567890","corporationNumber":"123456789"}`,
			status:  http.StatusBadRequest,
			message: "First name is required",
		},
		{
			name:    "bad phone",
			body:    `{"firstName":"John","lastName":"Doe","phone":"1234567890","corporationNumber":"123456789"}`,
			status:  http.StatusBadRequest,
			message: "Phone number must be in format +1XXXXXXXXXX",
		},
		{
			name:    "rejected corporation",
			body:    `{"firstName":"John","lastName":"Doe","phone":"+11234567890","corporationNumber":"111111111"}`,
			status:  http.StatusBadRequest,
			message: "Invalid corporation number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, s, http.MethodPost, "/profile-details", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("Expected status %d, got %d", tt.status, rec.Code)
			}
			if tt.message == "" {
				return
			}

			var got api.ProfileResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("Failed to decode body: %v", err)
			}
			if got.Message != tt.message {
				t.Errorf("Expected message %q, got %q", tt.message, got.Message)
			}
		})
	}

	want := []api.ProfileInput{{FirstName: "John", LastName: "Doe", Phone: "+11234567890", CorporationNumber: "123456789"}}
	if diff := cmp.Diff(want, s.Profiles()); diff != "" {
		t.Errorf("Stored profiles mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejected(t *testing.T) {
	got := ParseRejected(" 111111111=Not registered , 222222222,, ")
	want := map[string]string{
		"111111111": "Not registered",
		"222222222": "",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseRejected mismatch (-want +got):\n%s", diff)
	}
}
