package i18n

import (
	"testing"
)

func TestTranslatorLooksUpDottedKeys(t *testing.T) {
	tr, err := NewTranslator(English)
	if err != nil {
		t.Fatalf("Failed to create translator: %v", err)
	}

	tests := map[string]string{
		"profileForm.fields.firstName.label":                  "First Name",
		"profileForm.fields.phone.placeholder":                "+1XXXXXXXXXX",
		"profileForm.fields.corporationNumber.placeholder":    "Enter 9-digit corporation number",
		"profileForm.fields.corporationNumber.errors.invalid": "Invalid corporation number",
		"alerts.error.message":                                "Failed to submit profile. Please try again.",
	}

	for key, expected := range tests {
		if got := tr.T(key); got != expected {
			t.Errorf("Expected %s = %q, got %q", key, expected, got)
		}
	}
}

func TestTranslatorFallbacks(t *testing.T) {
	tr := MustTranslator(French)

	if got := tr.T("profileForm.fields.firstName.label"); got != "Prénom" {
		t.Errorf("Expected French label, got %q", got)
	}

	if got := tr.T("missing.key"); got != "missing.key" {
		t.Errorf("Expected key echo for missing message, got %q", got)
	}

	// Remove a French entry to exercise the English fallback.
	delete(tr.messages[French], "app.title")
	if got := tr.T("app.title"); got != "Onboarding Form" {
		t.Errorf("Expected English fallback, got %q", got)
	}
}

func TestTranslatorToggle(t *testing.T) {
	tr := MustTranslator(English)

	if next := tr.Toggle(); next != French {
		t.Errorf("Expected toggle to French, got %s", next)
	}
	if next := tr.Toggle(); next != English {
		t.Errorf("Expected toggle back to English, got %s", next)
	}
	if tr.Locale() != English {
		t.Errorf("Expected active locale en, got %s", tr.Locale())
	}
}

func TestLocalesShareKeys(t *testing.T) {
	tr := MustTranslator(English)

	for key := range tr.messages[English] {
		if _, ok := tr.messages[French][key]; !ok {
			t.Errorf("Expected French catalog to define %s", key)
		}
	}
}

func TestSetLocaleRejectsUnknown(t *testing.T) {
	tr := MustTranslator(English)
	if err := tr.SetLocale("de"); err == nil {
		t.Error("Expected error for unsupported locale")
	}
	if _, err := NewTranslator("xx"); err == nil {
		t.Error("Expected error creating translator with unsupported locale")
	}
}

func TestCountryCode(t *testing.T) {
	if CountryCode(English) != "US" || CountryCode(French) != "FR" {
		t.Errorf("Unexpected country codes: %s %s", CountryCode(English), CountryCode(French))
	}
}
