package utils

import (
	"strings"
	"unicode"
)

const (
	PhonePrefix          = "+1"
	PhoneMaxLength       = 12 // "+1" followed by 10 digits
	CorporationNumberLen = 9
)

// FormatPhone masks free-form phone input into the "+1XXXXXXXXXX" shape.
func FormatPhone(text string) string {
	var b strings.Builder
	for _, r := range text {
		if isASCIIDigit(r) || r == '+' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	switch {
	case !strings.HasPrefix(cleaned, "+"):
		if strings.HasPrefix(cleaned, "1") {
			cleaned = "+" + cleaned
		} else {
			cleaned = PhonePrefix + cleaned
		}
	case !strings.HasPrefix(cleaned, PhonePrefix):
		if cleaned == "+" {
			return PhonePrefix
		}
		cleaned = PhonePrefix + cleaned[1:]
	}

	if len(cleaned) > PhoneMaxLength {
		cleaned = cleaned[:PhoneMaxLength]
	}

	return cleaned
}

// FormatCorporationNumber keeps at most nine digits of the input.
func FormatCorporationNumber(text string) string {
	var b strings.Builder
	for _, r := range text {
		if !isASCIIDigit(r) {
			continue
		}
		if b.Len() == CorporationNumberLen {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FlagEmoji converts an ISO 3166-1 alpha-2 country code into its flag using
// regional indicator symbols.
func FlagEmoji(countryCode string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(countryCode) {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String()
}

// TruncateString truncates a string to a maximum number of runes with ellipsis
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return string(runes[:maxLen])
	}

	return string(runes[:maxLen-3]) + "..."
}

// unicode.IsDigit accepts non-ASCII digits, which the backend rejects.
func isASCIIDigit(r rune) bool {
	return r <= unicode.MaxASCII && unicode.IsDigit(r)
}
