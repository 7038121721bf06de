// Package i18n holds the embedded message catalog and the active locale.
package i18n

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type Locale string

const (
	English Locale = "en"
	French  Locale = "fr"
)

// AvailableLocales is the toggle order used by the language switch.
var AvailableLocales = []Locale{English, French}

var localeCountry = map[Locale]string{
	English: "US",
	French:  "FR",
}

//go:embed locales/*.yaml
var localeFS embed.FS

// Translator resolves dotted message keys against the active locale.
type Translator struct {
	mu       sync.RWMutex
	locale   Locale
	messages map[Locale]map[string]string
}

// NewTranslator loads every embedded locale and activates the given one.
func NewTranslator(locale Locale) (*Translator, error) {
	messages := make(map[Locale]map[string]string, len(AvailableLocales))
	for _, l := range AvailableLocales {
		data, err := localeFS.ReadFile("locales/" + string(l) + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", l, err)
		}

		flat, err := parseCatalog(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", l, err)
		}
		messages[l] = flat
	}

	t := &Translator{messages: messages}
	if err := t.SetLocale(locale); err != nil {
		return nil, err
	}
	return t, nil
}

// MustTranslator is NewTranslator for callers holding a known-good locale.
func MustTranslator(locale Locale) *Translator {
	t, err := NewTranslator(locale)
	if err != nil {
		panic(err)
	}
	return t
}

// T returns the message for key, falling back to English and then to the key.
func (t *Translator) T(key string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if msg, ok := t.messages[t.locale][key]; ok {
		return msg
	}
	if msg, ok := t.messages[English][key]; ok {
		return msg
	}
	return key
}

func (t *Translator) Locale() Locale {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.locale
}

func (t *Translator) SetLocale(locale Locale) error {
	if _, ok := t.messages[locale]; !ok {
		return fmt.Errorf("unsupported locale: %s", locale)
	}

	t.mu.Lock()
	t.locale = locale
	t.mu.Unlock()
	return nil
}

// Toggle activates the next locale in AvailableLocales and returns it.
func (t *Translator) Toggle() Locale {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := AvailableLocales[0]
	for i, l := range AvailableLocales {
		if l == t.locale {
			next = AvailableLocales[(i+1)%len(AvailableLocales)]
			break
		}
	}
	t.locale = next
	return next
}

// CountryCode maps a locale to the ISO country used for its flag.
func CountryCode(locale Locale) string {
	return localeCountry[locale]
}

func parseCatalog(data []byte) (map[string]string, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}

	flat := make(map[string]string)
	flatten("", tree, flat)
	return flat, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for key, value := range node {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		switch v := value.(type) {
		case map[string]any:
			flatten(path, v, out)
		case string:
			out[path] = v
		default:
			out[path] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
}
