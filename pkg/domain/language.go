package domain

import (
	"fmt"
	"strings"
)

// Language is an ISO 639-1 code of a supported interface language.
type Language string

const (
	Turkish Language = "tr"
	English Language = "en"

	// DefaultLanguage is used when no language is requested and as the
	// display fallback for missing translations.
	DefaultLanguage = Turkish
)

// Languages lists the supported languages in display order.
var Languages = []Language{Turkish, English}

// ParseLanguage normalizes a language code ("EN", "en-US") into a supported Language.
// An empty string yields DefaultLanguage.
func ParseLanguage(s string) (Language, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultLanguage, nil
	}
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	for _, l := range Languages {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
}

// Text is a localized string keyed by language.
type Text map[Language]string

// Get returns the translation for lang, falling back to DefaultLanguage.
// Missing translations are never synthesized from other content.
func (t Text) Get(lang Language) string {
	if s, ok := t[lang]; ok && s != "" {
		return s
	}
	return t[DefaultLanguage]
}

// Has reports whether a non-empty translation exists for lang.
func (t Text) Has(lang Language) bool {
	return t[lang] != ""
}

// Clone returns a copy of the table.
func (t Text) Clone() Text {
	if t == nil {
		return nil
	}
	c := make(Text, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}
