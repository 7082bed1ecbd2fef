package domain

import (
	"fmt"
	"strings"
	"time"
)

const scopeDateLayout = "2006-01-02"

// ValidateSessionKey rejects empty credentials.
func ValidateSessionKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrMissingSessionKey
	}
	return nil
}

// MaskSessionKey keeps the first four characters of a key for log correlation.
func MaskSessionKey(key string) string {
	runes := []rune(key)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:4]) + "…"
}

// Normalize fills defaults and validates the scope.
func (s Scope) Normalize() (Scope, error) {
	if s.Page == "" {
		s.Page = PageMain
	}

	switch s.Page {
	case PageMain:
		return s, nil
	case PageStatement:
	default:
		return s, fmt.Errorf("%w: unknown page %q", ErrInvalidScope, s.Page)
	}

	for _, d := range []string{s.StartDate, s.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(scopeDateLayout, d); err != nil {
			return s, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidScope, d)
		}
	}

	if s.StartDate != "" && s.EndDate != "" && s.StartDate > s.EndDate {
		return s, fmt.Errorf("%w: start date after end date", ErrInvalidScope)
	}

	return s, nil
}
