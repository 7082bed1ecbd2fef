package extractor

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/budgetbloom/cardledger/internal/domain"
)

var (
	numericRun = regexp.MustCompile(`\d+(?:\.\d+)?|\.\d+`)
	meridiem   = regexp.MustCompile(`(?i)(\d)\s*([ap])\.?m\.?(\s|$)`)
)

// Layouts tried in order after meridiem normalization.
var dateLayouts = []string{
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"January 2, 2006 3:04 PM",
	"January 2, 2006",
}

// ParseAmountOK extracts the first numeric run from free text.
// Currency symbols, whitespace and thousands separators are ignored; the result is never negative.
func ParseAmountOK(text string) (decimal.Decimal, bool) {
	match := numericRun.FindString(strings.ReplaceAll(text, ",", ""))
	if match == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero, false
	}

	return d.Abs(), true
}

// ParseAmount is ParseAmountOK with a zero fallback.
func ParseAmount(text string) decimal.Decimal {
	d, _ := ParseAmountOK(text)
	return d
}

// NormalizeDate collapses whitespace and separates a trailing AM/PM from the time,
// so "11/14/2025 02:52pm" becomes "11/14/2025 02:52 PM".
func NormalizeDate(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	return meridiem.ReplaceAllStringFunc(s, func(m string) string {
		sub := meridiem.FindStringSubmatch(m)
		return sub[1] + " " + strings.ToUpper(sub[2]) + "M" + sub[3]
	})
}

// ParseDate parses a statement date string in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, bool) {
	s := NormalizeDate(raw)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// ParseDateOr parses raw or returns fallback.
func ParseDateOr(raw string, loc *time.Location, fallback time.Time) time.Time {
	if t, ok := ParseDate(raw, loc); ok {
		return t
	}
	return fallback
}

// Classify maps an account label to a balance category.
// Precedence is fixed: meal, dining, express/stored, other.
func Classify(label string) domain.Category {
	l := strings.ToLower(label)

	switch {
	case strings.Contains(l, "meal"):
		return domain.CategoryMealSwipes
	case strings.Contains(l, "dining"):
		return domain.CategoryDiningDollars
	case strings.Contains(l, "express"), strings.Contains(l, "stored"):
		return domain.CategoryStoredValue
	default:
		return domain.CategoryOther
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// stripLabel returns the text following label, without separators.
func stripLabel(text, label string) string {
	_, end := indexFold(text, label)
	if end < 0 {
		return strings.TrimSpace(text)
	}
	return strings.TrimLeft(text[end:], ": \t\n")
}

// indexFold finds substr in s under Unicode case folding and returns the byte
// offsets of the match in s, or -1, -1.
func indexFold(s, substr string) (int, int) {
	for start := range s {
		rest, pos, ok := s[start:], start, true
		for _, want := range substr {
			if rest == "" {
				ok = false
				break
			}
			r, size := utf8.DecodeRuneInString(rest)
			if r != want && !strings.EqualFold(string(r), string(want)) {
				ok = false
				break
			}
			rest = rest[size:]
			pos += size
		}
		if ok {
			return start, pos
		}
	}
	return -1, -1
}

func labelKey(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}
