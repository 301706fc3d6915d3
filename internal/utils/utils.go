package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const DateLayout = "2006-01-02"

func GenerateUUID() string {
	return uuid.New().String()
}

// IsUUID reports whether s parses as a uuid.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

var fold = cases.Fold()

// NormalizeEmail trims and case-folds an address so lookups match however
// the user typed it.
func NormalizeEmail(email string) string {
	return fold.String(norm.NFC.String(strings.TrimSpace(email)))
}

// NormalizeName trims a display name, collapses inner whitespace and
// composes it to NFC.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.Join(strings.Fields(name), " "))
}

// TitleRole renders a role or category for display, e.g. "non_technical"
// becomes "Non Technical".
func TitleRole(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

// ParseDate parses an ISO calendar date, accepting unpadded month and day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-1-2", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid date %q", s)
	}
	return t, nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DateLayout,
}

// ParseTime parses an ISO timestamp as sent by datetime-local inputs.
// Values without an offset are read as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("invalid time %q", s)
}
