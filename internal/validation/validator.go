package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"deepwork/internal/timeutil"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Limits bounds user-supplied values. Zero lengths fall back to the
// defaults; a zero MaxSessionMinutes means no cap.
type Limits struct {
	ProjectNameMaxLength int
	NotesMaxLength       int
	MaxSessionMinutes    int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		ProjectNameMaxLength: 100,
		NotesMaxLength:       2000,
	}
}

// Validator provides common validation utilities
type Validator struct {
	limits Limits
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{limits: DefaultLimits()}
}

// NewValidatorWithLimits creates a validator with the given limits
func NewValidatorWithLimits(limits Limits) *Validator {
	defaults := DefaultLimits()
	if limits.ProjectNameMaxLength <= 0 {
		limits.ProjectNameMaxLength = defaults.ProjectNameMaxLength
	}
	if limits.NotesMaxLength <= 0 {
		limits.NotesMaxLength = defaults.NotesMaxLength
	}
	if limits.MaxSessionMinutes < 0 {
		limits.MaxSessionMinutes = 0
	}
	return &Validator{limits: limits}
}

// Limits returns the effective limits.
func (v *Validator) Limits() Limits {
	return v.limits
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if a trimmed string's rune count is within [min, max]
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := utf8.RuneCountInString(strings.TrimSpace(s))
	return length >= min && length <= max
}

// HasControlCharacters reports whether s contains control characters such as
// newlines or tabs.
func (v *Validator) HasControlCharacters(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}

// IsHexColor checks for the #RRGGBB form
func (v *Validator) IsHexColor(color string) bool {
	return hexColorRegex.MatchString(color)
}

// IsCanonicalDate checks for a real calendar date written as YYYY-MM-DD
func (v *Validator) IsCanonicalDate(s string) bool {
	t, err := time.Parse(timeutil.DateLayout, s)
	return err == nil && t.Format(timeutil.DateLayout) == s
}

// IsCanonicalClock checks for a time of day written as HH:MM:SS
func (v *Validator) IsCanonicalClock(s string) bool {
	t, err := time.Parse(timeutil.ClockLayout, s)
	return err == nil && t.Format(timeutil.ClockLayout) == s
}

// IsValidDuration checks that minutes is non-negative and within the configured cap
func (v *Validator) IsValidDuration(minutes int) bool {
	if minutes < 0 {
		return false
	}
	return v.limits.MaxSessionMinutes == 0 || minutes <= v.limits.MaxSessionMinutes
}

// IsValidDateRange checks if a date range is logical
func (v *Validator) IsValidDateRange(from, to *time.Time) bool {
	if from == nil || to == nil {
		return true
	}
	return !from.After(*to)
}
