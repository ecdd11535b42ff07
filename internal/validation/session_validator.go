package validation

import (
	"strings"

	"deepwork/internal/domain"
)

// SessionValidator provides validation for session records before they are written
type SessionValidator struct {
	validator *Validator
}

// NewSessionValidator creates a session validator with default limits
func NewSessionValidator() *SessionValidator {
	return NewSessionValidatorWith(NewValidator())
}

// NewSessionValidatorWith creates a session validator backed by v
func NewSessionValidatorWith(v *Validator) *SessionValidator {
	return &SessionValidator{validator: v}
}

// ValidateSession checks every column of s. Times may be empty for
// hand-entered sessions, but when present they must be canonical.
func (sv *SessionValidator) ValidateSession(s domain.Session) error {
	ve := NewValidationError()

	if s.Date == "" {
		ve.AddRequiredError("date")
	} else if !sv.validator.IsCanonicalDate(s.Date) {
		ve.AddInvalidFormatError("date", s.Date, "YYYY-MM-DD")
	}

	if s.StartTime != "" && !sv.validator.IsCanonicalClock(s.StartTime) {
		ve.AddInvalidFormatError("start_time", s.StartTime, "HH:MM:SS")
	}
	if s.EndTime != "" && !sv.validator.IsCanonicalClock(s.EndTime) {
		ve.AddInvalidFormatError("end_time", s.EndTime, "HH:MM:SS")
	}

	if s.DurationMinutes < 0 {
		ve.AddInvalidValueError("duration_minutes", s.DurationMinutes, "must not be negative")
	} else if !sv.validator.IsValidDuration(s.DurationMinutes) {
		ve.AddInvalidRangeError("duration_minutes", s.DurationMinutes, "longer than the maximum session length")
	}

	if !sv.validator.IsNonEmptyString(s.Project) {
		ve.AddRequiredError("project")
	} else if sv.validator.HasControlCharacters(s.Project) {
		ve.AddInvalidCharacterError("project", s.Project)
	}

	if maxLen := sv.validator.Limits().NotesMaxLength; !sv.validator.IsValidStringLength(s.Notes, 0, maxLen) {
		ve.AddInvalidLengthError("notes", s.Notes, 0, maxLen)
	}

	return ve.ErrOrNil()
}

// ValidateID validates a session id argument
func (sv *SessionValidator) ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		ve := NewValidationError()
		ve.AddRequiredError("id")
		return ve
	}
	return nil
}

// ValidateFilter checks that a filter's date range is ordered
func (sv *SessionValidator) ValidateFilter(f domain.SessionFilter) error {
	ve := NewValidationError()
	if !sv.validator.IsValidDateRange(f.From, f.To) {
		ve.AddInvalidRangeError("date_range", nil, "from must not be after to")
	}
	return ve.ErrOrNil()
}
