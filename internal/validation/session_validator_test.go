package validation

import (
	"testing"
	"time"

	"deepwork/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSession() domain.Session {
	return domain.Session{
		ID:              "b0c1",
		Date:            "2024-01-01",
		StartTime:       "09:00:00",
		EndTime:         "10:30:00",
		DurationMinutes: 90,
		Project:         "Writing",
		Notes:           "draft",
	}
}

func TestSessionValidator_ValidateSession(t *testing.T) {
	validator := NewSessionValidator()

	tests := []struct {
		name        string
		mutate      func(s *domain.Session)
		expectField string
	}{
		{name: "valid session", mutate: func(s *domain.Session) {}},
		{name: "times are optional", mutate: func(s *domain.Session) { s.StartTime, s.EndTime = "", "" }},
		{name: "missing date", mutate: func(s *domain.Session) { s.Date = "" }, expectField: "date"},
		{name: "non canonical date", mutate: func(s *domain.Session) { s.Date = "2024/01/01" }, expectField: "date"},
		{name: "bad start", mutate: func(s *domain.Session) { s.StartTime = "9am" }, expectField: "start_time"},
		{name: "bad end", mutate: func(s *domain.Session) { s.EndTime = "10:30" }, expectField: "end_time"},
		{name: "negative duration", mutate: func(s *domain.Session) { s.DurationMinutes = -1 }, expectField: "duration_minutes"},
		{name: "missing project", mutate: func(s *domain.Session) { s.Project = " " }, expectField: "project"},
		{name: "control characters in project", mutate: func(s *domain.Session) { s.Project = "a\x00b" }, expectField: "project"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSession()
			tt.mutate(&s)

			err := validator.ValidateSession(s)
			if tt.expectField == "" {
				assert.NoError(t, err)
				return
			}
			ve, ok := AsValidationError(err)
			require.True(t, ok, "expected ValidationError, got %v", err)
			assert.NotEmpty(t, ve.GetFieldErrors(tt.expectField))
		})
	}
}

func TestSessionValidator_MaxSessionMinutes(t *testing.T) {
	validator := NewSessionValidatorWith(NewValidatorWithLimits(Limits{MaxSessionMinutes: 24 * 60}))

	s := validSession()
	s.DurationMinutes = 24*60 + 1
	ve, ok := AsValidationError(validator.ValidateSession(s))
	require.True(t, ok)
	assert.Equal(t, ErrorTypeInvalidRange, ve.GetFieldErrors("duration_minutes")[0].Type)
}

func TestSessionValidator_NotesLength(t *testing.T) {
	validator := NewSessionValidatorWith(NewValidatorWithLimits(Limits{NotesMaxLength: 4}))

	s := validSession()
	s.Notes = "short"
	assert.Error(t, validator.ValidateSession(s))

	s.Notes = "ok, multi\nline"[:4]
	assert.NoError(t, validator.ValidateSession(s))
}

func TestSessionValidator_ValidateFilter(t *testing.T) {
	validator := NewSessionValidator()
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, validator.ValidateFilter(domain.SessionFilter{From: &to, To: &from}))
	assert.Error(t, validator.ValidateFilter(domain.SessionFilter{From: &from, To: &to}))
	assert.NoError(t, validator.ValidateFilter(domain.SessionFilter{}))
}

func TestSessionValidator_ValidateID(t *testing.T) {
	validator := NewSessionValidator()
	assert.NoError(t, validator.ValidateID("b0c1"))
	assert.Error(t, validator.ValidateID(""))
}
