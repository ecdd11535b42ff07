package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"deepwork/internal/timeutil"
)

// Field identifies an editable session column.
type Field string

const (
	FieldDate            Field = "date"
	FieldProject         Field = "project"
	FieldStartTime       Field = "start_time"
	FieldEndTime         Field = "end_time"
	FieldNotes           Field = "notes"
	FieldDurationMinutes Field = "duration_minutes"
)

// ErrUnknownField is returned by ParseField for identifiers outside the editable set.
var ErrUnknownField = errors.New("unknown session field")

// ErrDerivedDuration is returned when setting the duration of a session that
// has both time boundaries; the duration follows from them.
var ErrDerivedDuration = errors.New("duration follows start_time and end_time, edit those instead")

type fieldSetter func(s *Session, value string) error

var fieldSetters = map[Field]fieldSetter{
	FieldDate: func(s *Session, value string) error {
		date, err := timeutil.CanonicalDate(value)
		if err != nil {
			return err
		}
		s.Date = date
		return nil
	},
	FieldProject: func(s *Session, value string) error {
		s.Project = strings.TrimSpace(value)
		return nil
	},
	FieldStartTime: func(s *Session, value string) error {
		clock, err := timeutil.CanonicalClock(value)
		if err != nil {
			return err
		}
		s.StartTime = clock
		*s = s.RecomputeDuration()
		return nil
	},
	FieldEndTime: func(s *Session, value string) error {
		clock, err := timeutil.CanonicalClock(value)
		if err != nil {
			return err
		}
		s.EndTime = clock
		*s = s.RecomputeDuration()
		return nil
	},
	FieldNotes: func(s *Session, value string) error {
		s.Notes = value
		return nil
	},
	FieldDurationMinutes: func(s *Session, value string) error {
		if s.HasTimes() {
			return ErrDerivedDuration
		}
		minutes, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("duration must be a whole number of minutes: %q", value)
		}
		if minutes < 0 {
			return fmt.Errorf("duration must not be negative: %d", minutes)
		}
		s.DurationMinutes = minutes
		return nil
	},
}

// EditableFields lists the fields accepted by ParseField, in column order.
func EditableFields() []Field {
	return []Field{FieldDate, FieldStartTime, FieldEndTime, FieldDurationMinutes, FieldProject, FieldNotes}
}

// ParseField maps a column name onto a Field.
func ParseField(name string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := fieldSetters[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// IsTimeBoundary reports whether editing f triggers a duration recompute.
func (f Field) IsTimeBoundary() bool {
	return f == FieldStartTime || f == FieldEndTime
}

// Apply returns a copy of s with the field set to value. Time boundary edits
// recompute the duration when both boundaries are present; the duration
// itself can only be set on sessions without them.
func (f Field) Apply(s Session, value string) (Session, error) {
	set, ok := fieldSetters[f]
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownField, string(f))
	}
	if err := set(&s, value); err != nil {
		return s, err
	}
	return s, nil
}

func (f Field) String() string {
	return string(f)
}
