package validation

import (
	"strings"
	"testing"

	"deepwork/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectValidator_ValidateName(t *testing.T) {
	validator := NewProjectValidator()

	tests := []struct {
		name        string
		input       string
		expectError bool
		errorType   ValidationErrorType
	}{
		{"Valid name", "Writing", false, ""},
		{"Unicode name", "Schreiben für Kunden", false, ""},
		{"Empty name", "", true, ErrorTypeRequired},
		{"Whitespace only", "   ", true, ErrorTypeRequired},
		{"Too long", strings.Repeat("a", 101), true, ErrorTypeInvalidLength},
		{"Embedded newline", "Writ\ning", true, ErrorTypeInvalidCharacter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateName(tt.input)
			if !tt.expectError {
				assert.NoError(t, err)
				return
			}
			ve, ok := AsValidationError(err)
			require.True(t, ok, "expected ValidationError, got %v", err)
			require.NotEmpty(t, ve.Errors)
			assert.Equal(t, tt.errorType, ve.Errors[0].Type)
		})
	}
}

func TestProjectValidator_ValidateColor(t *testing.T) {
	validator := NewProjectValidator()

	assert.NoError(t, validator.ValidateColor("#FF00aa"))
	assert.Error(t, validator.ValidateColor(""))
	assert.Error(t, validator.ValidateColor("#FF00a"))
	assert.NoError(t, validator.ValidateOptionalColor(""))
	assert.Error(t, validator.ValidateOptionalColor("blue"))
}

func TestProjectValidator_ValidateProject(t *testing.T) {
	validator := NewProjectValidator()

	assert.NoError(t, validator.ValidateProject(domain.Project{ID: "1", Name: "Writing", Color: "#000000"}))

	err := validator.ValidateProject(domain.Project{Name: "", Color: "nope"})
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.GetFieldErrors("id"), 1)
	assert.Len(t, ve.GetFieldErrors("name"), 1)
	assert.Len(t, ve.GetFieldErrors("color"), 1)
}

func TestProjectValidator_ValidateID(t *testing.T) {
	validator := NewProjectValidator()

	assert.NoError(t, validator.ValidateID("20240101-090000-abcde"))
	assert.Error(t, validator.ValidateID(" "))
}
