package validation

import (
	"strings"

	"deepwork/internal/domain"
)

// ProjectValidator provides validation for project operations
type ProjectValidator struct {
	validator *Validator
}

// NewProjectValidator creates a project validator with default limits
func NewProjectValidator() *ProjectValidator {
	return NewProjectValidatorWith(NewValidator())
}

// NewProjectValidatorWith creates a project validator backed by v
func NewProjectValidatorWith(v *Validator) *ProjectValidator {
	return &ProjectValidator{validator: v}
}

// ValidateName validates a project name for creation or rename
func (pv *ProjectValidator) ValidateName(name string) error {
	ve := NewValidationError()
	trimmed := strings.TrimSpace(name)

	if !pv.validator.IsNonEmptyString(trimmed) {
		ve.AddRequiredError("name")
		return ve
	}

	maxLen := pv.validator.Limits().ProjectNameMaxLength
	if !pv.validator.IsValidStringLength(trimmed, 1, maxLen) {
		ve.AddInvalidLengthError("name", trimmed, 1, maxLen)
	}
	if pv.validator.HasControlCharacters(trimmed) {
		ve.AddInvalidCharacterError("name", trimmed)
	}

	return ve.ErrOrNil()
}

// ValidateColor validates a #RRGGBB color
func (pv *ProjectValidator) ValidateColor(color string) error {
	ve := NewValidationError()
	if !pv.validator.IsHexColor(color) {
		ve.AddInvalidFormatError("color", color, "#RRGGBB")
	}
	return ve.ErrOrNil()
}

// ValidateOptionalColor accepts an empty color, which means "use the default"
func (pv *ProjectValidator) ValidateOptionalColor(color string) error {
	if color == "" {
		return nil
	}
	return pv.ValidateColor(color)
}

// ValidateProject validates a complete project record
func (pv *ProjectValidator) ValidateProject(p domain.Project) error {
	ve := NewValidationError()
	if strings.TrimSpace(p.ID) == "" {
		ve.AddRequiredError("id")
	}
	ve.Merge(pv.ValidateName(p.Name))
	ve.Merge(pv.ValidateOptionalColor(p.Color))
	return ve.ErrOrNil()
}

// ValidateID validates a project id argument
func (pv *ProjectValidator) ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		ve := NewValidationError()
		ve.AddRequiredError("id")
		return ve
	}
	return nil
}
