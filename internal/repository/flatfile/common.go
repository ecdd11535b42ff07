package flatfile

import (
	"context"
	"fmt"
	"os"

	"deepwork/internal/errors"
	"deepwork/internal/validation"
)

// HandleStorageError converts file system errors to structured app errors
func HandleStorageError(operation, path string, err error) error {
	return errors.NewStorageError(operation, path, err)
}

// HandleValidationError wraps field problems found before a write
func HandleValidationError(message string, err error) error {
	if err == nil {
		return nil
	}
	return errors.NewValidationError(message, err)
}

// readFile returns the file content, or exists=false when the file is absent.
func readFile(ctx context.Context, operation, path string) (data []byte, exists bool, err error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, err = os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, HandleStorageError(operation, path, err)
	}
	return data, true, nil
}

// unknownFieldError reports an edit of a column outside the editable set.
func unknownFieldError(name string) error {
	ve := validation.NewValidationError()
	ve.AddInvalidValueError("field", name,
		"must be one of date, start_time, end_time, duration_minutes, project, notes")
	return HandleValidationError("invalid session field", ve)
}

// fieldValueError reports a value the field setter rejected.
func fieldValueError(field, value string, cause error) error {
	ve := validation.NewValidationError()
	ve.AddInvalidValueError(field, value, cause.Error())
	return HandleValidationError("invalid session value", ve)
}

// malformedFileError refuses a rewrite of a file with broken quoting.
func malformedFileError(path string, malformed []error) error {
	return errors.NewStorageError("rewrite sessions", path, malformed[0]).
		WithContext("hint", fmt.Sprintf("%d row(s) with malformed quoting, first %v. Fix the file by hand before changing it", len(malformed), malformed[0]))
}
