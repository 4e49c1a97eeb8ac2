package common

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/roastume/constants"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// ValidationRule checks a single value.
type ValidationRule func(fieldName string, value any) *ValidationError

// Validator collects rule failures across fields.
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{errors: make([]ValidationError, 0)}
}

// Field validates a field and collects errors
func (v *Validator) Field(fieldName string, value any, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// ErrorMessage returns a combined error message as string
func (v *Validator) ErrorMessage() string {
	if !v.HasErrors() {
		return ""
	}
	messages := make([]string, 0, len(v.errors))
	for _, err := range v.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Required rejects nil, empty strings and empty byte slices.
func Required(fieldName string, value any) *ValidationError {
	switch v := value.(type) {
	case nil:
		return &ValidationError{Field: fieldName, Message: "is required"}
	case string:
		if strings.TrimSpace(v) == "" {
			return &ValidationError{Field: fieldName, Message: "is required"}
		}
	case []byte:
		if len(v) == 0 {
			return &ValidationError{Field: fieldName, Message: "is required"}
		}
	}
	return nil
}

// MaxBytes limits the size of a []byte value.
func MaxBytes(max int) ValidationRule {
	return func(fieldName string, value any) *ValidationError {
		b, ok := value.([]byte)
		if !ok || max <= 0 || len(b) <= max {
			return nil
		}
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s (%s)", constants.MsgFileTooLarge, FormatFileSize(int64(len(b)))),
		}
	}
}

// PDFContent requires a []byte value to start with the PDF magic header.
func PDFContent(fieldName string, value any) *ValidationError {
	b, ok := value.([]byte)
	if !ok || len(b) == 0 {
		return nil
	}
	if !bytes.HasPrefix(b, []byte(constants.PDFMagic)) {
		return &ValidationError{Field: fieldName, Message: constants.MsgInvalidType}
	}
	return nil
}

// ValidateAndReturnError validates and returns InvalidArgumentError if validation fails
func ValidateAndReturnError(validator *Validator) error {
	if validator.HasErrors() {
		return InvalidArgumentError(validator.ErrorMessage())
	}
	return nil
}

// FormatFileSize renders a byte count as B, KB or MB.
func FormatFileSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}
