package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate is the global validator instance
var Validate *validator.Validate

// ActionTypes are the user actions the fraud engine gates
var ActionTypes = []string{"create_listing", "create_booking", "process_payment", "send_message"}

func init() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("action_type", validateActionType)
}

// ValidationError collects field-level validation failures
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

// NewValidationError converts validator errors keyed by field name
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	v := &ValidationError{Errors: make(map[string]string, len(errs))}
	for _, fe := range errs {
		v.AddError(strings.ToLower(fe.Field()), describe(fe))
	}
	return v
}

// AddError records a failure for field
func (v *ValidationError) AddError(field, message string) {
	if v.Errors == nil {
		v.Errors = make(map[string]string)
	}
	v.Errors[field] = message
}

// HasErrors reports whether any failure was recorded
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationError) Error() string {
	fields := make([]string, 0, len(v.Errors))
	for f := range v.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, v.Errors[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "action_type":
		return "must be one of " + strings.Join(ActionTypes, ", ")
	case "ip":
		return "must be an IP address"
	case "max":
		return "must be at most " + fe.Param()
	case "gte", "gt", "min":
		return "must be at least " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// ValidateStruct validates a struct and returns a ValidationError if validation fails
func ValidateStruct(s interface{}) error {
	err := Validate.Struct(s)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

func validateActionType(fl validator.FieldLevel) bool {
	return contains(ActionTypes, fl.Field().String())
}

func contains(slice []string, item string) bool {
	item = strings.ToLower(strings.TrimSpace(item))
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
