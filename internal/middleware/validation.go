package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/fran-as/millDischargeDashboard/internal/dataset"
	apierrors "github.com/fran-as/millDischargeDashboard/internal/errors"
)

// maxColumnNameLen bounds column names accepted from clients.
const maxColumnNameLen = 128

// Validator checks query and command structs using struct tags.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the dashboard's custom tags.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterValidation("timestamp", isTimestamp)
	v.RegisterValidation("column", isColumnName)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// ValidateStruct validates a struct and returns an APIError listing every
// failing field.
func (m *Validator) ValidateStruct(v interface{}) error {
	err := m.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidParameter("request", err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "timestamp":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD) or timestamp (YYYY-MM-DD HH:MM:SS)", field)
	case "column":
		return fmt.Sprintf("%s must be a column name", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isTimestamp accepts the layouts the canonical table parser understands.
func isTimestamp(fl validator.FieldLevel) bool {
	_, ok := dataset.ParseTimestamp(fl.Field().String())
	return ok
}

// isColumnName rejects empty, oversized, or list-breaking names.
func isColumnName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || len(name) > maxColumnNameLen {
		return false
	}
	for _, r := range name {
		if r == ',' || unicode.IsControl(r) {
			return false
		}
	}
	return true
}
