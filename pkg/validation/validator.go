package validation

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/richxcame/car-rental/pkg/common"
)

// Validate is the global validator instance
var Validate *validator.Validate

func init() {
	Validate = validator.New()
	Validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	_ = Validate.RegisterValidation("odometer", validateOdometer)
	_ = Validate.RegisterValidation("plate", validatePlate)
}

// Register adds a custom string rule under tag. Domain packages use it for
// their enums so the validator does not depend on them.
func Register(tag string, valid func(string) bool) {
	_ = Validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return valid(fl.Field().String())
	})
}

// ValidationError collects field errors keyed by JSON field name
type ValidationError struct {
	Errors map[string]string
}

// NewValidationError converts validator errors
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	v := &ValidationError{Errors: make(map[string]string, len(errs))}
	for _, fe := range errs {
		v.AddError(fe.Field(), describe(fe))
	}
	return v
}

// AddError records a message for field
func (v *ValidationError) AddError(field, message string) {
	if v.Errors == nil {
		v.Errors = make(map[string]string)
	}
	v.Errors[field] = message
}

// HasErrors reports whether any field failed
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
		parts = append(parts, f+": "+v.Errors[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AppError maps the validation failure to a 400
func (v *ValidationError) AppError() *common.AppError {
	appErr := common.NewAppError(http.StatusBadRequest, common.CodeValidation, v.Error(), common.ErrValidation)
	appErr.Fields = make(map[string]string, len(v.Errors))
	for field, msg := range v.Errors {
		appErr.Fields[field] = msg
	}
	return appErr
}

// ValidateStruct validates s and returns a 400 AppError on failure
func ValidateStruct(s interface{}) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return NewValidationError(validationErrors).AppError()
	}
	return common.NewBadRequestError("invalid request", err)
}

// ValidateDateRange checks that end is not before start. A nil end passes.
func ValidateDateRange(field string, start time.Time, end *time.Time) error {
	if end == nil || !end.Before(start) {
		return nil
	}
	v := &ValidationError{}
	v.AddError(field, "must not be before start_date")
	return v.AppError()
}

func validateOdometer(fl validator.FieldLevel) bool {
	km := fl.Field().Float()
	return km >= 0 && !math.IsInf(km, 0) && !math.IsNaN(km)
}

func validatePlate(fl validator.FieldLevel) bool {
	plate := strings.TrimSpace(fl.Field().String())
	if len(plate) < 2 || len(plate) > 20 {
		return false
	}
	for _, r := range plate {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == ' ') {
			return false
		}
	}
	return true
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt", "gte", "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lt", "lte", "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "odometer":
		return "must be a non-negative reading"
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}
