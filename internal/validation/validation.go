package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/habitlog/internal/constants"
	apperrors "github.com/julianstephens/habitlog/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so messages match what API clients sent
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	if err := v.RegisterValidation("calendar_date", func(fl validator.FieldLevel) bool {
		return IsDate(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("achievement_level", func(fl validator.FieldLevel) bool {
		return constants.AchievementLevel(fl.Field().Int()).Valid()
	}); err != nil {
		panic(err)
	}

	return v
}

// Struct validates a tagged input struct and returns a validation AppError
// describing the first failing field.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.Validation("invalid input")
	}
	return &apperrors.AppError{
		Kind:    apperrors.KindValidation,
		Message: describe(fieldErrs[0]),
		Err:     err,
	}
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "achievement_level":
		return fmt.Sprintf("%s must be one of 1, 2, 3", field)
	case "calendar_date":
		return fmt.Sprintf("%s must be a calendar date in YYYY-MM-DD format", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// IsDate reports whether s is a well-formed calendar date (YYYY-MM-DD)
func IsDate(s string) bool {
	if len(s) != len(constants.DateFormat) {
		return false
	}
	_, err := time.Parse(constants.DateFormat, s)
	return err == nil
}

// Date returns a validation error unless s is a well-formed calendar date
func Date(s string) error {
	if !IsDate(s) {
		return apperrors.Validation("date must be a calendar date in YYYY-MM-DD format")
	}
	return nil
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
