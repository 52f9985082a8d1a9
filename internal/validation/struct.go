package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "roicli/internal/errors"
)

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func instance() *validator.Validate {
	structValidatorOnce.Do(func() {
		v := validator.New()
		// Use yaml tag names in error messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		structValidator = v
	})
	return structValidator
}

// Struct validates v against its `validate` tags. Failures are returned as a
// single validation AppError listing every offending field.
func Struct(v interface{}) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewAppError(apperrors.ErrTypeValidation, "validation failed", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	appErr := apperrors.NewValidationError("")
	for _, fe := range fieldErrs {
		msg := formatFieldError(fe)
		messages = append(messages, msg)
		appErr.WithContext(fe.Namespace(), msg)
	}
	appErr.Message = strings.Join(messages, "; ")
	return appErr
}

func formatFieldError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "unique":
		return fmt.Sprintf("%s must not contain duplicate %s values", field, strings.ToLower(param))
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}
