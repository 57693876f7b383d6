package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/techno-flashi/techno-flashi-sub000/internal/domain"
	"github.com/techno-flashi/techno-flashi-sub000/pkg/response"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// report json names, not Go field names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	validate.RegisterValidation("event_type", validateEventType)
	validate.RegisterValidation("position", validatePosition)
}

func Validate(data any) []response.ValidationError {
	var validationErrors []response.ValidationError

	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []response.ValidationError{{Field: "body", Message: err.Error()}}
	}

	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, response.ValidationError{
			Field:   fe.Field(),
			Message: getErrorMessage(fe),
		})
	}

	return validationErrors
}

func validateEventType(fl validator.FieldLevel) bool {
	_, ok := domain.ParseEventType(fl.Field().String())
	return ok
}

func validatePosition(fl validator.FieldLevel) bool {
	_, ok := domain.ParsePosition(fl.Field().String())
	return ok
}

func getErrorMessage(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "event_type":
		return fmt.Sprintf("%s must be one of impression, load, click, hover, close, conversion, error", field)
	case "position":
		return fmt.Sprintf("%s is not a known ad position", field)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, err.Param())
	case "numeric":
		return fmt.Sprintf("%s must be a number", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, err.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
