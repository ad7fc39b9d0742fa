// Package validation checks typed request structs and reports failures as field errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/go-playground/validator/v10"
)

var alphaDash = regexp.MustCompile(`^[\pL\pM\pN_-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	if err := v.RegisterValidation("alpha_dash", func(fl validator.FieldLevel) bool {
		return alphaDash.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register alpha_dash: %v", err))
	}
	return v
}

// Validate returns nil or a *apperr.ValidationError describing every failed rule.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate request: %w", err)
	}

	ve := apperr.NewValidationError()
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), message(fe))
	}
	return ve
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", field, fe.Param())
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", field, fe.Param())
	case "alpha_dash":
		return fmt.Sprintf("The %s field must only contain letters, numbers, dashes, and underscores.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}
