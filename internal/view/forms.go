package view

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks console forms. Fields carry a label tag used in messages.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if label := field.Tag.Get("label"); label != "" {
			return label
		}
		return field.Name
	})
	return v
}

// FormErrors collects messages keyed by struct field name.
type FormErrors map[string]string

// Add records msg for field unless one is already present.
func (e FormErrors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Any reports whether errors were recorded.
func (e FormErrors) Any() bool { return len(e) > 0 }

// CheckForm validates form and returns its errors, merged into errs.
func CheckForm(form any, errs FormErrors) FormErrors {
	if errs == nil {
		errs = FormErrors{}
	}
	err := Validate.Struct(form)
	if err == nil {
		return errs
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.Add("general", "The form could not be checked.")
		return errs
	}
	for _, fe := range fieldErrs {
		errs.Add(fe.StructField(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more.", label, fe.Param())
	case "ne":
		return fmt.Sprintf("%s must not be %s.", label, fe.Param())
	case "datetime":
		return label + " must be a date (YYYY-MM-DD)."
	case "email":
		return label + " must be a valid email address."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), "'", ""))
	case "eqfield":
		return label + " does not match."
	}
	return label + " is invalid."
}
