package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormValidator checks bound entry forms against their validate tags. It is
// installed as the echo.Validator.
type FormValidator struct {
	validate *validator.Validate
}

// NewFormValidator reports field errors by form field name
func NewFormValidator() *FormValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &FormValidator{validate: v}
}

// Validate implements echo.Validator
func (v *FormValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// fieldErrors maps each failing field to the message shown beside it
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["__all__"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "numeric":
		return "Select a valid choice."
	case "oneof":
		return "Select a valid choice."
	}
	return "Enter a valid value."
}
