package service

import (
	"errors"
	"reflect"
	"strings"

	"inventory/internal/model"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct's validate tags and reports failures as a
// validation DomainError keyed by JSON field name.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return model.NewValidationError(err.Error())
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
	}
	return model.NewFieldValidationError(fields)
}

// passThrough reports whether err is a domain error that callers should see
// unwrapped.
func passThrough(err error) bool {
	_, ok := model.KindOf(err)
	return ok
}
