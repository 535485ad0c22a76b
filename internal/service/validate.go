package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// notblank rejects empty and whitespace-only strings.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// validateRecord checks a full record against its struct tags.
func validateRecord(rec interface{}) error {
	err := validate.Struct(rec)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}
	out := &ValidationError{Message: "Invalid payload"}
	for _, fe := range vErrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Reason: reason(fe.Tag(), fe.Param())})
	}
	return out
}

// validateField checks one value against a validate tag.
func validateField(name string, value interface{}, tag string) *FieldError {
	if tag == "" {
		return nil
	}
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		return &FieldError{Field: name, Reason: reason(vErrs[0].Tag(), vErrs[0].Param())}
	}
	return &FieldError{Field: name, Reason: err.Error()}
}

func reason(tag, param string) string {
	switch tag {
	case "notblank", "required":
		return "is required"
	case "oneof":
		return "must be one of: " + param
	case "url":
		return "must be a valid URL"
	default:
		return "failed " + tag
	}
}
