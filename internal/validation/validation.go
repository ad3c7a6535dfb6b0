// Package validation builds the shared validator with the shop's custom rules.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	pinCodePattern = regexp.MustCompile(`^[A-Za-z0-9\s]{5,10}$`)
	phonePattern   = regexp.MustCompile(`^\+?[0-9]{10,14}$`)
)

// New returns a validator with the "pincode" and "phone" tags registered.
// Field names in errors follow the json tag.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	mustRegister(v, "pincode", func(fl validator.FieldLevel) bool {
		return pinCodePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	return v
}

// mustRegister panics when tag cannot be registered.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// Messages flattens validator errors into a field → message map.
// Non-validation errors are reported under the "_" key.
func Messages(err error) map[string]string {
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}
	for _, e := range verrs {
		out[e.Field()] = message(e)
	}
	return out
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", e.Field())
	case "pincode":
		return "pin code must be 5-10 alphanumeric characters"
	case "phone":
		return "phone must be 10-14 digits, optionally starting with +"
	case "eqfield":
		return fmt.Sprintf("%s must match %s", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param())
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
}
