package utils

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	mobilePattern  = regexp.MustCompile(`^[6-9]\d{9}$`)
	pinCodePattern = regexp.MustCompile(`^\d{6}$`)

	registerOnce sync.Once
)

// IsValidMobile reports whether value is a 10-digit number starting with 6-9
func IsValidMobile(value string) bool {
	return mobilePattern.MatchString(value)
}

// IsValidPinCode reports whether value is a 6-digit postal code
func IsValidPinCode(value string) bool {
	return pinCodePattern.MatchString(value)
}

// RegisterValidators adds the "mobile", "pincode" and "notblank" tags to gin's
// validator. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
			return IsValidMobile(fl.Field().String())
		})
		_ = v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
			return IsValidPinCode(fl.Field().String())
		})
		_ = v.RegisterValidation("notblank", validators.NotBlank)
	})
}

// ValidationError describes one failed field
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// FormatValidationErrors converts binding errors into per-field messages.
// Errors that are not validator errors (malformed JSON) yield a single entry.
func FormatValidationErrors(err error) []ValidationError {
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []ValidationError{{Field: "body", Tag: "format", Message: err.Error()}}
	}

	out := make([]ValidationError, len(ve))
	for i, fe := range ve {
		out[i] = ValidationError{Field: fe.Field(), Tag: fe.Tag()}
		switch fe.Tag() {
		case "required":
			out[i].Message = fmt.Sprintf("%s is required", fe.Field())
		case "email":
			out[i].Message = fmt.Sprintf("%s must be a valid email address", fe.Field())
		case "min":
			out[i].Message = fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
		case "mobile":
			out[i].Message = fmt.Sprintf("%s must be a 10 digit number starting with 6-9", fe.Field())
		case "notblank":
			out[i].Message = fmt.Sprintf("%s must not be blank", fe.Field())
		case "pincode":
			out[i].Message = fmt.Sprintf("%s must be a 6 digit pin code", fe.Field())
		case "oneof":
			out[i].Message = fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
		case "gte":
			out[i].Message = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
		default:
			out[i].Message = fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag())
		}
	}
	return out
}
