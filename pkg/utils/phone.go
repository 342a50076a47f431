package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Algerian mobile numbers: 05, 06 or 07 followed by eight digits.
var phonePattern = regexp.MustCompile(`^(05|06|07)\d{8}$`)

func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// RegisterPhoneValidation adds the `dzphone` tag to v.
func RegisterPhoneValidation(v *validator.Validate) error {
	return v.RegisterValidation("dzphone", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
}
