package validate

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var numericCodePattern = regexp.MustCompile(`^[0-9]{3}$`)

// PostCompletionStatuses are the statuses an operator may choose after a
// successful payment
var PostCompletionStatuses = []string{"processing", "completed", "on-hold"}

// CustomValidate registers the project specific tags on v
func CustomValidate(v *validator.Validate) {
	// ISO 4217 numeric currency code, e.g. 978
	_ = v.RegisterValidation("numeric_code", func(fl validator.FieldLevel) bool {
		return numericCodePattern.MatchString(fl.Field().String())
	})

	_ = v.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, status := range PostCompletionStatuses {
			if value == status {
				return true
			}
		}
		return false
	})
}
