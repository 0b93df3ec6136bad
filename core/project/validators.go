package project

import (
	"github.com/go-playground/validator/v10"

	"github.com/hudumahq/huduma/core"
)

var (
	statusTag  = "projectstatus"
	statusText = "invalid status"
)

func init() {
	_ = core.Validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(statusTag, statusText)
}

// statusValidation checks that the provided status is one of AllStatuses.
func statusValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, s := range AllStatuses {
		if val == s {
			return true
		}
	}
	return false
}
