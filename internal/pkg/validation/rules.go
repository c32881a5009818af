// Package validation holds the custom binding rules shared by request DTOs.
package validation

import (
	"github.com/go-playground/validator/v10"

	"github.com/yigit/alumnidesk/internal/app/models"
)

// Tag names of the custom rules
const (
	TagAdminRole = "adminrole"
	TagYear      = "gradyear"
)

// Graduation and event years outside this range are typos
const (
	MinYear = 1900
	MaxYear = 2200
)

// Register adds the custom rules to v
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(TagAdminRole, validateAdminRole); err != nil {
		return err
	}
	return v.RegisterValidation(TagYear, validateYear)
}

// IsAdminRole reports whether role may be chosen at registration
func IsAdminRole(role models.AdminRole) bool {
	for _, r := range models.AdminRoles {
		if r == role {
			return true
		}
	}
	return false
}

func validateAdminRole(fl validator.FieldLevel) bool {
	return IsAdminRole(models.AdminRole(fl.Field().String()))
}

// validateYear accepts zero so optional years can be left out
func validateYear(fl validator.FieldLevel) bool {
	y := fl.Field().Int()
	return y == 0 || (y >= MinYear && y <= MaxYear)
}
