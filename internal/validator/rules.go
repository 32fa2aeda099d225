package validator

import (
	"log"
	"strings"

	"algocamp_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules installs the project's validation tags.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-application-type", validateApplicationType)
	mustRegister("is-national-id", validateNationalID)
}

func validateApplicationType(fl validator.FieldLevel) bool {
	value := strings.ToLower(strings.TrimSpace(fl.Field().String()))
	if value == "" {
		return true // 'required' handles empty values
	}
	switch models.ApplicationType(value) {
	case models.ApplicationTypeTrainee, models.ApplicationTypeTrainer:
		return true
	default:
		return false
	}
}

// validateNationalID accepts digits with common separators, at least six
// digits total.
func validateNationalID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	digits := 0
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '.':
		default:
			return false
		}
	}
	return digits >= 6
}
