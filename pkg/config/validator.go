package config

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// namespaceIDPattern matches plugin ids such as "script.module.slyguy".
var namespaceIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._-]*[a-zA-Z0-9])?$`)

// StoreDrivers lists the persistence backings the repo provider can build.
var StoreDrivers = []string{"memory", "sqlite", "postgres", "redis", "sugardb"}

// RegisterCustomValidators registers custom validation functions
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("namespace_id", validateNamespaceID); err != nil {
		return err
	}
	return v.RegisterValidation("store_driver", validateStoreDriver)
}

func validateNamespaceID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	if len(id) == 0 || len(id) > 128 {
		return false
	}
	return namespaceIDPattern.MatchString(id)
}

func validateStoreDriver(fl validator.FieldLevel) bool {
	driver := fl.Field().String()
	for _, d := range StoreDrivers {
		if d == driver {
			return true
		}
	}
	return false
}
