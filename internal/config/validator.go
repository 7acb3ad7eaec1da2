package config

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/xonecas/codeview/internal/highlight"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	fixedHeightPattern = regexp.MustCompile(`^[1-9][0-9]{0,3}$`)
)

// validatorInstance configures and returns the shared validator.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})

		_ = v.RegisterValidation("chroma_theme", func(fl validator.FieldLevel) bool {
			return highlight.Known(fl.Field().String())
		})

		// auto, full, fit, or a fixed row count.
		_ = v.RegisterValidation("height_mode", func(fl validator.FieldLevel) bool {
			switch s := fl.Field().String(); s {
			case "auto", "full", "100%", "fit":
				return true
			default:
				return fixedHeightPattern.MatchString(s)
			}
		})

		validateInst = v
	})
	return validateInst
}
