package handlers

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validatorsOnce sync.Once

// registerValidators installs the custom binding rules used by the DTOs.
// Safe to call from every route registration.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			slog.Warn("Gin validator engine is not go-playground/validator, custom rules not registered")
			return
		}
		if err := v.RegisterValidation("currency_code", validateCurrencyCode); err != nil {
			slog.Error("Failed to register currency_code validator", slog.String("error", err.Error()))
		}
		// "required" on a decimal rejects a missing or zero value
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok && !d.IsZero() {
				return d.String()
			}
			return ""
		}, decimal.Decimal{})
	})
}

// validateCurrencyCode accepts three ASCII letters in either case.
func validateCurrencyCode(fl validator.FieldLevel) bool {
	code := domain.NormalizeCurrencyCode(fl.Field().String())
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
