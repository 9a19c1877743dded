package middleware

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/shopcart/backend/internal/domain/catalog"
)

// SKUTag is the binding tag validating SKU path parameters
const SKUTag = "sku"

var setupOnce sync.Once

// SetupValidator registers the custom binding tags on gin's validator
func SetupValidator() {
	setupOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation(SKUTag, func(fl validator.FieldLevel) bool {
				return catalog.ValidSKU(fl.Field().String())
			})
		}
	})
}
