package catalog

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Stock is how many units of a product are available right now.
type Stock struct {
	ID     int64 `json:"id" validate:"required,gt=0"`
	Amount int   `json:"amount" validate:"gte=0"`
}

// Product is the display metadata of a catalog listing.
type Product struct {
	ID    int64           `json:"id" validate:"required,gt=0"`
	Title string          `json:"title" validate:"required"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

func validateProduct(p *Product) error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return errNegativePrice
	}
	return nil
}
