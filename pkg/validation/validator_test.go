package validation

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type planPayload struct {
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price" validate:"money"`
	Phone    null.String     `json:"phone" validate:"omitempty,phone"`
	SKU      string          `json:"sku" validate:"omitempty,sku"`
	Start    string          `json:"start_date" validate:"omitempty,date"`
	Quantity null.Int64      `json:"quantity" validate:"omitempty,gte=0"`
}

func TestValidator_Valid(t *testing.T) {
	v := New()
	err := v.Validate(&planPayload{
		Name:     "Home 100",
		Price:    decimal.RequireFromString("19.99"),
		Phone:    null.StringFrom("+992900123456"),
		SKU:      "ONT-HG8245",
		Start:    "2024-03-01",
		Quantity: null.Int64From(0),
	})
	assert.NoError(t, err)
}

func TestValidator_NullSkipped(t *testing.T) {
	v := New()
	err := v.Validate(&planPayload{Name: "x", Price: decimal.Zero})
	assert.NoError(t, err)
}

func TestValidator_Invalid(t *testing.T) {
	v := New()
	cases := map[string]planPayload{
		"negative price": {Name: "x", Price: decimal.NewFromInt(-1)},
		"bad phone":      {Name: "x", Phone: null.StringFrom("900123")},
		"lower sku":      {Name: "x", SKU: "ont-1"},
		"bad date":       {Name: "x", Start: "01.03.2024"},
		"negative qty":   {Name: "x", Quantity: null.Int64From(-3)},
		"missing name":   {},
	}
	for name, payload := range cases {
		p := payload
		assert.Error(t, v.Validate(&p), name)
	}
}
