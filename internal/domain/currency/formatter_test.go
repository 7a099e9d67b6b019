// internal/domain/currency/formatter_test.go
package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		code     string
		expected string
	}{
		{"INR", 49900, "INR", "₹499.00"},
		{"USD", 1999, "USD", "$19.99"},
		{"EUR", 500, "EUR", "€5.00"},
		{"GBP", 123456, "GBP", "£1234.56"},
		{"AED spaced symbol", 7500, "AED", "AED 75.00"},
		{"lowercase code", 1999, "usd", "$19.99"},
		{"zero", 0, "INR", "₹0.00"},
		{"single minor digit pads", 105, "INR", "₹1.05"},
		{"negative", -49900, "INR", "-₹499.00"},
		{"unknown code falls back to default", 49900, "XYZ", "₹499.00"},
		{"empty code falls back to default", 49900, "", "₹499.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.amount, tt.code))
		})
	}
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("INR"))
	assert.True(t, Supported("usd"))
	assert.False(t, Supported("XYZ"))
	assert.False(t, Supported(""))
}

func TestCodes(t *testing.T) {
	codes := Codes()
	assert.Contains(t, codes, DefaultCode)
	assert.Equal(t, []string{"AED", "EUR", "GBP", "INR", "USD"}, codes)
}
