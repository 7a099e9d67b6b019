// internal/domain/currency/formatter.go
package currency

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultCode is used when a currency code is not in the supported set
const DefaultCode = "INR"

type spec struct {
	symbol    string
	fraction  int
	symbolSep string
}

// Supported display currencies. Rate conversion happens upstream; this
// package only formats amounts already expressed in the given currency.
var specs = map[string]spec{
	"INR": {symbol: "₹", fraction: 2},
	"USD": {symbol: "$", fraction: 2},
	"EUR": {symbol: "€", fraction: 2},
	"GBP": {symbol: "£", fraction: 2},
	"AED": {symbol: "AED", fraction: 2, symbolSep: " "},
}

// Supported reports whether code is a known display currency
func Supported(code string) bool {
	_, ok := specs[strings.ToUpper(code)]
	return ok
}

// Codes returns the supported currency codes in stable order
func Codes() []string {
	codes := make([]string, 0, len(specs))
	for code := range specs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Format renders an amount in minor units as a display string for the given
// currency code, falling back to the default currency for unknown codes.
func Format(amount int64, code string) string {
	s, ok := specs[strings.ToUpper(code)]
	if !ok {
		s = specs[DefaultCode]
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	major := amount / 100
	minor := amount % 100
	return fmt.Sprintf("%s%s%s%d.%0*d", sign, s.symbol, s.symbolSep, major, s.fraction, minor)
}
