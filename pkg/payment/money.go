package payment

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPrecision is the number of fraction digits for currencies not
// listed in the precision table.
const DefaultPrecision int32 = 2

// ISO 4217 currencies whose minor unit differs from two digits.
var precisions = map[string]int32{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0, "KMF": 0,
	"KRW": 0, "PYG": 0, "RWF": 0, "UGX": 0, "VND": 0, "VUV": 0, "XAF": 0,
	"XOF": 0, "XPF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

// Precision returns the number of fraction digits for a currency code.
// Unknown or empty codes use [DefaultPrecision].
func Precision(currency string) int32 {
	if p, ok := precisions[strings.ToUpper(strings.TrimSpace(currency))]; ok {
		return p
	}
	return DefaultPrecision
}

// Round rounds amount half-up to the precision of currency.
func Round(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.Round(Precision(currency))
}

// Cart is the part of a quote the free method looks at.
type Cart struct {
	GrandTotal decimal.Decimal
	Currency   string // ISO 4217 code; empty means two-digit precision
}

// NewCart parses a grand total such as "0.004".
func NewCart(grandTotal, currency string) (*Cart, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(grandTotal))
	if err != nil {
		return nil, err
	}
	return &Cart{GrandTotal: d, Currency: currency}, nil
}

// RoundedTotal returns the grand total rounded to currency precision.
func (c *Cart) RoundedTotal() decimal.Decimal {
	return Round(c.GrandTotal, c.Currency)
}
