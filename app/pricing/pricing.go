// Package pricing prices cart lines by pack size and computes GST invoices.
//
// Every product carries one base price for the 1kg pack; smaller packs are
// priced by a fixed multiplier:
//
//	unit, err := pricing.UnitPrice(product.BasePrice, pricing.Pack200gm)
//	inv := pricing.Compute([]decimal.Decimal{unit.Mul(decimal.NewFromInt(2))})
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PackSize is a sellable pack.
type PackSize string

const (
	Pack200gm PackSize = "200gm"
	Pack500gm PackSize = "500gm"
	Pack1kg   PackSize = "1kg"
)

// ErrUnknownPackSize is returned for sizes outside the pack table.
var ErrUnknownPackSize = errors.New("unknown pack size")

// Sizes lists the packs in display order.
var Sizes = []PackSize{Pack200gm, Pack500gm, Pack1kg}

var multipliers = map[PackSize]decimal.Decimal{
	Pack200gm: decimal.RequireFromString("0.2"),
	Pack500gm: decimal.RequireFromString("0.5"),
	Pack1kg:   decimal.NewFromInt(1),
}

var aliases = map[string]PackSize{
	"200gm":  Pack200gm,
	"200g":   Pack200gm,
	"500gm":  Pack500gm,
	"500g":   Pack500gm,
	"1kg":    Pack1kg,
	"1000g":  Pack1kg,
	"1000gm": Pack1kg,
}

// ParsePackSize accepts the canonical names in any case plus a few gram
// spellings ("200g", "1000gm").
func ParsePackSize(raw string) (PackSize, error) {
	if size, ok := aliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return size, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPackSize, raw)
}

// Multiplier returns the fraction of the 1kg price charged for size.
func Multiplier(size PackSize) (decimal.Decimal, error) {
	m, ok := multipliers[size]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrUnknownPackSize, size)
	}
	return m, nil
}

// UnitPrice is base × multiplier(size).
func UnitPrice(base decimal.Decimal, size PackSize) (decimal.Decimal, error) {
	m, err := Multiplier(size)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return base.Mul(m), nil
}

// LineTotal is the unit price for size times quantity.
func LineTotal(base decimal.Decimal, size PackSize, quantity int) (decimal.Decimal, error) {
	unit, err := UnitPrice(base, size)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return unit.Mul(decimal.NewFromInt(int64(quantity))), nil
}

// GSTRate is the combined GST charged on every order.
var GSTRate = decimal.RequireFromString("0.18")

var gstMultiplier = decimal.NewFromInt(1).Add(GSTRate)

// Invoice holds the order amounts. Total is Subtotal × 1.18, unrounded.
type Invoice struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Compute sums the line subtotals and applies GST.
func Compute(lines []decimal.Decimal) Invoice {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l)
	}
	total := subtotal.Mul(gstMultiplier)
	return Invoice{Subtotal: subtotal, Tax: total.Sub(subtotal), Total: total}
}

// Split returns the CGST and SGST halves of the charged tax. It is for
// display only; CGST + SGST always equals Tax.
func (inv Invoice) Split() (cgst, sgst decimal.Decimal) {
	cgst = inv.Tax.Div(decimal.NewFromInt(2))
	return cgst, inv.Tax.Sub(cgst)
}
