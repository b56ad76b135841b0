// Package usd renders decimal dollar amounts for display.
package usd

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Format renders amount as "$1,234.56", rounding half away from zero to cents.
func Format(amount decimal.Decimal) string {
	cur := money.New(0, money.USD).Currency()
	cents := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction)).IntPart()
	return cur.Formatter().Format(cents)
}
