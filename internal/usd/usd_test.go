package usd

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"8500", "$8,500.00"},
		{"10100.5", "$10,100.50"},
		{"150.005", "$150.01"},
		{"1234567.891", "$1,234,567.89"},
	}
	for _, c := range cases {
		got := Format(decimal.RequireFromString(c.in))
		if got != c.want {
			t.Fatalf("Format(%s) = %q, want %q", c.in, got, c.want)
		}
	}
}
