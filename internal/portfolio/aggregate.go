// Package portfolio derives holdings from the transaction log. Holdings are
// never stored; they are folded from transactions on every read.
package portfolio

import (
	"sort"

	"lv-papertrade/internal/model"
)

// Aggregate sums signed share counts per symbol. The result includes
// symbols whose net position is zero.
func Aggregate(txs []model.Transaction) map[string]int64 {
	net := make(map[string]int64)
	for _, t := range txs {
		net[t.Symbol] += t.Shares
	}
	return net
}

// NetShares is the user's current position in symbol.
func NetShares(txs []model.Transaction, symbol string) int64 {
	var n int64
	for _, t := range txs {
		if t.Symbol == symbol {
			n += t.Shares
		}
	}
	return n
}

// Held lists the symbols with a positive position, sorted.
func Held(net map[string]int64) []string {
	out := make([]string, 0, len(net))
	for sym, n := range net {
		if n > 0 {
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}
