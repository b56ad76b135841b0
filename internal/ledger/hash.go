package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"lv-papertrade/internal/model"
)

// computeHash chains a transaction to its predecessor in the same user's
// log. Timestamps are hashed at microsecond precision, the resolution
// Postgres stores.
func computeHash(userID string, seq int64, symbol string, shares int64, price string, createdAt time.Time, prevHash string) string {
	buf := userID + "|" + strconv.FormatInt(seq, 10) + "|" + symbol + "|" + strconv.FormatInt(shares, 10) + "|" + price + "|" + createdAt.UTC().Format(time.RFC3339Nano) + "|" + prevHash
	sum := sha256.Sum256([]byte(buf))
	return hex.EncodeToString(sum[:])
}

func hashOf(t model.Transaction) string {
	return computeHash(t.UserID, t.Sequence, t.Symbol, t.Shares, t.Price.StringFixed(PriceScale), t.CreatedAt, t.PrevHash)
}

func commitTime(now, last time.Time) time.Time {
	now = now.UTC().Truncate(time.Microsecond)
	if now.Before(last) {
		return last
	}
	return now
}
