package types

type TradeSide string

type AppMode string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

const (
	AppModeDevelopment AppMode = "development"
	AppModeProduction  AppMode = "production"
)

// Sign returns +1 for buys and -1 for sells.
func (s TradeSide) Sign() int64 {
	if s == TradeSideSell {
		return -1
	}
	return 1
}
