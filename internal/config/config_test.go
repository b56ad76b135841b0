package config

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zapcore"

	"lv-papertrade/internal/types"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("DB_DSN", "postgres://localhost/papertrade")
	t.Setenv("JWT_ISSUER", "papertrade")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_TTL", "24h")
	t.Setenv("QUOTE_API_KEY", "pk_test")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.JWTTTL != 24*time.Hour || c.AppMode != types.AppModeDevelopment || c.LogLevel != zapcore.InfoLevel {
		t.Fatalf("unexpected config %+v", c)
	}
	if c.WebSocketOrigin != "*" || c.QuoteAPIURL != "https://cloud.iexapis.com" || c.QuoteTimeout != 3*time.Second {
		t.Fatalf("unexpected quote defaults %+v", c)
	}
	if !c.StartingCash.Equal(decimal.NewFromInt(10000)) || c.CommitRetries != 3 || c.RateLimitBurst != 30 {
		t.Fatalf("unexpected trading defaults %+v", c)
	}
	if len(c.KafkaBrokers) != 0 || c.KafkaTopic != "papertrade.trades" {
		t.Fatalf("unexpected kafka defaults %+v", c)
	}
}

func TestLoadReportsAllMissing(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DB_DSN", "JWT_ISSUER", "JWT_SECRET", "JWT_TTL", "QUOTE_API_KEY", "QUOTE_FIXED_PRICES"} {
		t.Setenv(k, "")
	}
	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, k := range []string{"HTTP_ADDR", "DB_DSN", "JWT_TTL", "QUOTE_API_KEY"} {
		if !strings.Contains(err.Error(), k) {
			t.Fatalf("error %q does not name %s", err, k)
		}
	}
}

func TestFixedPricesReplaceAPIKey(t *testing.T) {
	setRequired(t)
	t.Setenv("QUOTE_API_KEY", "")
	t.Setenv("QUOTE_FIXED_PRICES", "AAPL=150")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("STARTING_CASH", "2500.50")
	t.Setenv("LOG_LEVEL", "debug")
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.KafkaBrokers) != 2 || c.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("brokers %v", c.KafkaBrokers)
	}
	if !c.StartingCash.Equal(decimal.RequireFromString("2500.5")) || c.LogLevel != zapcore.DebugLevel {
		t.Fatalf("unexpected config %+v", c)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"APP_MODE":       "staging",
		"JWT_TTL":        "tomorrow",
		"LOG_LEVEL":      "loud",
		"STARTING_CASH":  "-5",
		"QUOTE_TIMEOUT":  "0s",
		"RATE_LIMIT_RPS": "0",
		"COMMIT_RETRIES": "many",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%q accepted", key, val)
			}
		})
	}
}
