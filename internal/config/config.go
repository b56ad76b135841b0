package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zapcore"

	"lv-papertrade/internal/types"
)

type Config struct {
	HTTPAddr        string
	DBDSN           string
	JWTIssuer       string
	JWTSecret       string
	JWTTTL          time.Duration
	AppMode         types.AppMode
	LogLevel        zapcore.Level
	WebSocketOrigin string

	QuoteAPIURL      string
	QuoteAPIKey      string
	QuoteTimeout     time.Duration
	QuoteRPS         float64
	QuoteFixedPrices string

	StartingCash   decimal.Decimal
	KafkaBrokers   []string
	KafkaTopic     string
	RateLimitRPS   float64
	RateLimitBurst int
	CommitRetries  int
}

func Load() (Config, error) {
	var c Config
	var missing []string
	c.HTTPAddr = os.Getenv("HTTP_ADDR")
	if c.HTTPAddr == "" {
		missing = append(missing, "HTTP_ADDR")
	}
	c.DBDSN = os.Getenv("DB_DSN")
	if c.DBDSN == "" {
		missing = append(missing, "DB_DSN")
	}
	c.JWTIssuer = os.Getenv("JWT_ISSUER")
	if c.JWTIssuer == "" {
		missing = append(missing, "JWT_ISSUER")
	}
	c.JWTSecret = os.Getenv("JWT_SECRET")
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	jwtTTL := os.Getenv("JWT_TTL")
	if jwtTTL == "" {
		missing = append(missing, "JWT_TTL")
	} else {
		d, err := time.ParseDuration(jwtTTL)
		if err != nil {
			return c, fmt.Errorf("invalid JWT_TTL: %w", err)
		}
		c.JWTTTL = d
	}

	c.AppMode = types.AppMode(strings.ToLower(strings.TrimSpace(os.Getenv("APP_MODE"))))
	if c.AppMode == "" {
		c.AppMode = types.AppModeDevelopment
	}
	if c.AppMode != types.AppModeDevelopment && c.AppMode != types.AppModeProduction {
		return c, errors.New("invalid APP_MODE: use development or production")
	}
	c.LogLevel = zapcore.InfoLevel
	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		if err := c.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return c, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}
	c.WebSocketOrigin = envOr("WS_ORIGIN", "*")

	c.QuoteFixedPrices = strings.TrimSpace(os.Getenv("QUOTE_FIXED_PRICES"))
	c.QuoteAPIKey = os.Getenv("QUOTE_API_KEY")
	if c.QuoteAPIKey == "" && c.QuoteFixedPrices == "" {
		missing = append(missing, "QUOTE_API_KEY")
	}
	c.QuoteAPIURL = strings.TrimRight(envOr("QUOTE_API_URL", "https://cloud.iexapis.com"), "/")
	var err error
	if c.QuoteTimeout, err = duration("QUOTE_TIMEOUT", 3*time.Second); err != nil {
		return c, err
	}
	if c.QuoteRPS, err = positiveFloat("QUOTE_RPS", 10); err != nil {
		return c, err
	}

	c.StartingCash = decimal.NewFromInt(10000)
	if raw := strings.TrimSpace(os.Getenv("STARTING_CASH")); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			return c, errors.New("invalid STARTING_CASH")
		}
		c.StartingCash = d
	}
	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			c.KafkaBrokers = append(c.KafkaBrokers, b)
		}
	}
	c.KafkaTopic = envOr("KAFKA_TOPIC", "papertrade.trades")
	if c.RateLimitRPS, err = positiveFloat("RATE_LIMIT_RPS", 10); err != nil {
		return c, err
	}
	if c.RateLimitBurst, err = positiveInt("RATE_LIMIT_BURST", 30); err != nil {
		return c, err
	}
	if c.CommitRetries, err = positiveInt("COMMIT_RETRIES", 3); err != nil {
		return c, err
	}

	if len(missing) > 0 {
		return c, errors.New("missing required env: " + strings.Join(missing, ","))
	}
	return c, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func positiveFloat(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}

func positiveInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
