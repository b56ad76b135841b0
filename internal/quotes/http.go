package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"lv-papertrade/internal/model"
)

// HTTPProvider reads quotes from an IEX Cloud compatible REST API.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
	limiter *rate.Limiter
}

type HTTPConfig struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Client            *http.Client
}

func NewHTTPProvider(cfg HTTPConfig) *HTTPProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: timeout,
		client:  client,
		limiter: rate.NewLimiter(limit, 10),
	}
}

type iexQuote struct {
	Symbol      string       `json:"symbol"`
	CompanyName string       `json:"companyName"`
	LatestPrice *json.Number `json:"latestPrice"`
}

func (p *HTTPProvider) Lookup(ctx context.Context, symbol string) (model.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.limiter.Wait(ctx); err != nil {
		return model.Quote{}, fmt.Errorf("quote rate limit: %w", err)
	}
	u := p.baseURL + "/stable/stock/" + url.PathEscape(symbol) + "/quote?token=" + url.QueryEscape(p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.Quote{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return model.Quote{}, fmt.Errorf("quote request %s: %w", symbol, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return model.Quote{}, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return model.Quote{}, fmt.Errorf("quote request %s: unexpected status %d", symbol, resp.StatusCode)
	}
	var body iexQuote
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.Quote{}, fmt.Errorf("decode quote %s: %w", symbol, err)
	}
	if body.LatestPrice == nil {
		return model.Quote{}, ErrNotFound
	}
	price, err := decimal.NewFromString(body.LatestPrice.String())
	if err != nil {
		return model.Quote{}, fmt.Errorf("parse price %q: %w", body.LatestPrice.String(), err)
	}
	sym := body.Symbol
	if sym == "" {
		sym = symbol
	}
	return model.Quote{Symbol: Normalize(sym), Name: body.CompanyName, Price: price}, nil
}
