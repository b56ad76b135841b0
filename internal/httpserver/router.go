package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"lv-papertrade/internal/auth"
	"lv-papertrade/internal/health"
	"lv-papertrade/internal/portfolio"
	"lv-papertrade/internal/quotes"
	"lv-papertrade/internal/trading"
)

type RouterDeps struct {
	AuthHandler      *auth.Handler
	QuoteHandler     *quotes.Handler
	PortfolioHandler *portfolio.Handler
	TradingHandler   *trading.Handler
	HealthHandler    *health.Handler
	AuthService      *auth.Service
	TradesWS         http.Handler
	RateLimiter      *RateLimiter
	Origin           string
	Logger           *zap.Logger
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(AccessLog(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors(d.Origin))
	r.Use(SecurityHeaders)
	r.Use(NoCache)
	if d.RateLimiter != nil {
		r.Use(d.RateLimiter.Middleware)
	}

	r.Get("/health", d.HealthHandler.Live)
	r.Get("/health/ready", d.HealthHandler.Ready)
	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", d.AuthHandler.Register)
			r.Post("/login", d.AuthHandler.Login)
		})
		r.Get("/ws", d.TradesWS.ServeHTTP)
		r.Group(func(r chi.Router) {
			r.Use(WithAuth(d.AuthService))
			r.Get("/me", userHandler(d.AuthHandler.Me))
			r.Get("/quote", d.QuoteHandler.Get)
			r.Get("/portfolio", userHandler(d.PortfolioHandler.Portfolio))
			r.Get("/holdings", userHandler(d.PortfolioHandler.Holdings))
			r.Post("/buy", userHandler(d.TradingHandler.Buy))
			r.Post("/sell", userHandler(d.TradingHandler.Sell))
			r.Get("/history", userHandler(d.TradingHandler.History))
		})
	})
	return r
}

func cors(allowed string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				origin = "*"
			}
			if allowed == "*" || allowOrigin(r, allowed) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
