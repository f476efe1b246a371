package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Vahe555123/busines/internal/infra/redis"
	"github.com/Vahe555123/busines/internal/usecase"
)

const requestTimeout = 30 * time.Second

// chatRateLimit caps assistant messages per client per window.
const (
	chatRateLimit  = 10
	chatRateWindow = time.Minute
)

// Server wires the public HTTP surface to the use cases.
type Server struct {
	payments  usecase.PaymentUseCase
	purchases usecase.PurchaseUseCase
	pricing   usecase.PricingUseCase
	chat      usecase.ChatUseCase

	auth    *AuthManager
	limiter *redis.RateLimiter
	ws      http.HandlerFunc

	corsOrigins []string
	log         *zerolog.Logger
}

func NewServer(
	payments usecase.PaymentUseCase,
	purchases usecase.PurchaseUseCase,
	pricing usecase.PricingUseCase,
	chat usecase.ChatUseCase,
	auth *AuthManager,
	limiter *redis.RateLimiter,
	wsHandler http.HandlerFunc,
	corsOrigins []string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		payments:    payments,
		purchases:   purchases,
		pricing:     pricing,
		chat:        chat,
		auth:        auth,
		limiter:     limiter,
		ws:          wsHandler,
		corsOrigins: corsOrigins,
		log:         logger,
	}
}

// Routes builds the router with the full middleware chain attached.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(TraceID())
	r.Use(Recover(s.log))
	r.Use(RequestLog(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if s.ws != nil {
		r.Get("/ws", s.ws)
	}

	r.Get("/api/pricing", s.handlePricingList)
	r.Post("/api/payments/webhook", s.handleWebhook)

	r.Group(func(r chi.Router) {
		r.Use(s.auth.Require)
		r.Post("/api/payments", s.handleCheckout)
		r.Get("/api/payments/{paymentID}/status", s.handlePaymentStatus)
		r.Post("/api/purchases", s.handleManualPurchase)
		r.Get("/api/purchases/my", s.handleMyPurchases)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.auth.Optional)
		r.Get("/api/chat/conversation", s.handleChatHistory)
		r.Post("/api/chat/messages", s.handleChatSend)
	})

	return r
}
