package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Vahe555123/busines/internal/domain"
	"github.com/Vahe555123/busines/internal/domain/model"
	"github.com/Vahe555123/busines/internal/infra/metrics"
	"github.com/Vahe555123/busines/internal/infra/redis"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeDomainError maps domain sentinels onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "too many requests")
	case errors.Is(err, domain.ErrGatewayUnconfigured):
		writeError(w, http.StatusServiceUnavailable, "payments are temporarily unavailable")
	case errors.Is(err, domain.ErrGateway):
		writeError(w, http.StatusBadGateway, "payment provider error")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ---------------- pricing ----------------

type pricingView struct {
	ID          string                `json:"id"`
	Title       model.LocalizedString `json:"title"`
	Description model.LocalizedString `json:"description"`
	Price       int64                 `json:"price"`
	Order       int                   `json:"order"`
	IsPopular   bool                  `json:"isPopular"`
}

func (s *Server) handlePricingList(w http.ResponseWriter, r *http.Request) {
	plans, err := s.pricing.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]pricingView, 0, len(plans))
	for _, p := range plans {
		out = append(out, pricingView{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Price:       p.Price,
			Order:       p.Order,
			IsPopular:   p.IsPopular,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

// ---------------- payments ----------------

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PricingID string `json:"pricingId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.PricingID == "" {
		writeError(w, http.StatusBadRequest, "pricingId is required")
		return
	}
	payment, confirmationURL, err := s.payments.Checkout(r.Context(), callerID(r), body.PricingID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"paymentId":       payment.ID,
		"confirmationUrl": confirmationURL,
	})
}

func (s *Server) handlePaymentStatus(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentID")
	payment, err := s.payments.Status(r.Context(), callerID(r), paymentID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"paymentId": payment.ID,
		"status":    payment.Status,
		"amount":    payment.Amount,
		"title":     payment.Title,
	})
}

// webhookEnvelope is the provider notification body. Anything that does not
// look like a succeeded payment is acknowledged and dropped.
type webhookEnvelope struct {
	Type   string `json:"type"`
	Event  string `json:"event"`
	Object struct {
		ID string `json:"id"`
	} `json:"object"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var env webhookEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		s.log.Warn().Err(err).Msg("undecodable webhook body")
	} else if env.Type != "notification" {
		s.log.Warn().Str("type", env.Type).Msg("unexpected webhook envelope type")
		metrics.IncWebhookEvent("ignored")
	} else if err := s.payments.HandleGatewayEvent(r.Context(), env.Event, env.Object.ID); err != nil {
		// The provider retries on non-200; processing failures are ours to
		// resolve, so the delivery is acknowledged regardless.
		s.log.Error().Err(err).Str("event", env.Event).Msg("webhook processing failed")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ---------------- purchases ----------------

type purchaseView struct {
	ID        string    `json:"id"`
	PricingID string    `json:"pricingId"`
	PaymentID *string   `json:"paymentId,omitempty"`
	Title     string    `json:"title"`
	Price     int64     `json:"price"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func toPurchaseView(p *model.Purchase) purchaseView {
	return purchaseView{
		ID:        p.ID,
		PricingID: p.PricingID,
		PaymentID: p.PaymentID,
		Title:     p.Title,
		Price:     p.Price,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
	}
}

func (s *Server) handleManualPurchase(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PricingID string `json:"pricingId"`
		UserID    string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.PricingID == "" {
		writeError(w, http.StatusBadRequest, "pricingId is required")
		return
	}
	// Buying for somebody else is an admin action.
	userID := callerID(r)
	if body.UserID != "" && body.UserID != userID {
		if callerRole(r) != "admin" {
			writeError(w, http.StatusForbidden, "access denied")
			return
		}
		userID = body.UserID
	}
	purchase, err := s.purchases.CreateManual(r.Context(), userID, body.PricingID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPurchaseView(purchase))
}

func (s *Server) handleMyPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := s.purchases.ListByUser(r.Context(), callerID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]purchaseView, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, toPurchaseView(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

// ---------------- chat ----------------

type chatMessageView struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	ImageURLs []string  `json:"imageUrls,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toChatMessageView(m *model.ChatMessage) chatMessageView {
	return chatMessageView{
		ID:        m.ID,
		Role:      string(m.Role),
		Content:   m.Content,
		ImageURLs: m.ImageURLs,
		CreatedAt: m.CreatedAt,
	}
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	conv, msgs, err := s.chat.History(r.Context(), callerID(r), r.URL.Query().Get("sessionId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]chatMessageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toChatMessageView(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversationId": conv.ID,
		"messages":       out,
	})
}

func (s *Server) handleChatSend(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string   `json:"sessionId"`
		Content   string   `json:"content"`
		ImageURLs []string `json:"imageUrls"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if ok := s.allowChat(r, body.SessionID); !ok {
		writeDomainError(w, domain.ErrRateLimited)
		return
	}

	userMsg, assistantMsg, err := s.chat.Send(r.Context(), callerID(r), body.SessionID, body.Content, body.ImageURLs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"userMessage":      toChatMessageView(userMsg),
		"assistantMessage": toChatMessageView(assistantMsg),
	})
}

// allowChat rate-limits assistant messages per caller. The limiter is fixed
// window over redis; when it is unavailable the message goes through.
func (s *Server) allowChat(r *http.Request, sessionID string) bool {
	if s.limiter == nil {
		return true
	}
	subject := callerID(r)
	if subject == "" {
		subject = sessionID
	}
	if subject == "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			subject = host
		} else {
			subject = r.RemoteAddr
		}
	}
	ok, err := s.limiter.Allow(r.Context(), redis.ChatKey(subject), chatRateLimit, chatRateWindow)
	if err != nil {
		s.log.Warn().Err(err).Msg("chat rate limiter unavailable")
		return true
	}
	return ok
}
