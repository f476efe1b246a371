package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Vahe555123/busines/internal/domain"
	"github.com/Vahe555123/busines/internal/domain/ports/adapter"
)

const defaultBaseURL = "https://api.yookassa.ru/v3"

// maxDescriptionLen is the provider's limit for payment descriptions.
const maxDescriptionLen = 128

var _ adapter.PaymentGateway = (*YooKassaGateway)(nil)

// YooKassaGateway implements PaymentGateway using direct HTTP calls against
// the YooKassa v3 API.
type YooKassaGateway struct {
	shopID    string
	secretKey string
	baseURL   string
	client    *http.Client
}

// NewYooKassaGateway creates a gateway for the given shop credentials.
// Secrets pasted from the merchant console sometimes carry stray whitespace,
// so it is stripped before use.
func NewYooKassaGateway(shopID, secretKey string) *YooKassaGateway {
	return &YooKassaGateway{
		shopID:    strings.TrimSpace(shopID),
		secretKey: strings.Join(strings.Fields(secretKey), ""),
		baseURL:   defaultBaseURL,
		client:    &http.Client{},
	}
}

func (g *YooKassaGateway) Name() string { return "yookassa" }

func (g *YooKassaGateway) Configured() bool { return g.shopID != "" && g.secretKey != "" }

type yooKassaAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type yooKassaConfirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type yooKassaCreateRequest struct {
	Amount       yooKassaAmount       `json:"amount"`
	Capture      bool                 `json:"capture"`
	Confirmation yooKassaConfirmation `json:"confirmation"`
	Description  string               `json:"description"`
}

type yooKassaPaymentResponse struct {
	ID           string                `json:"id"`
	Status       string                `json:"status"`
	Confirmation *yooKassaConfirmation `json:"confirmation"`
}

type yooKassaErrorResponse struct {
	Type        string `json:"type"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// CreateCheckout registers a redirect payment with the provider and returns
// the external payment id plus the URL the buyer must be sent to.
func (g *YooKassaGateway) CreateCheckout(ctx context.Context, amount int64, returnURL, description, idempotenceKey string) (adapter.Checkout, error) {
	if g.shopID == "" || g.secretKey == "" {
		return adapter.Checkout{}, domain.ErrGatewayUnconfigured
	}

	// Truncate on rune boundaries; titles are mostly Cyrillic and a byte
	// slice could cut one in half.
	if r := []rune(description); len(r) > maxDescriptionLen {
		description = string(r[:maxDescriptionLen])
	}

	reqBody := yooKassaCreateRequest{
		Amount: yooKassaAmount{
			Value:    FormatKopecks(amount),
			Currency: "RUB",
		},
		Capture: true,
		Confirmation: yooKassaConfirmation{
			Type:      "redirect",
			ReturnURL: returnURL,
		},
		Description: description,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return adapter.Checkout{}, fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := g.baseURL + "/payments"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return adapter.Checkout{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", idempotenceKey)
	req.Header.Set("Authorization", "Basic "+g.basicAuth())

	resp, err := g.client.Do(req)
	if err != nil {
		return adapter.Checkout{}, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return adapter.Checkout{}, fmt.Errorf("%w: failed to read response body: %v", domain.ErrGateway, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var provErr yooKassaErrorResponse
		if json.Unmarshal(body, &provErr) == nil && provErr.Code != "" {
			return adapter.Checkout{}, fmt.Errorf("%w: %s: %s", domain.ErrGateway, provErr.Code, provErr.Description)
		}
		return adapter.Checkout{}, fmt.Errorf("%w: unexpected status %d", domain.ErrGateway, resp.StatusCode)
	}

	var payment yooKassaPaymentResponse
	if err := json.Unmarshal(body, &payment); err != nil {
		return adapter.Checkout{}, fmt.Errorf("%w: failed to unmarshal response: %v", domain.ErrGateway, err)
	}
	if payment.ID == "" || payment.Confirmation == nil || payment.Confirmation.ConfirmationURL == "" {
		return adapter.Checkout{}, fmt.Errorf("%w: response missing id or confirmation url", domain.ErrGateway)
	}

	return adapter.Checkout{
		ExternalID:      payment.ID,
		Status:          payment.Status,
		ConfirmationURL: payment.Confirmation.ConfirmationURL,
	}, nil
}

func (g *YooKassaGateway) basicAuth() string {
	return base64.StdEncoding.EncodeToString([]byte(g.shopID + ":" + g.secretKey))
}

// FormatKopecks renders an amount in kopecks as the provider's fixed-point
// decimal string, e.g. 150000 -> "1500.00".
func FormatKopecks(amount int64) string {
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}
