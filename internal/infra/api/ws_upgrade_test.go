//go:build !integration

package api_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Vahe555123/busines/internal/infra/api"
	"github.com/Vahe555123/busines/internal/infra/ws"
)

// The /ws route sits behind the full middleware chain; the upgrade must
// survive the request-log response wrapper.
func TestWebsocketUpgradeThroughRouter(t *testing.T) {
	auth := api.NewAuthManager("test-secret", time.Hour)
	log := zerolog.Nop()
	hub := ws.NewHub(auth.VerifyToken, log)
	srv := api.NewServer(
		&stubPaymentUC{}, &stubPurchaseUC{}, &stubPricingUC{}, &stubChatUC{},
		auth, nil, hub.Handle, []string{"*"}, &log,
	)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	token, err := auth.Mint("user-1", "user-1@example.com", "user")
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("upgrade through the router failed: %v", err)
	}
	defer conn.Close()

	// The session registers asynchronously after the upgrade, so publish
	// until the event lands.
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			default:
			}
			hub.Publish("user-1", "payment_succeeded", map[string]string{"paymentId": "pay-1", "purchaseId": "pur-1"})
			time.Sleep(10 * time.Millisecond)
		}
	}()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("expected a pushed event, got read error: %v", err)
	}
	var got struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if got.Event != "payment_succeeded" {
		t.Errorf("unexpected event: %s", got.Event)
	}
}
