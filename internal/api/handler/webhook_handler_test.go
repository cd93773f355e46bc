package handler

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/shelfcheck/item-audit/internal/check"
	"github.com/shelfcheck/item-audit/internal/config"
	"github.com/shelfcheck/item-audit/internal/domain"
	"github.com/shelfcheck/item-audit/internal/ims"
	"github.com/shelfcheck/item-audit/internal/metrics"
	"github.com/shelfcheck/item-audit/internal/notifier"
	"github.com/shelfcheck/item-audit/internal/ratelimiter"
	"github.com/shelfcheck/item-audit/internal/repository"
	"github.com/shelfcheck/item-audit/internal/service"
	"github.com/shelfcheck/item-audit/internal/staging"
)

const testSecret = "shared-secret"

type webhookFixture struct {
	handler *WebhookHandler
	client  *ims.MockClient
	staging *staging.MockStore
	gateway *notifier.MockGateway
}

// newWebhookFixture wires the real intake pipeline behind the handler:
// eligibility filter, suffix check, and row/tray check over mocks.
func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()

	cfg := &config.Config{
		DiscardMarker: "discard",
		SuffixMarker:  "X",
		Provenance:    []string{"Property of Georgetown University"},
		ExcludedNotes: []string{"WD"},
		FetchBackoff:  []time.Duration{time.Millisecond},
	}

	cfgRepo := repository.NewMockConfigRepository()
	cfgRepo.AddCheck(&domain.CheckConfig{ID: 1, Name: check.GateCheckName, APIKey: "gate-key"})
	cfgRepo.AddCheck(&domain.CheckConfig{ID: 2, Name: check.SuffixCheckName, APIKey: "suffix-key", EmailSubject: "Barcode corrected"})
	cfgRepo.AddCheck(&domain.CheckConfig{ID: 3, Name: check.RowTrayCheckName, EmailSubject: "Row/tray audit"})

	f := &webhookFixture{
		client:  ims.NewMockClient(),
		staging: staging.NewMockStore(),
		gateway: notifier.NewMockGateway(),
	}

	logger := zap.NewNop()
	limiter := ratelimiter.New(10000)
	filter := check.NewEligibilityFilter(cfgRepo, f.client, limiter, cfg, logger)
	suffix := check.NewSuffixCheck(cfgRepo, f.client, f.gateway, limiter, cfg.SuffixMarker, logger)
	rowTray := check.NewRowTrayCheck(f.staging, cfg, logger)
	rules := check.NewRuleSet(logger, suffix, rowTray)
	svc := service.NewIntakeService(filter, rules, logger)

	m := metrics.New(prometheus.NewRegistry())
	f.handler = NewWebhookHandler(svc, testSecret, m, logger)
	return f
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func eventBody(t *testing.T, barcode string) []byte {
	t.Helper()
	body, err := json.Marshal(domain.ItemEvent{Item: domain.Item{Barcode: barcode}})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return body
}

func TestWebhookChallenge(t *testing.T) {
	f := newWebhookFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/webhooks/items?challenge=abc123", nil)
	rec := httptest.NewRecorder()
	f.handler.Challenge(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["challenge"] != "abc123" {
		t.Errorf("challenge = %q, want abc123", resp["challenge"])
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newWebhookFixture(t)
	body := eventBody(t, "b1")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/items", bytes.NewReader(body))
	req.Header.Set("X-Exl-Signature", "AAAA")
	rec := httptest.NewRecorder()
	f.handler.Receive(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	f := newWebhookFixture(t)
	body := eventBody(t, "b1")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/items", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.Receive(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	f := newWebhookFixture(t)
	body := []byte("not json at all")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/items", bytes.NewReader(body))
	req.Header.Set("X-Exl-Signature", sign(body))
	rec := httptest.NewRecorder()
	f.handler.Receive(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestWebhookRejectsEventWithoutBarcode(t *testing.T) {
	f := newWebhookFixture(t)
	body := []byte(`{"item":{}}`)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/items", bytes.NewReader(body))
	req.Header.Set("X-Exl-Signature", sign(body))
	rec := httptest.NewRecorder()
	f.handler.Receive(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestWebhookStagesFailingItem(t *testing.T) {
	f := newWebhookFixture(t)

	// Barcode carries the marker already, but the shelving code is malformed.
	f.client.Put(&domain.Item{
		Barcode:       "31197000123X",
		AltCallNumber: "shelf 9",
		Provenance:    "Property of Georgetown University",
	})

	body := eventBody(t, "31197000123X")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/items", bytes.NewReader(body))
	req.Header.Set("X-Exl-Signature", sign(body))
	rec := httptest.NewRecorder()
	f.handler.Receive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := f.staging.Count(check.RowTrayCheckName); got != 1 {
		t.Errorf("staged count = %d, want 1", got)
	}
	// No suffix correction: the marker is present.
	if len(f.client.Updates) != 0 {
		t.Errorf("unexpected upstream updates: %d", len(f.client.Updates))
	}
}

func TestWebhookCorrectsMissingSuffix(t *testing.T) {
	f := newWebhookFixture(t)

	f.client.Put(&domain.Item{
		Barcode:       "31197000123",
		AltCallNumber: "R12M03S04",
		Provenance:    "Property of Georgetown University",
	})

	body := eventBody(t, "31197000123")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/items", bytes.NewReader(body))
	req.Header.Set("X-Exl-Signature", sign(body))
	rec := httptest.NewRecorder()
	f.handler.Receive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(f.client.Updates) != 1 || f.client.Updates[0].Barcode != "31197000123X" {
		t.Errorf("expected one suffix correction, got %+v", f.client.Updates)
	}
	if f.gateway.Count() != 1 {
		t.Errorf("notifications = %d, want 1", f.gateway.Count())
	}
	// Shelving code is valid, so nothing is staged.
	if got := f.staging.Count(check.RowTrayCheckName); got != 0 {
		t.Errorf("staged count = %d, want 0", got)
	}
}

func TestWebhookAcksIneligibleItem(t *testing.T) {
	f := newWebhookFixture(t)

	// Item is gone upstream; the event is still acknowledged.
	body := eventBody(t, "unknown")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/items", bytes.NewReader(body))
	req.Header.Set("X-Exl-Signature", sign(body))
	rec := httptest.NewRecorder()
	f.handler.Receive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "received") {
		t.Errorf("body = %q", rec.Body.String())
	}
}
