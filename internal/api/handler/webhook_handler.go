package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/shelfcheck/item-audit/internal/api/middleware"
	"github.com/shelfcheck/item-audit/internal/api/security"
	"github.com/shelfcheck/item-audit/internal/domain"
	"github.com/shelfcheck/item-audit/internal/metrics"
	"github.com/shelfcheck/item-audit/internal/service"
)

// signatureHeader carries the base64 HMAC-SHA256 of the raw request body.
const signatureHeader = "X-Exl-Signature"

// WebhookHandler receives item change-events from the item-management
// platform.
type WebhookHandler struct {
	svc     *service.IntakeService
	secret  string
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewWebhookHandler(svc *service.IntakeService, secret string, m *metrics.Metrics, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{svc: svc, secret: secret, metrics: m, logger: logger}
}

// Challenge handles GET /webhooks/items
//
// The platform registers the endpoint with a challenge/response handshake:
// echo the challenge parameter back as JSON.
func (h *WebhookHandler) Challenge(w http.ResponseWriter, r *http.Request) {
	if c := r.URL.Query().Get("challenge"); c != "" {
		respondJSON(w, http.StatusOK, map[string]string{"challenge": c})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Receive handles POST /webhooks/items
//
// Once the envelope validates, the response is always 200 regardless of
// check outcome. The event source only needs the delivery acknowledged.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	if !security.ValidSignature(body, h.secret, r.Header.Get(signatureHeader)) {
		h.metrics.WebhookEvents.WithLabelValues("bad_signature").Inc()
		h.logger.Warn("webhook signature mismatch",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
		)
		mapError(w, domain.ErrInvalidSignature)
		return
	}

	var event domain.ItemEvent
	if err := json.Unmarshal(body, &event); err != nil || event.Item.Barcode == "" {
		h.metrics.WebhookEvents.WithLabelValues("bad_payload").Inc()
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	h.metrics.WebhookEvents.WithLabelValues("accepted").Inc()
	h.svc.Handle(r.Context(), event.Item.Barcode)

	respondJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
