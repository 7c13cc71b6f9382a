package payments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/casablancax/travel-ai-platform/internal/observability/metrics"
	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

// Handler handles the payment-link webhook.
type Handler struct {
	service *Service
	logger  *logging.Logger
	metrics *metrics.VoiceMetrics
}

// NewHandler creates a new payments handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// WithMetrics attaches SMS counters. Nil-safe when absent.
func (h *Handler) WithMetrics(m *metrics.VoiceMetrics) *Handler {
	h.metrics = m
	return h
}

// SendPaymentSMS handles POST /webhooks/send-payment-sms requests.
func (h *Handler) SendPaymentSMS(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.SendLink(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrMissingFields) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   err.Error(),
			})
			return
		}
		h.metrics.ObserveSMS("failed")
		h.logger.Error("payment sms webhook failed", "lead_id", req.LeadID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
			"result":  "I'm having trouble sending the payment link. I'll have a specialist call you back to assist with payment.",
		})
		return
	}

	h.metrics.ObserveSMS("sent")
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message_sid": result.MessageSID,
		"payment_url": result.PaymentURL,
		"result":      result.Result,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
