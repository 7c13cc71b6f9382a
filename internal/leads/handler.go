package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

// Handler handles the lead webhook endpoints.
type Handler struct {
	service     *Service
	facebook    *FacebookClient
	verifyToken string
	logger      *logging.Logger
}

// NewHandler creates a new leads handler. facebook may be nil when the
// Graph API is not configured.
func NewHandler(service *Service, facebook *FacebookClient, verifyToken string, logger *logging.Logger) *Handler {
	return &Handler{
		service:     service,
		facebook:    facebook,
		verifyToken: verifyToken,
		logger:      logger,
	}
}

// flexBool accepts true, "true", false and "false" in webhook payloads.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true", `"true"`:
		*b = true
	default:
		*b = false
	}
	return nil
}

// GoogleLeads handles POST /webhooks/google-leads requests.
func (h *Handler) GoogleLeads(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LeadID         string   `json:"lead_id"`
		FullName       string   `json:"full_name"`
		Phone          string   `json:"phone"`
		Email          string   `json:"email"`
		Destination    string   `json:"destination"`
		TravelTimeline string   `json:"travel_timeline"`
		TravelersCount string   `json:"travelers_count"`
		BudgetRange    string   `json:"budget_range"`
		ConsentGiven   flexBool `json:"consent_given"`
		CampaignID     string   `json:"campaign_id"`
		CampaignName   string   `json:"campaign_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	lead := &Lead{
		LeadID:         req.LeadID,
		CustomerName:   req.FullName,
		Phone:          req.Phone,
		Email:          req.Email,
		Destination:    req.Destination,
		TravelDates:    req.TravelTimeline,
		TravelersCount: req.TravelersCount,
		BudgetRange:    req.BudgetRange,
		ConsentGiven:   bool(req.ConsentGiven),
		Source:         SourceGoogleAds,
	}
	if req.CampaignName != "" || req.CampaignID != "" {
		lead.Notes = "Campaign: " + req.CampaignName + " (" + req.CampaignID + ")"
	}

	result, err := h.service.Process(r.Context(), lead)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Missing required fields: full_name, phone, email"})
		case errors.Is(err, ErrConsentRequired):
			h.logger.Warn("lead rejected, no consent", "source", SourceGoogleAds)
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Lead rejected - no consent given"})
		default:
			h.logger.Error("google lead processing failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"lead_id":        result.LeadID,
		"call_initiated": result.CallInitiated,
		"call_id":        result.CallID,
	})
}

// LandingPage handles POST /webhooks/landing-page requests.
func (h *Handler) LandingPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string   `json:"name"`
		Phone          string   `json:"phone"`
		Email          string   `json:"email"`
		Destination    string   `json:"destination"`
		TravelDates    string   `json:"travel_dates"`
		TravelersCount string   `json:"travelers_count"`
		BudgetRange    string   `json:"budget_range"`
		Consent        flexBool `json:"consent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	lead := &Lead{
		CustomerName:   req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Destination:    req.Destination,
		TravelDates:    req.TravelDates,
		TravelersCount: req.TravelersCount,
		BudgetRange:    req.BudgetRange,
		ConsentGiven:   bool(req.Consent),
		Source:         SourceLandingPage,
	}

	result, err := h.service.Process(r.Context(), lead)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Missing required fields"})
		case errors.Is(err, ErrConsentRequired):
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Consent required"})
		default:
			h.logger.Error("landing page lead processing failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to process lead"})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "We're calling you now!",
		"lead_id": result.LeadID,
	})
}

// FacebookVerify handles GET /webhooks/facebook-leads requests: the
// subscription handshake.
func (h *Handler) FacebookVerify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		h.logger.Info("facebook webhook verified")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	h.logger.Warn("facebook webhook verification failed")
	w.WriteHeader(http.StatusForbidden)
}

type facebookWebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				LeadgenID string `json:"leadgen_id"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// FacebookLeads handles POST /webhooks/facebook-leads requests. The
// platform expects an immediate 200; lead processing continues in the
// background.
func (h *Handler) FacebookLeads(w http.ResponseWriter, r *http.Request) {
	var payload facebookWebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))

	if payload.Object != "page" || h.facebook == nil {
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "leadgen" || change.Value.LeadgenID == "" {
				continue
			}
			leadgenID := change.Value.LeadgenID
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := h.processFacebookLead(ctx, leadgenID); err != nil {
					h.logger.Error("facebook lead processing failed", "leadgen_id", leadgenID, "error", err)
				}
			}()
		}
	}
}

func (h *Handler) processFacebookLead(ctx context.Context, leadgenID string) error {
	fbLead, err := h.facebook.FetchLead(ctx, leadgenID)
	if err != nil {
		return err
	}

	lead := &Lead{
		CustomerName:   fbLead.Field("full_name", "name"),
		Phone:          fbLead.Field("phone", "phone_number"),
		Email:          fbLead.Field("email"),
		Destination:    fbLead.Field("destination", "where_do_you_want_to_travel"),
		TravelDates:    fbLead.Field("travel_dates", "when_are_you_planning_to_travel"),
		TravelersCount: fbLead.Field("travelers_count", "how_many_travelers"),
		BudgetRange:    fbLead.Field("budget_range", "estimated_budget_per_person"),
		ConsentGiven:   fbLead.ConsentGiven(),
		Source:         SourceFacebook,
	}

	if _, err := h.service.Process(ctx, lead); err != nil {
		if errors.Is(err, ErrConsentRequired) {
			h.logger.Warn("facebook lead rejected, no consent", "leadgen_id", leadgenID)
			return nil
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
