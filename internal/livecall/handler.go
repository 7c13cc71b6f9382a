package livecall

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/casablancax/travel-ai-platform/internal/observability/metrics"
	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

// Handler exposes the voice-agent webhooks and the chat interaction
// endpoint.
type Handler struct {
	tracker *Tracker
	logger  *logging.Logger
	metrics *metrics.VoiceMetrics
}

// NewHandler creates a new livecall handler.
func NewHandler(tracker *Tracker, logger *logging.Logger) *Handler {
	return &Handler{tracker: tracker, logger: logger}
}

// WithMetrics attaches webhook counters. Nil-safe when absent.
func (h *Handler) WithMetrics(m *metrics.VoiceMetrics) *Handler {
	h.metrics = m
	return h
}

type callStartedPayload struct {
	CallID string `json:"call_id"`
	Call   struct {
		CallID     string `json:"call_id"`
		FromNumber string `json:"from_number"`
		ToNumber   string `json:"to_number"`
	} `json:"call"`
	Agent struct {
		AgentName string `json:"agent_name"`
	} `json:"agent"`
	Metadata struct {
		CustomerName  string `json:"customer_name"`
		CustomerPhone string `json:"customer_phone"`
		CustomerEmail string `json:"customer_email"`
		AgentName     string `json:"agent_name"`
		LeadSource    string `json:"lead_source"`
		Campaign      string `json:"campaign"`
		Interests     string `json:"interests"`
		Notes         string `json:"notes"`
	} `json:"metadata"`
}

// CallStarted handles POST /webhooks/retell/call-started requests.
func (h *Handler) CallStarted(w http.ResponseWriter, r *http.Request) {
	var payload callStartedPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	callID := payload.CallID
	if callID == "" {
		callID = payload.Call.CallID
	}
	if callID == "" {
		http.Error(w, "missing call_id", http.StatusBadRequest)
		return
	}

	phone := payload.Metadata.CustomerPhone
	if payload.Call.FromNumber != "" {
		phone = payload.Call.FromNumber
	}
	agentName := payload.Agent.AgentName
	if agentName == "" {
		agentName = payload.Metadata.AgentName
	}

	event := CallStartedEvent{
		CallID: callID,
		Customer: CallerInfo{
			Name:  payload.Metadata.CustomerName,
			Phone: phone,
			Email: payload.Metadata.CustomerEmail,
		},
		Lead: LeadInfo{
			Source:    payload.Metadata.LeadSource,
			Campaign:  payload.Metadata.Campaign,
			Interests: payload.Metadata.Interests,
			Notes:     payload.Metadata.Notes,
		},
		AgentName: agentName,
	}

	if err := h.tracker.OnCallStarted(r.Context(), event); err != nil {
		h.metrics.ObserveWebhook("call_started", "error")
		h.logger.Error("call-started processing failed", "call_id", callID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.metrics.ObserveWebhook("call_started", "ok")
	h.metrics.SetActiveCalls(h.tracker.Sessions().Len())
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Call alert sent"})
}

type transcriptSegmentPayload struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// TranscriptUpdate handles POST /webhooks/retell/transcript-update
// requests. The transcript field may be a single segment or an array.
func (h *Handler) TranscriptUpdate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CallID     string          `json:"call_id"`
		Transcript json.RawMessage `json:"transcript"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.CallID == "" {
		http.Error(w, "missing call_id", http.StatusBadRequest)
		return
	}

	var raw []transcriptSegmentPayload
	if len(payload.Transcript) > 0 {
		if err := json.Unmarshal(payload.Transcript, &raw); err != nil {
			var single transcriptSegmentPayload
			if err := json.Unmarshal(payload.Transcript, &single); err != nil {
				http.Error(w, "invalid transcript payload", http.StatusBadRequest)
				return
			}
			raw = append(raw, single)
		}
	}

	segments := make([]TranscriptSegment, 0, len(raw))
	for _, item := range raw {
		segment := TranscriptSegment{Role: item.Role, Content: item.Content}
		if ts, err := time.Parse(time.RFC3339, item.Timestamp); err == nil {
			segment.Timestamp = ts
		}
		segments = append(segments, segment)
	}

	if err := h.tracker.OnTranscript(r.Context(), payload.CallID, segments); err != nil {
		h.metrics.ObserveWebhook("transcript_update", "error")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.metrics.ObserveWebhook("transcript_update", "ok")
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Transcript updates sent"})
}

// CallEnded handles POST /webhooks/retell/call-ended requests.
func (h *Handler) CallEnded(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CallID       string `json:"call_id"`
		EndReason    string `json:"end_reason"`
		CallAnalysis struct {
			Outcome string `json:"outcome"`
		} `json:"call_analysis"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.CallID == "" {
		http.Error(w, "missing call_id", http.StatusBadRequest)
		return
	}

	outcome := payload.CallAnalysis.Outcome
	if outcome == "" {
		outcome = payload.EndReason
	}

	if err := h.tracker.OnCallEnded(r.Context(), payload.CallID, outcome); err != nil {
		h.metrics.ObserveWebhook("call_ended", "error")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.metrics.ObserveWebhook("call_ended", "ok")
	h.metrics.SetActiveCalls(h.tracker.Sessions().Len())
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Call ended notification sent"})
}

// ChatInteraction handles POST /webhooks/chat/interaction requests:
// button clicks coming back from the chat space.
func (h *Handler) ChatInteraction(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Action struct {
			ActionMethodName string `json:"actionMethodName"`
		} `json:"action"`
		Parameters []ActionParameter `json:"parameters"`
		User       struct {
			DisplayName string `json:"displayName"`
			Name        string `json:"name"`
		} `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if payload.Action.ActionMethodName != takeoverFunction {
		writeJSON(w, http.StatusOK, map[string]string{"text": "Action received"})
		return
	}

	callID := ""
	for _, p := range payload.Parameters {
		if p.Key == "call_id" {
			callID = p.Value
		}
	}
	if callID == "" {
		writeJSON(w, http.StatusOK, map[string]string{"text": "❌ Error: Call ID not found"})
		return
	}

	userName := payload.User.DisplayName
	if userName == "" {
		userName = payload.User.Name
	}

	text, active := h.tracker.OnTakeover(r.Context(), callID, userName)
	if !active {
		writeJSON(w, http.StatusOK, map[string]string{"text": "❌ Call has already ended or is not active"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"actionResponse": map[string]string{"type": "UPDATE_MESSAGE"},
		"text":           text,
	})
}

// ActiveCallEntry is one row in the active-calls listing.
type ActiveCallEntry struct {
	CallID          string     `json:"call_id"`
	ThreadKey       string     `json:"thread_key"`
	Customer        CallerInfo `json:"customer"`
	StartTime       time.Time  `json:"start_time"`
	TranscriptCount int        `json:"transcript_count"`
	DurationSeconds int        `json:"duration"`
}

// ActiveCalls handles GET /api/livecalls requests.
func (h *Handler) ActiveCalls(w http.ResponseWriter, r *http.Request) {
	sessions := h.tracker.Sessions().Snapshot()
	now := h.tracker.now()

	calls := make([]ActiveCallEntry, 0, len(sessions))
	for _, session := range sessions {
		calls = append(calls, ActiveCallEntry{
			CallID:          session.CallID,
			ThreadKey:       session.ThreadKey,
			Customer:        session.Customer,
			StartTime:       session.StartTime,
			TranscriptCount: session.TranscriptCount,
			DurationSeconds: int(now.Sub(session.StartTime).Seconds()),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"active_call_count": len(calls),
		"calls":             calls,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
