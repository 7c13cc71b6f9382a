package memos

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/casablancax/travel-ai-platform/internal/observability/metrics"
	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

// Handler handles HTTP requests for memos.
type Handler struct {
	repo     Repository
	importer *Importer
	logger   *logging.Logger
	metrics  *metrics.VoiceMetrics
}

// NewHandler creates a new memos handler. importer may be nil when the
// voice-agent API is not configured.
func NewHandler(repo Repository, importer *Importer, logger *logging.Logger) *Handler {
	return &Handler{
		repo:     repo,
		importer: importer,
		logger:   logger,
	}
}

// WithMetrics attaches import counters. Nil-safe when absent.
func (h *Handler) WithMetrics(m *metrics.VoiceMetrics) *Handler {
	h.metrics = m
	return h
}

// Create handles POST /api/memos requests.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateMemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode memo request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	memo, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrMissingFields) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create memo", "error", err)
		http.Error(w, "memo store unavailable", http.StatusServiceUnavailable)
		return
	}

	h.logger.Info("memo created", "id", memo.ID, "memo_type", memo.Type, "vac_id", memo.CustomerID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(memo)
}

// ListByCustomerResponse is the response for listing one customer's memos.
type ListByCustomerResponse struct {
	CustomerID string  `json:"vac_id"`
	MemoCount  int     `json:"memo_count"`
	Memos      []*Memo `json:"memos"`
}

// ListByCustomer handles GET /api/memos/{vac_id} requests.
func (h *Handler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "vacID")
	if customerID == "" {
		http.Error(w, "missing vac_id", http.StatusBadRequest)
		return
	}

	list, err := h.repo.ListByCustomer(r.Context(), customerID)
	if err != nil {
		h.logger.Error("failed to list memos", "error", err, "vac_id", customerID)
		http.Error(w, "memo store unavailable", http.StatusServiceUnavailable)
		return
	}
	if list == nil {
		list = []*Memo{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListByCustomerResponse{
		CustomerID: customerID,
		MemoCount:  len(list),
		Memos:      list,
	})
}

// ImportCall handles POST /api/memos/from-call requests: it fetches one
// finished voice-agent call and writes its summary into call history.
func (h *Handler) ImportCall(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		http.Error(w, "voice-agent API not configured", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		CallID string `json:"call_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CallID == "" {
		http.Error(w, "call_id is required", http.StatusBadRequest)
		return
	}

	result, err := h.importer.ImportCall(r.Context(), req.CallID)
	if err != nil {
		h.metrics.ObserveMemoImport("failed")
		h.logger.Error("call import failed", "call_id", req.CallID, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, ErrCallMissingIdentity) || errors.Is(err, ErrCustomerMissingRIMSID) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	h.metrics.ObserveMemoImport("created")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// ImportBatch handles POST /api/memos/batch-from-calls requests.
func (h *Handler) ImportBatch(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		http.Error(w, "voice-agent API not configured", http.StatusServiceUnavailable)
		return
	}

	var req BatchImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	summary, err := h.importer.ImportBatch(r.Context(), req)
	if err != nil {
		h.logger.Error("batch call import failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.logger.Info("batch call import finished",
		"total_calls", summary.TotalCalls,
		"memos_created", summary.MemosCreated,
		"memos_failed", summary.MemosFailed,
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
