package status

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/casablancax/travel-ai-platform/internal/customer"
	"github.com/casablancax/travel-ai-platform/internal/kb"
	"github.com/casablancax/travel-ai-platform/internal/observability/metrics"
	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

// Handler exposes the lookup and status endpoints the voice agent calls
// mid-conversation.
type Handler struct {
	service  *Service
	store    customer.Store
	resolver *kb.Resolver
	logger   *logging.Logger
	metrics  *metrics.VoiceMetrics
}

// NewHandler creates a new status handler.
func NewHandler(service *Service, store customer.Store, resolver *kb.Resolver, logger *logging.Logger) *Handler {
	return &Handler{
		service:  service,
		store:    store,
		resolver: resolver,
		logger:   logger,
	}
}

// WithMetrics attaches lookup counters. Nil-safe when absent.
func (h *Handler) WithMetrics(m *metrics.VoiceMetrics) *Handler {
	h.metrics = m
	return h
}

// LookupResponse is the customer lookup payload.
type LookupResponse struct {
	Found        bool             `json:"found"`
	Message      string           `json:"message,omitempty"`
	CustomerData *customer.Record `json:"customer_data,omitempty"`
}

// PhoneLookup handles POST /api/rims/phone-lookup requests.
func (h *Handler) PhoneLookup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber string `json:"phone_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PhoneNumber == "" {
		writeError(w, http.StatusBadRequest, "Missing phone_number", "Phone number is required")
		return
	}

	started := time.Now()
	rec, err := h.store.FindByPhone(r.Context(), req.PhoneNumber)
	h.metrics.ObserveLookupLatency("phone", time.Since(started).Seconds())
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			h.metrics.ObserveLookup("phone", "not_found")
			writeJSON(w, http.StatusOK, LookupResponse{Found: false, Message: "Customer not found in RIMS database"})
			return
		}
		h.metrics.ObserveLookup("phone", "error")
		h.logger.Error("phone lookup failed", "error", err)
		http.Error(w, "customer store unavailable", http.StatusServiceUnavailable)
		return
	}

	h.metrics.ObserveLookup("phone", "found")
	writeJSON(w, http.StatusOK, LookupResponse{Found: true, CustomerData: rec})
}

// CertificateLookup handles POST /api/rims/certificate-lookup requests.
func (h *Handler) CertificateLookup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CertificateNumber string `json:"certificate_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CertificateNumber == "" {
		writeError(w, http.StatusBadRequest, "Missing certificate_number", "Certificate number is required")
		return
	}

	started := time.Now()
	rec, err := h.store.FindByCertificate(r.Context(), req.CertificateNumber)
	h.metrics.ObserveLookupLatency("certificate", time.Since(started).Seconds())
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			h.metrics.ObserveLookup("certificate", "not_found")
			writeJSON(w, http.StatusOK, LookupResponse{Found: false, Message: "Certificate not found in RIMS database"})
			return
		}
		h.metrics.ObserveLookup("certificate", "error")
		h.logger.Error("certificate lookup failed", "error", err)
		http.Error(w, "customer store unavailable", http.StatusServiceUnavailable)
		return
	}

	h.metrics.ObserveLookup("certificate", "found")
	writeJSON(w, http.StatusOK, LookupResponse{Found: true, CustomerData: rec})
}

// PackageInfoResponse is the knowledge-base lookup payload.
type PackageInfoResponse struct {
	Found           bool       `json:"found"`
	CertificateCode string     `json:"certificate_code,omitempty"`
	PackageInfo     *kb.Policy `json:"package_info,omitempty"`
	Message         string     `json:"message,omitempty"`
	VariationsTried []string   `json:"variations_tried,omitempty"`
}

// PackageInfo handles GET /api/kb/package/{code} requests. The code goes
// through progressive stripping, so BEACH123 resolves via BEACH.
func (h *Handler) PackageInfo(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "Missing certificate code", "Certificate code is required")
		return
	}

	policy, matched, found := h.resolver.Resolve(code)
	if !found {
		writeJSON(w, http.StatusNotFound, PackageInfoResponse{
			Found:           false,
			Message:         "Package not found in knowledge base",
			VariationsTried: kb.CandidateCodes(code),
		})
		return
	}

	writeJSON(w, http.StatusOK, PackageInfoResponse{
		Found:           true,
		CertificateCode: matched,
		PackageInfo:     &policy,
	})
}

// decodeCustomerData pulls the customer_data object out of a logic-check
// request body. The row arrives in raw table-column form.
func decodeCustomerData(w http.ResponseWriter, r *http.Request) (*customer.Record, bool) {
	var req struct {
		CustomerData map[string]any `json:"customer_data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	if req.CustomerData == nil {
		writeError(w, http.StatusBadRequest, "Missing customer_data", "customer_data object is required")
		return nil, false
	}
	return customer.FromRow(req.CustomerData), true
}

// DepositsCheckResponse is the deposits-check payload.
type DepositsCheckResponse struct {
	DepositResult
	CertificateCode  string `json:"certificate_code,omitempty"`
	ActivationMethod string `json:"activation_method,omitempty"`
}

// DepositsCheck handles POST /api/logic/deposits-check requests.
func (h *Handler) DepositsCheck(w http.ResponseWriter, r *http.Request) {
	rec, ok := decodeCustomerData(w, r)
	if !ok {
		return
	}

	var policyRef *kb.Policy
	activation := ""
	matched := ""
	if policy, code, found := h.resolver.Resolve(rec.ResolutionCode()); found {
		policyRef = &policy
		activation = policy.ActivationMethod
		matched = code
	}

	writeJSON(w, http.StatusOK, DepositsCheckResponse{
		DepositResult:    EvaluateDeposits(rec.ValDeposit, rec.ConfDeposit, policyRef),
		CertificateCode:  matched,
		ActivationMethod: activation,
	})
}

// TravelRepCheck handles POST /api/logic/travel-rep-check requests.
func (h *Handler) TravelRepCheck(w http.ResponseWriter, r *http.Request) {
	rec, ok := decodeCustomerData(w, r)
	if !ok {
		return
	}

	result := EvaluateTravelRep(rec.TravelDate, rec.ConfirmStatus, rec.TravelRep, rec.DocsSentDate, h.service.now())
	writeJSON(w, http.StatusOK, result)
}

// BookingCheck handles POST /api/logic/booking-check requests.
func (h *Handler) BookingCheck(w http.ResponseWriter, r *http.Request) {
	rec, ok := decodeCustomerData(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, EvaluateBooking(rec.FlightRef, rec.HotelRef))
}

// CustomerStatus handles GET /api/customer/status requests: one call
// returns the whole aggregated picture for the caller.
func (h *Handler) CustomerStatus(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	certificate := r.URL.Query().Get("certificate")

	var result *Result
	var err error
	started := time.Now()
	switch {
	case phone != "":
		result, err = h.service.ResolveByPhone(r.Context(), phone)
		h.metrics.ObserveLookupLatency("status_phone", time.Since(started).Seconds())
	case certificate != "":
		result, err = h.service.ResolveByCertificate(r.Context(), certificate)
		h.metrics.ObserveLookupLatency("status_certificate", time.Since(started).Seconds())
	default:
		writeError(w, http.StatusBadRequest, "Missing lookup parameter", "A phone or certificate query parameter is required")
		return
	}
	if err != nil {
		h.metrics.ObserveLookup("status", "error")
		h.logger.Error("customer status failed", "error", err)
		http.Error(w, "customer store unavailable", http.StatusServiceUnavailable)
		return
	}
	if result != nil && result.Found {
		h.metrics.ObserveLookup("status", "found")
	} else {
		h.metrics.ObserveLookup("status", "not_found")
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, errMsg, message string) {
	writeJSON(w, status, map[string]string{
		"error":   errMsg,
		"message": message,
	})
}
