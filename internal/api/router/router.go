package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/casablancax/travel-ai-platform/internal/http/middleware"
	"github.com/casablancax/travel-ai-platform/internal/leads"
	"github.com/casablancax/travel-ai-platform/internal/livecall"
	"github.com/casablancax/travel-ai-platform/internal/memos"
	"github.com/casablancax/travel-ai-platform/internal/payments"
	"github.com/casablancax/travel-ai-platform/internal/status"
	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	StatusHandler   *status.Handler
	MemosHandler    *memos.Handler
	LivecallHandler *livecall.Handler
	LeadsHandler    *leads.Handler
	PaymentsHandler *payments.Handler
	MetricsHandler  http.Handler

	// Health reports backing-store reachability; nil means always healthy.
	Health func(r *http.Request) error

	WebhookSecret      string
	AdminAuthSecret    string
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthHandler(cfg.Health))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Voice-agent webhooks. Signed by the voice platform; the chat and
	// lead webhooks carry their own verification schemes.
	r.Group(func(hooks chi.Router) {
		hooks.Use(httpmiddleware.VerifyWebhookSignature(cfg.WebhookSecret))
		if cfg.LivecallHandler != nil {
			hooks.Post("/webhooks/retell/call-started", cfg.LivecallHandler.CallStarted)
			hooks.Post("/webhooks/retell/transcript-update", cfg.LivecallHandler.TranscriptUpdate)
			hooks.Post("/webhooks/retell/call-ended", cfg.LivecallHandler.CallEnded)
		}
	})

	r.Group(func(public chi.Router) {
		if cfg.LivecallHandler != nil {
			public.Post("/webhooks/chat/interaction", cfg.LivecallHandler.ChatInteraction)
		}
		if cfg.LeadsHandler != nil {
			public.Post("/webhooks/google-leads", cfg.LeadsHandler.GoogleLeads)
			public.Post("/webhooks/landing-page", cfg.LeadsHandler.LandingPage)
			public.Get("/webhooks/facebook-leads", cfg.LeadsHandler.FacebookVerify)
			public.Post("/webhooks/facebook-leads", cfg.LeadsHandler.FacebookLeads)
		}
		if cfg.PaymentsHandler != nil {
			public.Post("/webhooks/send-payment-sms", cfg.PaymentsHandler.SendPaymentSMS)
		}
	})

	// Agent tool endpoints the voice agent calls mid-conversation.
	r.Group(func(api chi.Router) {
		api.Use(httpmiddleware.RateLimit(20, 40))

		if cfg.StatusHandler != nil {
			api.Post("/api/rims/phone-lookup", cfg.StatusHandler.PhoneLookup)
			api.Post("/api/rims/certificate-lookup", cfg.StatusHandler.CertificateLookup)
			api.Get("/api/kb/package/{code}", cfg.StatusHandler.PackageInfo)
			api.Post("/api/logic/deposits-check", cfg.StatusHandler.DepositsCheck)
			api.Post("/api/logic/travel-rep-check", cfg.StatusHandler.TravelRepCheck)
			api.Post("/api/logic/booking-check", cfg.StatusHandler.BookingCheck)
			api.Get("/api/customer/status", cfg.StatusHandler.CustomerStatus)
		}
		if cfg.MemosHandler != nil {
			api.Post("/api/memos", cfg.MemosHandler.Create)
			api.Get("/api/memos/{vacID}", cfg.MemosHandler.ListByCustomer)
			api.Post("/api/memos/from-call", cfg.MemosHandler.ImportCall)
		}
		if cfg.LivecallHandler != nil {
			api.Get("/api/livecalls", cfg.LivecallHandler.ActiveCalls)
		}
	})

	// Ops endpoints (protected by JWT)
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.MemosHandler != nil {
				admin.Post("/memos/batch-from-calls", cfg.MemosHandler.ImportBatch)
			}
		})
	}

	return r
}

func healthHandler(check func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		code := http.StatusOK
		if check != nil {
			if err := check(r); err != nil {
				payload["status"] = "degraded"
				payload["error"] = err.Error()
				code = http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(payload)
	}
}
