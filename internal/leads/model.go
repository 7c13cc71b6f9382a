// Package leads ingests ad-platform and landing-page lead submissions,
// gates them on telemarketing consent and triggers instant agent
// callbacks.
package leads

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/casablancax/travel-ai-platform/internal/customer"
)

// Lead sources accepted by the webhooks.
const (
	SourceFacebook    = "facebook"
	SourceGoogleAds   = "google_ads"
	SourceLandingPage = "landing_page"
)

// Lead status values.
const (
	StatusCallbackRequested  = "callback_requested"
	StatusCallbackInProgress = "callback_in_progress"
)

// Lead is one consented lead submission.
type Lead struct {
	LeadID           string `json:"lead_id"`
	CustomerName     string `json:"customer_name"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	Destination      string `json:"destination,omitempty"`
	TravelDates      string `json:"travel_dates,omitempty"`
	TravelersCount   string `json:"travelers_count,omitempty"`
	BudgetRange      string `json:"budget_range,omitempty"`
	SpecialOccasion  string `json:"special_occasion,omitempty"`
	ConsentGiven     bool   `json:"consent_given"`
	ConsentTimestamp string `json:"consent_timestamp,omitempty"`
	Source           string `json:"lead_source"`
	Status           string `json:"lead_status"`
	Priority         string `json:"priority"`
	Notes            string `json:"notes,omitempty"`
	CallID           string `json:"call_id,omitempty"`
	LastCallDate     string `json:"last_call_date,omitempty"`
	CreatedDate      string `json:"created_date"`
	ModifiedDate     string `json:"modified_date"`
}

var (
	// ErrConsentRequired rejects any lead without an affirmative consent
	// flag. No callback may happen without it.
	ErrConsentRequired = errors.New("consent required")

	// ErrMissingFields is returned when name, phone or email is absent.
	ErrMissingFields = errors.New("missing required fields: name, phone, email")

	// ErrLeadStoreUnavailable is returned when the backing store failed.
	ErrLeadStoreUnavailable = errors.New("lead store unavailable")
)

// NewLeadID generates a tb-prefixed six-digit lead id.
func NewLeadID() string {
	return fmt.Sprintf("tb%06d", rand.Intn(1000000))
}

// FormatPhone renders a phone number in E.164 for the dialer. Inputs
// that do not normalize to ten digits pass through unchanged.
func FormatPhone(phone string) string {
	digits := customer.NormalizePhone(phone)
	if len(digits) == 10 {
		return "+1" + digits
	}
	return phone
}

// Validate checks the required identity fields and the consent gate.
func (l *Lead) Validate() error {
	if strings.TrimSpace(l.CustomerName) == "" || strings.TrimSpace(l.Phone) == "" || strings.TrimSpace(l.Email) == "" {
		return ErrMissingFields
	}
	if !l.ConsentGiven {
		return ErrConsentRequired
	}
	return nil
}

// stamp fills generated fields on a fresh lead.
func (l *Lead) stamp(now time.Time) {
	iso := now.UTC().Format(time.RFC3339)
	if l.LeadID == "" {
		l.LeadID = NewLeadID()
	}
	l.Phone = FormatPhone(l.Phone)
	l.ConsentTimestamp = iso
	l.Status = StatusCallbackRequested
	if l.Priority == "" {
		l.Priority = "medium"
	}
	l.CreatedDate = iso
	l.ModifiedDate = iso
}
