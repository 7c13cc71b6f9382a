// Package payments sends planning-fee payment links to customers over
// SMS after the voice agent collects acceptance.
package payments

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/casablancax/travel-ai-platform/internal/leads"
	"github.com/casablancax/travel-ai-platform/internal/notify"
	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

// Link status values recorded against the lead.
const (
	LinkStatusSent   = "sent"
	LinkStatusFailed = "sms_failed"

	StatusPaymentLinkSent = "payment_link_sent"
)

// Recorder persists payment-link delivery outcomes against the lead.
type Recorder interface {
	RecordLinkSent(ctx context.Context, leadID, paymentURL, messageSID string, at time.Time) error
	RecordLinkFailed(ctx context.Context, leadID, reason string, at time.Time) error
}

// ErrMissingFields is returned when the request lacks identity fields.
var ErrMissingFields = errors.New("missing required fields: lead_id, phone, customer_name, email")

// LinkRequest is the payload the voice agent sends when the customer
// accepts the planning fee.
type LinkRequest struct {
	LeadID       string  `json:"lead_id"`
	Phone        string  `json:"phone"`
	CustomerName string  `json:"customer_name"`
	Email        string  `json:"email"`
	Amount       float64 `json:"amount"`
}

// Validate checks required fields.
func (r *LinkRequest) Validate() error {
	if strings.TrimSpace(r.LeadID) == "" ||
		strings.TrimSpace(r.Phone) == "" ||
		strings.TrimSpace(r.CustomerName) == "" ||
		strings.TrimSpace(r.Email) == "" {
		return ErrMissingFields
	}
	return nil
}

// LinkResult reports a delivered payment link. Result carries the
// sentence the voice agent reads back to the caller.
type LinkResult struct {
	MessageSID string `json:"message_sid"`
	PaymentURL string `json:"payment_url"`
	Result     string `json:"result"`
}

// Service generates payment URLs and delivers them over SMS.
type Service struct {
	sms            notify.SMSSender
	recorder       Recorder
	paymentPageURL string
	logger         *logging.Logger
	now            func() time.Time
}

// NewService wires the payment-link service.
func NewService(sms notify.SMSSender, recorder Recorder, paymentPageURL string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		sms:            sms,
		recorder:       recorder,
		paymentPageURL: paymentPageURL,
		logger:         logger,
		now:            time.Now,
	}
}

// WithClock overrides the time source for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// PaymentURL builds the hosted payment page URL with pre-filled fields.
func (s *Service) PaymentURL(leadID, customerName, email string) string {
	params := url.Values{}
	params.Set("lead_id", leadID)
	params.Set("name", customerName)
	params.Set("email", email)
	return s.paymentPageURL + "?" + params.Encode()
}

// SendLink delivers the payment link and records the outcome. A failed
// SMS is an error; the failure is still recorded against the lead.
func (s *Service) SendLink(ctx context.Context, req *LinkRequest) (*LinkResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	paymentURL := s.PaymentURL(req.LeadID, req.CustomerName, req.Email)
	phone := leads.FormatPhone(req.Phone)
	body := composeMessage(req.CustomerName, paymentURL, req.Amount)

	sid, err := s.sms.SendSMS(ctx, phone, body)
	if err != nil {
		s.logger.Error("payment link sms failed", "lead_id", req.LeadID, "error", err)
		if s.recorder != nil {
			if recordErr := s.recorder.RecordLinkFailed(ctx, req.LeadID, err.Error(), s.now()); recordErr != nil {
				s.logger.Error("payment link failure not recorded", "lead_id", req.LeadID, "error", recordErr)
			}
		}
		return nil, fmt.Errorf("send payment link: %w", err)
	}

	if s.recorder != nil {
		if err := s.recorder.RecordLinkSent(ctx, req.LeadID, paymentURL, sid, s.now()); err != nil {
			s.logger.Error("payment link not recorded", "lead_id", req.LeadID, "error", err)
		}
	}

	s.logger.Info("payment link sent", "lead_id", req.LeadID, "sid", sid, "phone", phone)
	return &LinkResult{
		MessageSID: sid,
		PaymentURL: paymentURL,
		Result:     "Payment link sent successfully to " + phone,
	}, nil
}

func composeMessage(customerName, paymentURL string, amount float64) string {
	return fmt.Sprintf(`Hi %s!

Complete your TravelBucks planning fee payment here:

%s

Amount: $%.0f

This secure link will take you to our payment page. Once completed, your travel specialist will be in touch within 24 hours.

Questions? Call 1-800-TB-VOICE`, customerName, paymentURL, amount)
}
