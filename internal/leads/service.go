package leads

import (
	"context"
	"time"

	"github.com/casablancax/travel-ai-platform/internal/retell"
	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

// Dialer is the slice of the voice-agent client the service needs.
type Dialer interface {
	CreatePhoneCall(ctx context.Context, req retell.CreatePhoneCallRequest) (string, error)
}

// Service runs the lead pipeline: validate consent, persist, dial.
type Service struct {
	repo       Repository
	dialer     Dialer
	agentID    string
	fromNumber string
	logger     *logging.Logger
	now        func() time.Time
}

// NewService wires the pipeline. dialer may be nil when outbound calling
// is not configured; leads are then stored without a callback.
func NewService(repo Repository, dialer Dialer, agentID, fromNumber string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:       repo,
		dialer:     dialer,
		agentID:    agentID,
		fromNumber: fromNumber,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the time source for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ProcessResult reports what happened to a submitted lead.
type ProcessResult struct {
	LeadID        string `json:"lead_id"`
	CallInitiated bool   `json:"call_initiated"`
	CallID        string `json:"call_id,omitempty"`
}

// Process validates, stores and dials a lead. Consent rejection surfaces
// as ErrConsentRequired; a failed callback is logged but does not undo
// the stored lead.
func (s *Service) Process(ctx context.Context, lead *Lead) (*ProcessResult, error) {
	if err := lead.Validate(); err != nil {
		return nil, err
	}

	lead.stamp(s.now())
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}
	s.logger.Info("lead saved", "lead_id", lead.LeadID, "source", lead.Source)

	result := &ProcessResult{LeadID: lead.LeadID}
	if s.dialer == nil {
		return result, nil
	}

	callID, err := s.dialer.CreatePhoneCall(ctx, retell.CreatePhoneCallRequest{
		FromNumber: s.fromNumber,
		ToNumber:   lead.Phone,
		AgentID:    s.agentID,
		DynamicVariables: map[string]string{
			"lead_id":        lead.LeadID,
			"customer_name":  lead.CustomerName,
			"customer_email": lead.Email,
		},
	})
	if err != nil {
		s.logger.Error("instant callback failed", "lead_id", lead.LeadID, "error", err)
		return result, nil
	}

	s.logger.Info("instant callback started", "lead_id", lead.LeadID, "call_id", callID)
	result.CallInitiated = true
	result.CallID = callID

	if err := s.repo.MarkCallbackStarted(ctx, lead.LeadID, callID, s.now()); err != nil {
		s.logger.Error("lead callback update failed", "lead_id", lead.LeadID, "error", err)
	}
	return result, nil
}
