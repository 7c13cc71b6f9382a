package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/casablancax/travel-ai-platform/internal/customer"
	"github.com/casablancax/travel-ai-platform/internal/kb"
	"github.com/casablancax/travel-ai-platform/internal/memos"
	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

// Overall status and recommended actions returned to the voice agent.
// Deposit completeness dominates; booking and scheduling sub-states only
// matter once deposits are settled.
const (
	OverallUnknown            = "unknown"
	OverallReadyToTravel      = "ready_to_travel"
	OverallReadyToSchedule    = "ready_to_schedule"
	OverallDepositsComplete   = "deposits_complete"
	OverallDepositsIncomplete = "deposits_incomplete"
	OverallDepositsPending    = "deposits_pending"

	ActionVerifyItinerary      = "verify_itinerary"
	ActionTransferToScheduling = "transfer_to_scheduling"
	ActionOfferScheduling      = "offer_scheduling"
	ActionCollectPayment       = "collect_payment"
)

// Follow-up memo types raised by the travel-rep evaluator.
const (
	MemoTypeNeedsAssignment = "needs tr assignment"
	MemoTypeAskRepToCall    = "ask tr to call"
)

// MemoCreator records follow-up notes. Failures are logged and never
// block the status response.
type MemoCreator interface {
	Create(ctx context.Context, req *memos.CreateMemoRequest) (*memos.Memo, error)
}

// Result is the aggregated customer status, recomputed on every request.
type Result struct {
	Found             bool             `json:"found"`
	Overall           string           `json:"overall"`
	Category          string           `json:"category"`
	RecommendedAction string           `json:"recommended_action,omitempty"`
	AgentMessage      string           `json:"agent_message,omitempty"`
	Customer          *customer.Record `json:"customer,omitempty"`
	ActivationMethod  string           `json:"activation_method,omitempty"`
	Deposits          DepositResult    `json:"deposits"`
	TravelRep         TravelRepResult  `json:"travel_rep"`
	Booking           BookingResult    `json:"booking"`
}

// Service is the decision layer: it fetches the record, resolves the
// package policy and combines the three evaluators into one status.
type Service struct {
	store    customer.Store
	resolver *kb.Resolver
	memos    MemoCreator
	logger   *logging.Logger
	now      func() time.Time
}

// NewService wires the aggregator. memoCreator may be nil, in which case
// follow-up memos are skipped.
func NewService(store customer.Store, resolver *kb.Resolver, memoCreator MemoCreator, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:    store,
		resolver: resolver,
		memos:    memoCreator,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source, used by tests to pin the day.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ResolveByPhone looks the caller up by phone number and evaluates their
// status. A missing customer is a structured not-found result, not an
// error; only store failures surface as errors.
func (s *Service) ResolveByPhone(ctx context.Context, phone string) (*Result, error) {
	rec, err := s.store.FindByPhone(ctx, phone)
	return s.resolve(ctx, rec, err)
}

// ResolveByCertificate looks the caller up by certificate code.
func (s *Service) ResolveByCertificate(ctx context.Context, code string) (*Result, error) {
	rec, err := s.store.FindByCertificate(ctx, code)
	return s.resolve(ctx, rec, err)
}

func (s *Service) resolve(ctx context.Context, rec *customer.Record, err error) (*Result, error) {
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return &Result{Found: false, Overall: OverallUnknown, Category: "new_caller", TravelRep: TravelRepResult{State: TravelRepNotNeeded}}, nil
		}
		return nil, err
	}
	result := s.Evaluate(ctx, rec)
	s.raiseFollowUps(ctx, rec, result)
	return result, nil
}

// Evaluate runs the evaluators over an already-fetched record.
func (s *Service) Evaluate(ctx context.Context, rec *customer.Record) *Result {
	policy, _, found := s.resolver.Resolve(rec.ResolutionCode())
	var policyRef *kb.Policy
	activation := ""
	if found {
		policyRef = &policy
		activation = policy.ActivationMethod
	}

	deposits := EvaluateDeposits(rec.ValDeposit, rec.ConfDeposit, policyRef)
	travelRep := EvaluateTravelRep(rec.TravelDate, rec.ConfirmStatus, rec.TravelRep, rec.DocsSentDate, s.now())
	booking := EvaluateBooking(rec.FlightRef, rec.HotelRef)

	result := &Result{
		Found:            true,
		Customer:         rec,
		ActivationMethod: activation,
		Deposits:         deposits,
		TravelRep:        travelRep,
		Booking:          booking,
	}
	s.combine(rec, result)
	return result
}

func (s *Service) combine(rec *customer.Record, result *Result) {
	deposits := result.Deposits
	result.Category = "pending_customer"

	switch {
	case deposits.State == DepositComplete && result.Booking.State == BookingBooked:
		result.Category = "active_customer"
		result.Overall = OverallReadyToTravel
		result.RecommendedAction = ActionVerifyItinerary
		rep := rec.TravelRep
		if customer.IsBlank(rep) {
			rep = "being assigned"
		}
		result.AgentMessage = fmt.Sprintf("Great news! Your deposits are complete and you're booked. Your travel rep is %s. Do you need your itinerary resent?", rep)

	case deposits.State == DepositComplete && result.TravelRep.HasDays && result.TravelRep.DaysRemaining >= 0:
		result.Category = "active_customer"
		result.Overall = OverallReadyToSchedule
		result.RecommendedAction = ActionTransferToScheduling
		result.AgentMessage = "Your deposits are complete! You're all set to schedule your travel dates. Would you like me to transfer you to our scheduling team?"

	case deposits.State == DepositComplete:
		result.Category = "active_customer"
		result.Overall = OverallDepositsComplete
		result.RecommendedAction = ActionOfferScheduling
		result.AgentMessage = "Your deposits are complete! You can now schedule your travel dates. When would you like to travel?"

	case deposits.State == DepositPartial:
		result.Overall = OverallDepositsIncomplete
		result.RecommendedAction = ActionCollectPayment
		result.AgentMessage = fmt.Sprintf("I see you've paid $%.0f toward your $%.0f deposit. You have $%.0f remaining. Would you like to complete your payment today?",
			deposits.TotalPaid, deposits.Expected, deposits.Remaining)

	default: // none or unknown_package
		result.Overall = OverallDepositsPending
		result.RecommendedAction = ActionCollectPayment
		if result.ActivationMethod == kb.ActivationMail {
			result.AgentMessage = fmt.Sprintf("Your deposits haven't been received yet. Have you mailed in your activation form? The total deposit needed is $%.0f.", deposits.Expected)
		} else {
			result.AgentMessage = "Your deposits haven't been received yet. You can activate your certificate online at our website. Would you like me to send you the link?"
		}
	}
}

// raiseFollowUps creates memos for the travel-rep states that need a
// human, best-effort.
func (s *Service) raiseFollowUps(ctx context.Context, rec *customer.Record, result *Result) {
	if s.memos == nil {
		return
	}

	var req *memos.CreateMemoRequest
	switch result.TravelRep.State {
	case TravelRepNeedsUrgent:
		req = &memos.CreateMemoRequest{
			Type:       MemoTypeNeedsAssignment,
			Details:    fmt.Sprintf("Travel date: %s, Days remaining: %d", rec.TravelDate, result.TravelRep.DaysRemaining),
			CustomerID: rec.CustomerID,
			Phone:      rec.PrimaryPhone,
		}
	case TravelRepAssignedNoDocs:
		req = &memos.CreateMemoRequest{
			Type:       MemoTypeAskRepToCall,
			Details:    fmt.Sprintf("Travel Rep: %s, Customer: %s", rec.TravelRep, rec.PrimaryPhone),
			CustomerID: rec.CustomerID,
			Phone:      rec.PrimaryPhone,
		}
	default:
		return
	}

	if _, err := s.memos.Create(ctx, req); err != nil {
		s.logger.Error("follow-up memo creation failed", "error", err, "memo_type", req.Type, "customer_id", rec.CustomerID)
		return
	}
	s.logger.Info("follow-up memo created", "memo_type", req.Type, "customer_id", rec.CustomerID)
}
