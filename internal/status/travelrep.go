package status

import (
	"time"

	"github.com/casablancax/travel-ai-platform/internal/customer"
)

// TravelRepState classifies where a customer sits in the travel-rep
// assignment pipeline.
type TravelRepState string

const (
	TravelRepNotNeeded      TravelRepState = "not_needed"
	TravelRepNoDate         TravelRepState = "no_date"
	TravelRepPastDate       TravelRepState = "past_date"
	TravelRepNotConfirmed   TravelRepState = "not_confirmed"
	TravelRepNeedsUrgent    TravelRepState = "needs_urgent"
	TravelRepNormalWindow   TravelRepState = "normal_window"
	TravelRepTooEarly       TravelRepState = "too_early"
	TravelRepAssignedNoDocs TravelRepState = "assigned_no_docs"
	TravelRepComplete       TravelRepState = "complete"
)

// Travel-rep assignment is expected inside this pre-departure window.
// Closer than the urgent threshold needs a follow-up memo; further out
// than the early threshold needs nothing yet.
const (
	urgentThresholdDays = 45
	earlyThresholdDays  = 75
)

// TravelRepResult is the evaluator output. HasDays reports whether a
// travel date was present and parseable; DaysRemaining is only valid
// when it is.
type TravelRepResult struct {
	State         TravelRepState `json:"state"`
	DaysRemaining int            `json:"days_remaining,omitempty"`
	HasDays       bool           `json:"-"`
	RepName       string         `json:"travel_rep_name,omitempty"`
	DocsSentDate  string         `json:"docs_sent_date,omitempty"`
}

// EvaluateTravelRep walks the assignment decision chain in order; the
// first matching branch wins, so the states are mutually exclusive.
func EvaluateTravelRep(travelDate, confirmStatus, repName, docsSentDate string, today time.Time) TravelRepResult {
	if customer.IsBlank(travelDate) {
		return TravelRepResult{State: TravelRepNoDate}
	}

	days, ok := daysUntil(travelDate, today)
	if !ok {
		// Unparseable dates are treated like the blank sentinels.
		return TravelRepResult{State: TravelRepNoDate}
	}
	if days < 0 {
		return TravelRepResult{State: TravelRepPastDate, DaysRemaining: days, HasDays: true}
	}

	if confirmStatus != "confirm" {
		return TravelRepResult{State: TravelRepNotConfirmed, DaysRemaining: days, HasDays: true}
	}

	if customer.IsBlank(repName) {
		result := TravelRepResult{DaysRemaining: days, HasDays: true}
		switch {
		case days < urgentThresholdDays:
			result.State = TravelRepNeedsUrgent
		case days <= earlyThresholdDays:
			result.State = TravelRepNormalWindow
		default:
			result.State = TravelRepTooEarly
		}
		return result
	}

	if customer.IsBlank(docsSentDate) {
		return TravelRepResult{State: TravelRepAssignedNoDocs, DaysRemaining: days, HasDays: true, RepName: repName}
	}

	return TravelRepResult{State: TravelRepComplete, DaysRemaining: days, HasDays: true, RepName: repName, DocsSentDate: docsSentDate}
}

// daysUntil computes the whole-day calendar difference between today and
// the travel date, both taken at UTC midnight. Day boundaries therefore
// shift at UTC, which keeps the 45/75-day thresholds deterministic.
func daysUntil(travelDate string, today time.Time) (int, bool) {
	parsed, err := time.Parse("2006-01-02", travelDate)
	if err != nil {
		return 0, false
	}
	travel := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	now := today.UTC()
	base := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(travel.Sub(base).Hours() / 24), true
}
