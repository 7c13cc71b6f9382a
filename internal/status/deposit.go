package status

import "github.com/casablancax/travel-ai-platform/internal/kb"

// DepositState classifies how much of the required deposit has been paid.
type DepositState string

const (
	DepositNone           DepositState = "none"
	DepositPartial        DepositState = "partial"
	DepositComplete       DepositState = "complete"
	DepositUnknownPackage DepositState = "unknown_package"
)

// DepositResult carries the classification plus the amounts behind it.
// Expected and Remaining are only meaningful when the package resolved.
type DepositResult struct {
	State     DepositState `json:"state"`
	ValDep    float64      `json:"val_dep"`
	ConfDep   float64      `json:"conf_deposit"`
	TotalPaid float64      `json:"total_paid"`
	Expected  float64      `json:"expected_deposit,omitempty"`
	Remaining float64      `json:"remaining"`
}

// EvaluateDeposits compares paid amounts against the resolved policy.
// The policy-missing check comes first: a zero deposit against an
// unknown package is not the same as a zero deposit against a quoted
// one, and the expected amount must not be fabricated.
func EvaluateDeposits(valDep, confDep float64, policy *kb.Policy) DepositResult {
	result := DepositResult{
		ValDep:    valDep,
		ConfDep:   confDep,
		TotalPaid: valDep + confDep,
	}

	if policy == nil {
		result.State = DepositUnknownPackage
		return result
	}

	result.Expected = policy.ExpectedDeposit
	switch {
	case result.TotalPaid == 0:
		result.State = DepositNone
		result.Remaining = policy.ExpectedDeposit
	case result.TotalPaid >= policy.ExpectedDeposit:
		result.State = DepositComplete
	default:
		result.State = DepositPartial
		result.Remaining = policy.ExpectedDeposit - result.TotalPaid
	}
	return result
}
