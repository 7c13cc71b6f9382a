package memos

import (
	"errors"
	"strings"
	"time"
)

// Author recorded on memos the platform creates on its own.
const createdByAgent = "AI Agent"

// Memo is one follow-up note attached to a customer.
type Memo struct {
	ID          string `json:"id"`
	Type        string `json:"memo_type"`
	Details     string `json:"details"`
	CustomerID  string `json:"vac_id"`
	Phone       string `json:"phone_number,omitempty"`
	CreatedDate string `json:"created_date"` // YYYY-MM-DD
	CreatedBy   string `json:"created_by"`
}

// CreateMemoRequest is the input for creating a memo.
type CreateMemoRequest struct {
	Type       string `json:"memo_type"`
	Details    string `json:"details"`
	CustomerID string `json:"vac_id"`
	Phone      string `json:"phone_number"`
}

var (
	// ErrMissingFields is returned when required memo fields are absent.
	ErrMissingFields = errors.New("memo_type and vac_id are required")

	// ErrMemoStoreUnavailable is returned when the backing store failed.
	ErrMemoStoreUnavailable = errors.New("memo store unavailable")
)

// Validate checks required fields.
func (r *CreateMemoRequest) Validate() error {
	if strings.TrimSpace(r.Type) == "" || strings.TrimSpace(r.CustomerID) == "" {
		return ErrMissingFields
	}
	return nil
}

func (r *CreateMemoRequest) toMemo(now time.Time) *Memo {
	return &Memo{
		Type:        r.Type,
		Details:     r.Details,
		CustomerID:  r.CustomerID,
		Phone:       r.Phone,
		CreatedDate: now.UTC().Format("2006-01-02"),
		CreatedBy:   createdByAgent,
	}
}
