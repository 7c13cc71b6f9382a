package leads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/casablancax/travel-ai-platform/internal/caspio"
	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

// CaspioRepository persists leads to the hosted leads table.
type CaspioRepository struct {
	client *caspio.Client
	table  string
	logger *logging.Logger
}

// NewCaspioRepository creates a repository backed by the given table.
func NewCaspioRepository(client *caspio.Client, table string, logger *logging.Logger) *CaspioRepository {
	if logger == nil {
		logger = logging.Default()
	}
	return &CaspioRepository{client: client, table: table, logger: logger}
}

// Create inserts a lead row.
func (r *CaspioRepository) Create(ctx context.Context, lead *Lead) error {
	row := map[string]any{
		"LeadID":           lead.LeadID,
		"CustomerName":     lead.CustomerName,
		"Phone":            lead.Phone,
		"Email":            lead.Email,
		"Destination":      lead.Destination,
		"TravelDates":      lead.TravelDates,
		"TravelersCount":   lead.TravelersCount,
		"BudgetRange":      lead.BudgetRange,
		"SpecialOccasion":  lead.SpecialOccasion,
		"ConsentGiven":     lead.ConsentGiven,
		"ConsentTimestamp": lead.ConsentTimestamp,
		"LeadSource":       lead.Source,
		"LeadStatus":       lead.Status,
		"Priority":         lead.Priority,
		"Notes":            lead.Notes,
		"CreatedDate":      lead.CreatedDate,
		"ModifiedDate":     lead.ModifiedDate,
	}
	if _, err := r.client.InsertRecord(ctx, r.table, row); err != nil {
		r.logger.Error("caspio lead insert failed", "error", err, "lead_id", lead.LeadID)
		return fmt.Errorf("%w: %v", ErrLeadStoreUnavailable, err)
	}
	return nil
}

// MarkCallbackStarted records the outbound call against the lead row.
func (r *CaspioRepository) MarkCallbackStarted(ctx context.Context, leadID, callID string, at time.Time) error {
	where := fmt.Sprintf("LeadID='%s'", strings.ReplaceAll(leadID, "'", "''"))
	updates := map[string]any{
		"CallID":       callID,
		"LastCallDate": at.UTC().Format(time.RFC3339),
		"LeadStatus":   StatusCallbackInProgress,
		"ModifiedDate": at.UTC().Format(time.RFC3339),
	}
	if err := r.client.UpdateRecords(ctx, r.table, where, updates); err != nil {
		r.logger.Error("caspio lead update failed", "error", err, "lead_id", leadID)
		return fmt.Errorf("%w: %v", ErrLeadStoreUnavailable, err)
	}
	return nil
}

var _ Repository = (*CaspioRepository)(nil)
