package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PgxExecer is the subset of pgxpool.Pool the repository needs.
type PgxExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db PgxExecer
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db PgxExecer) *PostgresRepository {
	if db == nil {
		panic("leads: pgx execer required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a lead row.
func (r *PostgresRepository) Create(ctx context.Context, lead *Lead) error {
	query := `
		INSERT INTO travel_leads (
			lead_id, customer_name, phone, email, destination, travel_dates,
			travelers_count, budget_range, special_occasion, consent_given,
			consent_timestamp, lead_source, lead_status, priority, notes,
			created_date, modified_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.db.Exec(ctx, query,
		lead.LeadID,
		lead.CustomerName,
		lead.Phone,
		lead.Email,
		lead.Destination,
		lead.TravelDates,
		lead.TravelersCount,
		lead.BudgetRange,
		lead.SpecialOccasion,
		lead.ConsentGiven,
		lead.ConsentTimestamp,
		lead.Source,
		lead.Status,
		lead.Priority,
		lead.Notes,
		lead.CreatedDate,
		lead.ModifiedDate,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLeadStoreUnavailable, err)
	}
	return nil
}

// MarkCallbackStarted records the outbound call against the lead row.
func (r *PostgresRepository) MarkCallbackStarted(ctx context.Context, leadID, callID string, at time.Time) error {
	query := `
		UPDATE travel_leads
		SET call_id = $2, last_call_date = $3, lead_status = $4, modified_date = $3
		WHERE lead_id = $1
	`
	_, err := r.db.Exec(ctx, query, leadID, callID, at.UTC().Format(time.RFC3339), StatusCallbackInProgress)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLeadStoreUnavailable, err)
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)
