package payments

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/casablancax/travel-ai-platform/internal/caspio"
)

// CaspioRecorder writes payment-link outcomes to the hosted leads table.
type CaspioRecorder struct {
	client *caspio.Client
	table  string
}

// NewCaspioRecorder creates a recorder for the given leads table.
func NewCaspioRecorder(client *caspio.Client, table string) *CaspioRecorder {
	return &CaspioRecorder{client: client, table: table}
}

func leadWhere(leadID string) string {
	return fmt.Sprintf("LeadID='%s'", strings.ReplaceAll(leadID, "'", "''"))
}

// RecordLinkSent marks the lead's payment link as delivered.
func (r *CaspioRecorder) RecordLinkSent(ctx context.Context, leadID, paymentURL, messageSID string, at time.Time) error {
	return r.client.UpdateRecords(ctx, r.table, leadWhere(leadID), map[string]any{
		"PaymentLinkStatus":   LinkStatusSent,
		"PaymentLinkURL":      paymentURL,
		"PaymentLinkSentDate": at.UTC().Format(time.RFC3339),
		"SMSMessageSID":       messageSID,
		"LeadStatus":          StatusPaymentLinkSent,
	})
}

// RecordLinkFailed marks the lead's payment link as undeliverable.
func (r *CaspioRecorder) RecordLinkFailed(ctx context.Context, leadID, reason string, at time.Time) error {
	return r.client.UpdateRecords(ctx, r.table, leadWhere(leadID), map[string]any{
		"PaymentLinkStatus":   LinkStatusFailed,
		"PaymentLinkError":    reason,
		"PaymentLinkSentDate": at.UTC().Format(time.RFC3339),
	})
}

var _ Recorder = (*CaspioRecorder)(nil)

// PostgresRecorder writes payment-link outcomes to the relational leads
// table.
type PostgresRecorder struct {
	db interface {
		Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	}
}

// NewPostgresRecorder initializes a recorder backed by pgx.
func NewPostgresRecorder(db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// RecordLinkSent marks the lead's payment link as delivered.
func (r *PostgresRecorder) RecordLinkSent(ctx context.Context, leadID, paymentURL, messageSID string, at time.Time) error {
	query := `
		UPDATE travel_leads
		SET payment_link_status = $2, payment_link_url = $3, payment_link_sent_date = $4,
		    sms_message_sid = $5, lead_status = $6
		WHERE lead_id = $1
	`
	_, err := r.db.Exec(ctx, query, leadID, LinkStatusSent, paymentURL, at.UTC(), messageSID, StatusPaymentLinkSent)
	return err
}

// RecordLinkFailed marks the lead's payment link as undeliverable.
func (r *PostgresRecorder) RecordLinkFailed(ctx context.Context, leadID, reason string, at time.Time) error {
	query := `
		UPDATE travel_leads
		SET payment_link_status = $2, payment_link_error = $3, payment_link_sent_date = $4
		WHERE lead_id = $1
	`
	_, err := r.db.Exec(ctx, query, leadID, LinkStatusFailed, reason, at.UTC())
	return err
}

var _ Recorder = (*PostgresRecorder)(nil)

// InMemoryRecorder keeps outcomes in memory for mock mode and tests.
type InMemoryRecorder struct {
	mu      sync.Mutex
	Sent    map[string]string // lead id -> message sid
	Failed  map[string]string // lead id -> reason
	LinkFor map[string]string // lead id -> payment url
}

// NewInMemoryRecorder creates an empty recorder.
func NewInMemoryRecorder() *InMemoryRecorder {
	return &InMemoryRecorder{
		Sent:    make(map[string]string),
		Failed:  make(map[string]string),
		LinkFor: make(map[string]string),
	}
}

// RecordLinkSent stores the delivered link.
func (r *InMemoryRecorder) RecordLinkSent(ctx context.Context, leadID, paymentURL, messageSID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent[leadID] = messageSID
	r.LinkFor[leadID] = paymentURL
	return nil
}

// RecordLinkFailed stores the failure reason.
func (r *InMemoryRecorder) RecordLinkFailed(ctx context.Context, leadID, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failed[leadID] = reason
	return nil
}

var _ Recorder = (*InMemoryRecorder)(nil)
