package memos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/casablancax/travel-ai-platform/internal/caspio"
	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

// CaspioRepository persists memos to the hosted memos table.
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

// Create inserts a memo row.
func (r *CaspioRepository) Create(ctx context.Context, req *CreateMemoRequest) (*Memo, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	memo := req.toMemo(time.Now())
	memo.ID = uuid.New().String()

	row := map[string]any{
		"memo_type":    memo.Type,
		"details":      memo.Details,
		"vac_id":       memo.CustomerID,
		"phone_number": memo.Phone,
		"created_date": memo.CreatedDate,
		"created_by":   memo.CreatedBy,
	}
	if _, err := r.client.InsertRecord(ctx, r.table, row); err != nil {
		r.logger.Error("caspio memo insert failed", "error", err, "table", r.table)
		return nil, fmt.Errorf("%w: %v", ErrMemoStoreUnavailable, err)
	}
	return memo, nil
}

// ListByCustomer returns all memos for one customer.
func (r *CaspioRepository) ListByCustomer(ctx context.Context, customerID string) ([]*Memo, error) {
	where := fmt.Sprintf("vac_id='%s'", strings.ReplaceAll(customerID, "'", "''"))
	rows, err := r.client.QueryRecords(ctx, r.table, where)
	if err != nil {
		r.logger.Error("caspio memo query failed", "error", err, "table", r.table)
		return nil, fmt.Errorf("%w: %v", ErrMemoStoreUnavailable, err)
	}

	out := make([]*Memo, 0, len(rows))
	for _, row := range rows {
		out = append(out, &Memo{
			ID:          asString(row["PK_ID"]),
			Type:        asString(row["memo_type"]),
			Details:     asString(row["details"]),
			CustomerID:  asString(row["vac_id"]),
			Phone:       asString(row["phone_number"]),
			CreatedDate: asString(row["created_date"]),
			CreatedBy:   asString(row["created_by"]),
		})
	}
	return out, nil
}

// CreateCallMemo inserts a legacy call-history row.
func (r *CaspioRepository) CreateCallMemo(ctx context.Context, memo *CallMemo) error {
	row := map[string]any{
		"rims_id":    memo.RIMSID,
		"rims_memos": memo.Text,
		"tm":         memo.Channel,
		"dt":         memo.Timestamp,
	}
	if _, err := r.client.InsertRecord(ctx, r.table, row); err != nil {
		r.logger.Error("caspio call memo insert failed", "error", err, "table", r.table)
		return fmt.Errorf("%w: %v", ErrMemoStoreUnavailable, err)
	}
	return nil
}

func asString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return fmt.Sprintf("%.0f", val)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

var (
	_ Repository    = (*CaspioRepository)(nil)
	_ HistoryWriter = (*CaspioRepository)(nil)
)
