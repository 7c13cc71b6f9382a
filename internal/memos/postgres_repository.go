package memos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxQuerier is the subset of pgxpool.Pool the repository needs.
type PgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores memos in the relational database.
type PostgresRepository struct {
	db PgxQuerier
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db PgxQuerier) *PostgresRepository {
	if db == nil {
		panic("memos: pgx querier required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateMemoRequest) (*Memo, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	memo := req.toMemo(time.Now())
	memo.ID = uuid.New().String()

	query := `
		INSERT INTO rims_memos (id, memo_type, details, vac_id, phone_number, created_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	row := r.db.QueryRow(ctx, query+" RETURNING id",
		memo.ID,
		memo.Type,
		memo.Details,
		memo.CustomerID,
		memo.Phone,
		memo.CreatedDate,
		memo.CreatedBy,
	)
	if err := row.Scan(&memo.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMemoStoreUnavailable, err)
	}
	return memo, nil
}

// ListByCustomer returns all memos for one customer, newest first.
func (r *PostgresRepository) ListByCustomer(ctx context.Context, customerID string) ([]*Memo, error) {
	query := `
		SELECT id, memo_type, details, vac_id, phone_number, created_date, created_by
		FROM rims_memos
		WHERE vac_id = $1
		ORDER BY created_date DESC
	`
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMemoStoreUnavailable, err)
	}
	defer rows.Close()

	var out []*Memo
	for rows.Next() {
		var memo Memo
		if err := rows.Scan(
			&memo.ID,
			&memo.Type,
			&memo.Details,
			&memo.CustomerID,
			&memo.Phone,
			&memo.CreatedDate,
			&memo.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMemoStoreUnavailable, err)
		}
		out = append(out, &memo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMemoStoreUnavailable, err)
	}
	return out, nil
}

// CreateCallMemo inserts a legacy call-history row.
func (r *PostgresRepository) CreateCallMemo(ctx context.Context, memo *CallMemo) error {
	query := `
		INSERT INTO rims_call_memos (rims_id, memo_text, channel, recorded_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.Exec(ctx, query, memo.RIMSID, memo.Text, memo.Channel, memo.Timestamp); err != nil {
		return fmt.Errorf("%w: %v", ErrMemoStoreUnavailable, err)
	}
	return nil
}

var (
	_ Repository    = (*PostgresRepository)(nil)
	_ HistoryWriter = (*PostgresRepository)(nil)
)
