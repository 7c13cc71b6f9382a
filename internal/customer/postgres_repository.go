package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// PgxQuerier is the subset of pgxpool.Pool the store needs; it allows the
// store to run against pgxmock in tests.
type PgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore reads customer records from the relational replica of the
// RIMS table.
type PostgresStore struct {
	db PgxQuerier
}

// NewPostgresStore initializes a store backed by pgx.
func NewPostgresStore(db PgxQuerier) *PostgresStore {
	if db == nil {
		panic("customer: pgx querier required")
	}
	return &PostgresStore{db: db}
}

const recordColumns = `
	vac_id, rims_id, first_name, last_name, email,
	phn1, phn2, pkg_code, pkg_code2,
	val_dep, conf_deposit, asgn_trv_dt, confirm_status,
	tm, date_print_enc, agency_book_via, htl_bk_via
`

// FindByPhone matches either phone column. Stored values are kept in
// normalized 10-digit form by the sync job, so a direct equality works.
func (s *PostgresStore) FindByPhone(ctx context.Context, phone string) (*Record, error) {
	normalized := NormalizePhone(phone)
	query := `
		SELECT ` + recordColumns + `
		FROM rims_data
		WHERE phn1 = $1 OR phn2 = $1
		LIMIT 1
	`
	return s.scanOne(s.db.QueryRow(ctx, query, normalized))
}

// FindByCertificate matches the certificate column, uppercased.
func (s *PostgresStore) FindByCertificate(ctx context.Context, code string) (*Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM rims_data
		WHERE upper(pkg_code2) = $1
		LIMIT 1
	`
	return s.scanOne(s.db.QueryRow(ctx, query, strings.ToUpper(strings.TrimSpace(code))))
}

// FindByCustomerAndCertificate matches on both identifiers.
func (s *PostgresStore) FindByCustomerAndCertificate(ctx context.Context, customerID, code string) (*Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM rims_data
		WHERE vac_id = $1 AND pkg_code2 = $2
		LIMIT 1
	`
	return s.scanOne(s.db.QueryRow(ctx, query, customerID, code))
}

func (s *PostgresStore) scanOne(row pgx.Row) (*Record, error) {
	var rec Record
	if err := row.Scan(
		&rec.CustomerID,
		&rec.RIMSID,
		&rec.FirstName,
		&rec.LastName,
		&rec.Email,
		&rec.PrimaryPhone,
		&rec.SecondaryPhone,
		&rec.PackageCode,
		&rec.CertificateCode,
		&rec.ValDeposit,
		&rec.ConfDeposit,
		&rec.TravelDate,
		&rec.ConfirmStatus,
		&rec.TravelRep,
		&rec.DocsSentDate,
		&rec.FlightRef,
		&rec.HotelRef,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &rec, nil
}

var _ Store = (*PostgresStore)(nil)
