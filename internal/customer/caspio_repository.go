package customer

import (
	"context"
	"fmt"
	"strings"

	"github.com/casablancax/travel-ai-platform/internal/caspio"
	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

// CaspioStore reads customer records from a hosted Caspio table.
type CaspioStore struct {
	client *caspio.Client
	table  string
	logger *logging.Logger
}

// NewCaspioStore creates a store backed by the given Caspio table.
func NewCaspioStore(client *caspio.Client, table string, logger *logging.Logger) *CaspioStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &CaspioStore{client: client, table: table, logger: logger}
}

// FindByPhone matches either phone column against the normalized digits.
func (s *CaspioStore) FindByPhone(ctx context.Context, phone string) (*Record, error) {
	normalized := NormalizePhone(phone)
	where := fmt.Sprintf("phn1='%s' OR phn2='%s'", normalized, normalized)
	return s.queryOne(ctx, where)
}

// FindByCertificate matches the certificate column, uppercased.
func (s *CaspioStore) FindByCertificate(ctx context.Context, code string) (*Record, error) {
	where := fmt.Sprintf("pkg_code2='%s'", escapeLiteral(strings.ToUpper(strings.TrimSpace(code))))
	return s.queryOne(ctx, where)
}

// FindByCustomerAndCertificate matches on both identifiers, used when
// correlating call history back to a customer row.
func (s *CaspioStore) FindByCustomerAndCertificate(ctx context.Context, customerID, code string) (*Record, error) {
	where := fmt.Sprintf("vac_id='%s' AND pkg_code2='%s'", escapeLiteral(customerID), escapeLiteral(code))
	return s.queryOne(ctx, where)
}

func (s *CaspioStore) queryOne(ctx context.Context, where string) (*Record, error) {
	rows, err := s.client.QueryRecords(ctx, s.table, where)
	if err != nil {
		s.logger.Error("caspio customer query failed", "error", err, "table", s.table)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return FromRow(rows[0]), nil
}

func escapeLiteral(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

var _ Store = (*CaspioStore)(nil)
