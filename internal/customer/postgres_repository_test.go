package customer

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pgRecordColumns = []string{
	"vac_id", "rims_id", "first_name", "last_name", "email",
	"phn1", "phn2", "pkg_code", "pkg_code2",
	"val_dep", "conf_deposit", "asgn_trv_dt", "confirm_status",
	"tm", "date_print_enc", "agency_book_via", "htl_bk_via",
}

func sarahRow() *pgxmock.Rows {
	return pgxmock.NewRows(pgRecordColumns).AddRow(
		"123456", "1001", "Sarah", "Johnson", "sarah.johnson@email.com",
		"8182121359", "3105551234", "BEACH", "BEACH123",
		250.0, 500.0, "2025-06-15", "confirm",
		"John Smith", "2025-05-01", "FLIGHT123", "HOTEL456",
	)
}

func TestPostgresStoreFindByPhone(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT(.|\n)*FROM rims_data").
		WithArgs("8182121359").
		WillReturnRows(sarahRow())

	store := NewPostgresStore(mock)
	rec, err := store.FindByPhone(context.Background(), "(818) 212-1359")
	require.NoError(t, err)
	assert.Equal(t, "Sarah", rec.FirstName)
	assert.Equal(t, 500.0, rec.ConfDeposit)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreFindByCertificateUppercases(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT(.|\n)*FROM rims_data").
		WithArgs("BEACH123").
		WillReturnRows(sarahRow())

	store := NewPostgresStore(mock)
	rec, err := store.FindByCertificate(context.Background(), " beach123 ")
	require.NoError(t, err)
	assert.Equal(t, "BEACH123", rec.CertificateCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT(.|\n)*FROM rims_data").
		WithArgs("0000000000").
		WillReturnRows(pgxmock.NewRows(pgRecordColumns))

	store := NewPostgresStore(mock)
	_, err = store.FindByPhone(context.Background(), "0000000000")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
