package customer

import (
	"context"
	"strings"
	"sync"
)

// Store is the narrow lookup contract the status engine depends on.
// Implementations must treat phone equality in normalized-digit form.
type Store interface {
	FindByPhone(ctx context.Context, phone string) (*Record, error)
	FindByCertificate(ctx context.Context, code string) (*Record, error)
	FindByCustomerAndCertificate(ctx context.Context, customerID, code string) (*Record, error)
}

// InMemoryStore serves records from memory. It backs the mock-data mode
// used for agent testing and the unit tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []*Record
}

// NewInMemoryStore creates a store pre-loaded with the given records.
func NewInMemoryStore(records ...*Record) *InMemoryStore {
	return &InMemoryStore{records: records}
}

// NewMockStore returns a store loaded with the standard test customers.
func NewMockStore() *InMemoryStore {
	return NewInMemoryStore(MockRecords()...)
}

// Add appends a record.
func (s *InMemoryStore) Add(rec *Record) {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
}

// FindByPhone matches either phone field after normalization.
func (s *InMemoryStore) FindByPhone(ctx context.Context, phone string) (*Record, error) {
	normalized := NormalizePhone(phone)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if NormalizePhone(rec.PrimaryPhone) == normalized || NormalizePhone(rec.SecondaryPhone) == normalized {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

// FindByCertificate matches the certificate code case-insensitively.
func (s *InMemoryStore) FindByCertificate(ctx context.Context, code string) (*Record, error) {
	upper := strings.ToUpper(strings.TrimSpace(code))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if strings.ToUpper(rec.CertificateCode) == upper || rec.CustomerID == code {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

// FindByCustomerAndCertificate matches on both identifiers.
func (s *InMemoryStore) FindByCustomerAndCertificate(ctx context.Context, customerID, code string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.CustomerID == customerID && rec.CertificateCode == code {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

// MockRecords returns the seed customers used in mock mode.
func MockRecords() []*Record {
	return []*Record{
		{
			CustomerID:      "123456",
			RIMSID:          "1001",
			FirstName:       "Sarah",
			LastName:        "Johnson",
			Email:           "sarah.johnson@email.com",
			PrimaryPhone:    "8182121359",
			SecondaryPhone:  "3105551234",
			PackageCode:     "BEACH",
			CertificateCode: "BEACH123",
			ValDeposit:      250.00,
			ConfDeposit:     500.00,
			TravelDate:      "2025-06-15",
			ConfirmStatus:   "confirm",
			TravelRep:       "John Smith",
			DocsSentDate:    "2025-05-01",
			FlightRef:       "FLIGHT123",
			HotelRef:        "HOTEL456",
		},
		{
			CustomerID:      "234567",
			RIMSID:          "1002",
			FirstName:       "Mike",
			LastName:        "Chen",
			Email:           "mike.chen@email.com",
			PrimaryPhone:    "3105559876",
			PackageCode:     "E",
			CertificateCode: "E789",
			ValDeposit:      250.00,
			ConfDeposit:     250.00,
			TravelDate:      "2025-01-26",
			ConfirmStatus:   "confirm",
		},
		{
			CustomerID:      "345678",
			RIMSID:          "1003",
			FirstName:       "Lisa",
			LastName:        "Martinez",
			Email:           "lisa.martinez@email.com",
			PrimaryPhone:    "4155551212",
			PackageCode:     "SKI",
			CertificateCode: "SKI555",
			TravelDate:      "2025-08-15",
			ConfirmStatus:   "confirm",
		},
	}
}

var _ Store = (*InMemoryStore)(nil)
