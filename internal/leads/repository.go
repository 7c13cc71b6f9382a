package leads

import (
	"context"
	"sync"
	"time"
)

// Repository defines the interface for lead storage.
type Repository interface {
	Create(ctx context.Context, lead *Lead) error
	MarkCallbackStarted(ctx context.Context, leadID, callID string, at time.Time) error
}

// InMemoryRepository is an in-memory Repository used in mock mode and tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{leads: make(map[string]*Lead)}
}

// Create stores a lead.
func (r *InMemoryRepository) Create(ctx context.Context, lead *Lead) error {
	copied := *lead
	r.mu.Lock()
	r.leads[lead.LeadID] = &copied
	r.mu.Unlock()
	return nil
}

// MarkCallbackStarted records the outbound call against the lead.
func (r *InMemoryRepository) MarkCallbackStarted(ctx context.Context, leadID, callID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead, ok := r.leads[leadID]
	if !ok {
		return ErrLeadStoreUnavailable
	}
	lead.CallID = callID
	lead.LastCallDate = at.UTC().Format(time.RFC3339)
	lead.Status = StatusCallbackInProgress
	lead.ModifiedDate = at.UTC().Format(time.RFC3339)
	return nil
}

// Get returns a copy of a stored lead.
func (r *InMemoryRepository) Get(leadID string) (*Lead, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lead, ok := r.leads[leadID]
	if !ok {
		return nil, false
	}
	copied := *lead
	return &copied, true
}

var _ Repository = (*InMemoryRepository)(nil)
