package memos

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for memo storage.
type Repository interface {
	Create(ctx context.Context, req *CreateMemoRequest) (*Memo, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*Memo, error)
}

// InMemoryRepository is an in-memory Repository used in mock mode and tests.
type InMemoryRepository struct {
	mu        sync.RWMutex
	memos     []*Memo
	callMemos []*CallMemo
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Create stores a new memo in memory.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateMemoRequest) (*Memo, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	memo := req.toMemo(time.Now())
	memo.ID = uuid.New().String()

	r.mu.Lock()
	r.memos = append(r.memos, memo)
	r.mu.Unlock()

	return memo, nil
}

// ListByCustomer returns all memos for one customer.
func (r *InMemoryRepository) ListByCustomer(ctx context.Context, customerID string) ([]*Memo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Memo
	for _, memo := range r.memos {
		if memo.CustomerID == customerID {
			copied := *memo
			out = append(out, &copied)
		}
	}
	return out, nil
}

// CreateCallMemo stores a legacy call-history memo in memory.
func (r *InMemoryRepository) CreateCallMemo(ctx context.Context, memo *CallMemo) error {
	copied := *memo
	r.mu.Lock()
	r.callMemos = append(r.callMemos, &copied)
	r.mu.Unlock()
	return nil
}

// CallMemos returns a snapshot of the stored call-history memos.
func (r *InMemoryRepository) CallMemos() []*CallMemo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*CallMemo, 0, len(r.callMemos))
	for _, memo := range r.callMemos {
		copied := *memo
		out = append(out, &copied)
	}
	return out
}

var (
	_ Repository    = (*InMemoryRepository)(nil)
	_ HistoryWriter = (*InMemoryRepository)(nil)
)
