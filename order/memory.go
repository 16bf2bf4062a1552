package order

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-process Store, used by tests and single-node demos
type MemoryStore struct {
	ShopURLs
	orders map[string]*Order
	mu     sync.RWMutex
	now    func() time.Time
}

// NewMemoryStore creates an empty store
func NewMemoryStore(shopURL string) *MemoryStore {
	return &MemoryStore{
		ShopURLs: ShopURLs{BaseURL: shopURL},
		orders:   make(map[string]*Order),
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, o *Order) error {
	if o == nil || o.ID == "" {
		return fmt.Errorf("order id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.ID]; exists {
		return fmt.Errorf("order %s already exists", o.ID)
	}

	c := o.Clone()
	if c.Status == "" {
		c.Status = StatusPending
	}
	now := s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	s.orders[c.ID] = c
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o.Clone(), nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id string, status Status, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}

	now := s.now()
	o.Status = status
	o.UpdatedAt = now
	if note != "" {
		o.Notes = append(o.Notes, Note{Message: note, CreatedAt: now})
	}
	return nil
}

func (s *MemoryStore) AddNote(ctx context.Context, id, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Notes = append(o.Notes, Note{Message: note, CreatedAt: s.now()})
	return nil
}

func (s *MemoryStore) MarkPaid(ctx context.Context, id, reference string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return false, ErrNotFound
	}
	if o.IsPaid() {
		return false, nil
	}

	now := s.now()
	o.Status = StatusCompleted
	o.Reference = reference
	o.PaidAt = &now
	o.UpdatedAt = now
	return true, nil
}
