package memory

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/R3E-Network/item_service/internal/app/domain/item"
	"github.com/R3E-Network/item_service/internal/app/storage"
)

// Store is an in-memory ItemStore. It is safe for concurrent use and is
// intended for tests and local development. It enforces the same row
// constraints as the SQL schema.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	items  []item.Item
	now    func() time.Time
}

var _ storage.ItemStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID: 1,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) CreateItem(_ context.Context, it item.Item) (item.Item, error) {
	if err := checkRow(it); err != nil {
		return item.Item{}, storage.Constraint("create item", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it.ID = s.nextID
	s.nextID++
	it.Price = item.RoundPrice(it.Price)
	it.CreatedAt = s.now()
	if n := len(s.items); n > 0 && it.CreatedAt.Before(s.items[n-1].CreatedAt) {
		it.CreatedAt = s.items[n-1].CreatedAt
	}

	s.items = append(s.items, it)
	return it, nil
}

func (s *Store) CountItems(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

func (s *Store) SummarizeItems(_ context.Context) (storage.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return storage.Summary{Count: int64(len(s.items)), AvgPrice: s.meanLocked()}, nil
}

func (s *Store) AveragePrice(_ context.Context) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.items) == 0 {
		return 0, false, nil
	}
	return s.meanLocked(), true, nil
}

func (s *Store) meanLocked() float64 {
	if len(s.items) == 0 {
		return 0
	}
	var sum float64
	for _, it := range s.items {
		sum += it.Price
	}
	return sum / float64(len(s.items))
}

func (s *Store) ListItems(_ context.Context, offset, limit int) ([]item.Item, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := int64(len(s.items))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || offset >= len(s.items) {
		return []item.Item{}, total, nil
	}

	end := offset + limit
	if end > len(s.items) {
		end = len(s.items)
	}
	page := make([]item.Item, end-offset)
	copy(page, s.items[offset:end])
	return page, total, nil
}

// ClearItems drops every row. The id counter keeps running so ids are never
// reused.
func (s *Store) ClearItems(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return nil
}

func checkRow(it item.Item) error {
	if n := utf8.RuneCountInString(it.Name); n < 1 || n > item.MaxNameLength {
		return fmt.Errorf("name length %d outside [1,%d]", n, item.MaxNameLength)
	}
	if p := item.RoundPrice(it.Price); p <= 0 || p > item.MaxPrice {
		return fmt.Errorf("price %.2f outside (0,%d]", p, item.MaxPrice)
	}
	return nil
}
