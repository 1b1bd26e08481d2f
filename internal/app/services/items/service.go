package items

import (
	"context"
	"errors"
	"fmt"

	"github.com/R3E-Network/item_service/internal/app/domain/item"
	"github.com/R3E-Network/item_service/internal/app/storage"
	"github.com/R3E-Network/item_service/pkg/logger"
)

const (
	// DefaultPageSize applies when no limit is requested.
	DefaultPageSize = 50
	// MaxPageSize caps any requested limit.
	MaxPageSize = 100
)

// ErrClearIncomplete is returned when rows survive a clear.
var ErrClearIncomplete = errors.New("items not deleted")

// Stats summarises the stored items.
type Stats struct {
	Count    int64
	AvgPrice float64
}

// Page is one page of items in insertion order.
type Page struct {
	Page  int
	Limit int
	Total int64
	Items []item.Item
}

// Service validates and persists items and computes aggregates.
type Service struct {
	store storage.ItemStore
	log   *logger.Logger
}

// New constructs an items service.
func New(store storage.ItemStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("items")
	}
	return &Service{store: store, log: log}
}

// Add validates in and stores the normalized item. Validation failures are
// returned as *item.ValidationError before the store is touched.
func (s *Service) Add(ctx context.Context, in item.Input) (item.Item, error) {
	it, err := item.Validate(in)
	if err != nil {
		return item.Item{}, err
	}

	stored, err := s.store.CreateItem(ctx, it)
	if err != nil {
		return item.Item{}, err
	}
	s.log.WithField("item_id", stored.ID).Debug("item created")
	return stored, nil
}

// Stats returns the item count and the average price rounded to two
// decimals, or zero when nothing is stored.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	sum, err := s.store.SummarizeItems(ctx)
	if err != nil {
		return Stats{}, err
	}
	if sum.Count == 0 {
		return Stats{}, nil
	}
	return Stats{Count: sum.Count, AvgPrice: item.RoundPrice(sum.AvgPrice)}, nil
}

// List returns the 1-indexed page. Non-positive arguments fall back to
// defaults and limit is capped at MaxPageSize.
func (s *Service) List(ctx context.Context, page, limit int) (Page, error) {
	page, limit = NormalizePage(page, limit)

	rows, total, err := s.store.ListItems(ctx, (page-1)*limit, limit)
	if err != nil {
		return Page{}, err
	}
	if rows == nil {
		rows = []item.Item{}
	}
	return Page{Page: page, Limit: limit, Total: total, Items: rows}, nil
}

// Clear deletes every item and verifies the table is empty afterwards.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.ClearItems(ctx); err != nil {
		return err
	}

	remaining, err := s.store.CountItems(ctx)
	if err != nil {
		return err
	}
	if remaining > 0 {
		s.log.WithField("remaining", remaining).Warn("items survived clear")
		return fmt.Errorf("%w: %d remaining", ErrClearIncomplete, remaining)
	}
	s.log.Info("items cleared")
	return nil
}

// NormalizePage applies pagination defaults and the limit cap.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}
