package storage

import (
	"context"

	"github.com/R3E-Network/item_service/internal/app/domain/item"
)

// ItemStore persists items. Implementations assign ID and CreatedAt and must
// be safe for concurrent use.
type ItemStore interface {
	// CreateItem inserts one item in its own transaction and returns the
	// stored row.
	CreateItem(ctx context.Context, it item.Item) (item.Item, error)
	// CountItems returns the total number of rows.
	CountItems(ctx context.Context) (int64, error)
	// SummarizeItems returns the row count and mean price read by a single
	// statement, so both describe the same table state.
	SummarizeItems(ctx context.Context) (Summary, error)
	// AveragePrice returns the mean stored price. ok is false when no rows
	// exist.
	AveragePrice(ctx context.Context) (avg float64, ok bool, err error)
	// ListItems returns up to limit rows starting at offset ordered by
	// ascending ID, together with the total row count.
	ListItems(ctx context.Context, offset, limit int) ([]item.Item, int64, error)
	// ClearItems deletes every row. Calling it on an empty store is a no-op.
	ClearItems(ctx context.Context) error
}

// Summary is the item count and mean price. AvgPrice is zero when Count is
// zero.
type Summary struct {
	Count    int64
	AvgPrice float64
}
