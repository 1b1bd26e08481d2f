package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/R3E-Network/item_service/internal/app/domain/item"
	"github.com/R3E-Network/item_service/internal/app/storage"
)

// Store implements storage.ItemStore backed by PostgreSQL.
type Store struct {
	db *sqlx.DB
}

var _ storage.ItemStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateItem(ctx context.Context, it item.Item) (item.Item, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return item.Item{}, classify("create item", err)
	}
	defer tx.Rollback()

	var stored item.Item
	err = tx.GetContext(ctx, &stored, `
		INSERT INTO items (name, price)
		VALUES ($1, $2)
		RETURNING id, name, price, created_at
	`, it.Name, it.Price)
	if err != nil {
		return item.Item{}, classify("create item", err)
	}
	if err := tx.Commit(); err != nil {
		return item.Item{}, classify("create item", err)
	}

	stored.CreatedAt = stored.CreatedAt.UTC()
	return stored, nil
}

func (s *Store) CountItems(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM items`); err != nil {
		return 0, classify("count items", err)
	}
	return count, nil
}

// SummarizeItems reads count and mean in one statement.
func (s *Store) SummarizeItems(ctx context.Context) (storage.Summary, error) {
	var (
		count int64
		avg   sql.NullFloat64
	)
	row := s.db.QueryRowxContext(ctx, `SELECT COUNT(*), AVG(price)::float8 FROM items`)
	if err := row.Scan(&count, &avg); err != nil {
		return storage.Summary{}, classify("summarize items", err)
	}
	return storage.Summary{Count: count, AvgPrice: avg.Float64}, nil
}

func (s *Store) AveragePrice(ctx context.Context) (float64, bool, error) {
	var avg sql.NullFloat64
	if err := s.db.GetContext(ctx, &avg, `SELECT AVG(price)::float8 FROM items`); err != nil {
		return 0, false, classify("average price", err)
	}
	return avg.Float64, avg.Valid, nil
}

// ListItems reads the page and the total inside one read-only transaction so
// both come from the same snapshot.
func (s *Store) ListItems(ctx context.Context, offset, limit int) ([]item.Item, int64, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, classify("list items", err)
	}
	defer tx.Rollback()

	var total int64
	if err := tx.GetContext(ctx, &total, `SELECT COUNT(*) FROM items`); err != nil {
		return nil, 0, classify("list items", err)
	}

	rows := make([]item.Item, 0, limit)
	if err := tx.SelectContext(ctx, &rows, `
		SELECT id, name, price, created_at
		FROM items
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, limit, offset); err != nil {
		return nil, 0, classify("list items", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, classify("list items", err)
	}

	for i := range rows {
		rows[i].CreatedAt = rows[i].CreatedAt.UTC()
	}
	return rows, total, nil
}

func (s *Store) ClearItems(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return classify("clear items", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return classify("clear items", err)
	}
	if err := tx.Commit(); err != nil {
		return classify("clear items", err)
	}
	return nil
}

// classify maps driver failures onto the storage error taxonomy.
func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == "23":
			return storage.Constraint(op, err)
		case pqErr.Code.Class() == "08",
			pqErr.Code == "57P01", pqErr.Code == "57P02", pqErr.Code == "57P03":
			return storage.Unavailable(op, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var netErr net.Error
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return storage.Unavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
