package item

import "time"

const (
	// MaxNameLength is the longest accepted name, in characters.
	MaxNameLength = 128
	// MaxPrice is the highest accepted price before rounding.
	MaxPrice = 10_000_000
)

// TimestampLayout renders created_at in responses.
const TimestampLayout = "2006-01-02T15:04:05Z"

// Item is a persisted priced record.
type Item struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Price     float64   `db:"price"`
	CreatedAt time.Time `db:"created_at"`
}

// Input is the raw add payload. Nil fields were absent from the request.
type Input struct {
	Name  *string
	Price *float64
}

// FormatTimestamp renders t as UTC YYYY-MM-DDTHH:MM:SSZ.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
