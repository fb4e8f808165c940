// internal/booking/records.go
package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Record is one row of the append-only booking audit trail.
type Record struct {
	BookingID       string
	SearchID        string
	PassengerName   string
	PassengerMobile string
	PassengerEmail  string
	CreatedAt       time.Time
}

// RecordStore writes booking records to Postgres.
type RecordStore struct {
	db *sql.DB
}

func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: db}
}

const insertRecordQuery = `
	INSERT INTO booking_records (booking_id, search_id, passenger_name, passenger_mobile, passenger_email, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

// Insert appends one booking record.
func (s *RecordStore) Insert(ctx context.Context, rec *Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, insertRecordQuery,
		rec.BookingID, rec.SearchID, rec.PassengerName, rec.PassengerMobile, rec.PassengerEmail, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert booking record %s: %w", rec.BookingID, err)
	}
	return nil
}
