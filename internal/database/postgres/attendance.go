package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/facegate/canteen/internal/database"
)

// AttendanceRepository provides PostgreSQL-backed attendance storage.
// Inserts rely on the engine's own transactional guarantees, so concurrent
// sessions never interleave within a row.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new PostgreSQL attendance repository.
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// InsertSelection appends one attendance record and returns its id.
// A zero instant defaults to the current time; timestamps are normalized
// to UTC before writing.
func (r *AttendanceRepository) InsertSelection(ctx context.Context, userName, dish string, at time.Time) (int64, error) {
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()

	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO selections (user_name, dish, timestamp)
		VALUES ($1, $2, $3)
		RETURNING id
	`, userName, dish, at).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert selection: %w", err)
	}
	return id, nil
}

// SelectionsByDate returns all records whose timestamp falls on the given
// UTC calendar date, ascending by timestamp.
func (r *AttendanceRepository) SelectionsByDate(ctx context.Context, date time.Time) ([]database.AttendanceRecord, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_name, dish, timestamp
		FROM selections
		WHERE timestamp >= $1 AND timestamp < $2
		ORDER BY timestamp ASC
	`, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("query selections: %w", err)
	}
	defer rows.Close()

	var records []database.AttendanceRecord
	for rows.Next() {
		var rec database.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.UserName, &rec.Dish, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		rec.Timestamp = rec.Timestamp.UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate selections: %w", err)
	}
	return records, nil
}

// Count returns the total number of attendance records.
func (r *AttendanceRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM selections").Scan(&count); err != nil {
		return 0, fmt.Errorf("count selections: %w", err)
	}
	return count, nil
}
