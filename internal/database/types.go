// Package database defines the stored record types and repository
// interfaces shared by the PostgreSQL backend and the in-memory mock.
package database

import (
	"time"
)

// AttendanceRecord is one persisted dish selection. Records are append-only
// and immutable; timestamps are stored in UTC and converted to a display
// timezone only at read time.
type AttendanceRecord struct {
	ID        int64
	UserName  string
	Dish      string
	Timestamp time.Time
}

// StoredFeature is one gallery identity's reference descriptor as persisted
// in the features table.
type StoredFeature struct {
	Label     string
	Vector    []float32
	CreatedAt time.Time
}
