package database

import (
	"context"
	"time"
)

// AttendanceWriter appends dish selections. Implementations must make each
// insert atomic: a concurrent reader never observes a partially written row.
type AttendanceWriter interface {
	// InsertSelection appends one record and returns its assigned id.
	// A zero instant means "now".
	InsertSelection(ctx context.Context, userName, dish string, at time.Time) (int64, error)
}

// AttendanceReader reads back persisted selections.
type AttendanceReader interface {
	// SelectionsByDate returns all records whose timestamp falls on the
	// given UTC calendar date, sorted ascending by timestamp. An empty
	// result is a normal no-data outcome, not an error.
	SelectionsByDate(ctx context.Context, date time.Time) ([]AttendanceRecord, error)
}

// FeatureWriter persists the enrollment gallery.
type FeatureWriter interface {
	// ReplaceFeatures atomically replaces the whole features table with
	// the given gallery rows.
	ReplaceFeatures(ctx context.Context, features []StoredFeature) error
}

// FeatureReader loads the enrollment gallery at startup.
type FeatureReader interface {
	// LoadFeatures returns label -> descriptor vector for every identity.
	LoadFeatures(ctx context.Context) (map[string][]float32, error)
}
