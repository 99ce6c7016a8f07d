// Package mock provides in-memory implementations of the database
// interfaces for testing.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/facegate/canteen/internal/database"
)

// AttendanceStore is an in-memory attendance repository.
type AttendanceStore struct {
	mu      sync.RWMutex
	records []database.AttendanceRecord
	nextID  int64

	// Error injection
	InsertError error
	QueryError  error
}

// NewAttendanceStore creates an empty in-memory attendance store.
func NewAttendanceStore() *AttendanceStore {
	return &AttendanceStore{nextID: 1}
}

// InsertSelection appends one record. A zero instant defaults to now.
func (s *AttendanceStore) InsertSelection(ctx context.Context, userName, dish string, at time.Time) (int64, error) {
	if s.InsertError != nil {
		return 0, s.InsertError
	}
	if at.IsZero() {
		at = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.records = append(s.records, database.AttendanceRecord{
		ID:        id,
		UserName:  userName,
		Dish:      dish,
		Timestamp: at.UTC(),
	})
	return id, nil
}

// SelectionsByDate returns records on the given UTC calendar date,
// ascending by timestamp.
func (s *AttendanceStore) SelectionsByDate(ctx context.Context, date time.Time) ([]database.AttendanceRecord, error) {
	if s.QueryError != nil {
		return nil, s.QueryError
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	y, m, d := date.UTC().Date()
	var out []database.AttendanceRecord
	for _, rec := range s.records {
		ry, rm, rd := rec.Timestamp.UTC().Date()
		if ry == y && rm == m && rd == d {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// Records returns a copy of everything stored, in insertion order.
func (s *AttendanceStore) Records() []database.AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]database.AttendanceRecord, len(s.records))
	copy(out, s.records)
	return out
}

// FeatureStore is an in-memory gallery feature repository.
type FeatureStore struct {
	mu       sync.RWMutex
	features map[string][]float32

	ReplaceError error
	LoadError    error
}

// NewFeatureStore creates an empty in-memory feature store.
func NewFeatureStore() *FeatureStore {
	return &FeatureStore{features: make(map[string][]float32)}
}

// ReplaceFeatures replaces all stored features.
func (s *FeatureStore) ReplaceFeatures(ctx context.Context, features []database.StoredFeature) error {
	if s.ReplaceError != nil {
		return s.ReplaceError
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.features = make(map[string][]float32, len(features))
	for _, f := range features {
		vec := make([]float32, len(f.Vector))
		copy(vec, f.Vector)
		s.features[f.Label] = vec
	}
	return nil
}

// LoadFeatures returns a copy of the stored label -> vector map.
func (s *FeatureStore) LoadFeatures(ctx context.Context) (map[string][]float32, error) {
	if s.LoadError != nil {
		return nil, s.LoadError
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]float32, len(s.features))
	for label, vec := range s.features {
		c := make([]float32, len(vec))
		copy(c, vec)
		out[label] = c
	}
	return out, nil
}
