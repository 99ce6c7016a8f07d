package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/facegate/canteen/internal/database"
	"github.com/pgvector/pgvector-go"
)

// FeatureRepository persists the enrollment gallery as vector(128) rows.
type FeatureRepository struct {
	pool *Pool
}

// NewFeatureRepository creates a new PostgreSQL feature repository.
func NewFeatureRepository(pool *Pool) *FeatureRepository {
	return &FeatureRepository{pool: pool}
}

// ReplaceFeatures atomically replaces the whole features table with the
// given gallery rows. Enrollment rebuilds the gallery from scratch, so a
// full replace keeps the table and the image directory in step.
func (r *FeatureRepository) ReplaceFeatures(ctx context.Context, features []database.StoredFeature) error {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM features"); err != nil {
		return fmt.Errorf("clear features: %w", err)
	}

	for _, f := range features {
		vec := pgvector.NewVector(f.Vector)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO features (label, descriptor, created_at)
			VALUES ($1, $2, $3)
		`, f.Label, vec, time.Now().UTC()); err != nil {
			return fmt.Errorf("insert feature %q: %w", f.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit features: %w", err)
	}
	return nil
}

// LoadFeatures returns label -> descriptor vector for every identity.
func (r *FeatureRepository) LoadFeatures(ctx context.Context) (map[string][]float32, error) {
	rows, err := r.pool.Query(ctx, "SELECT label, descriptor FROM features")
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	defer rows.Close()

	features := make(map[string][]float32)
	for rows.Next() {
		var label string
		var vec pgvector.Vector
		if err := rows.Scan(&label, &vec); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		features[label] = vec.Slice()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate features: %w", err)
	}
	return features, nil
}

// Count returns the number of enrolled identities.
func (r *FeatureRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM features").Scan(&count); err != nil {
		return 0, fmt.Errorf("count features: %w", err)
	}
	return count, nil
}
