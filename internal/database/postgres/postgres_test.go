//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/facegate/canteen/internal/config"
	"github.com/facegate/canteen/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())
	cfg := &config.DatabaseConfig{URL: dbURL, MaxOpenConns: 5, MaxIdleConns: 2}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}
	return pool, cleanup
}

func TestMigrate_Idempotent(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	defer cleanup()

	// Second run must be a no-op, not an error.
	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}

func TestAttendance_InsertAndQueryByDate(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewAttendanceRepository(pool)

	at := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
	id, err := repo.InsertSelection(ctx, "Alice", "Pancakes - $5", at)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if id == 0 {
		t.Error("expected a server-assigned id")
	}

	records, err := repo.SelectionsByDate(ctx, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.UserName != "Alice" || rec.Dish != "Pancakes - $5" {
		t.Errorf("round-trip mismatch: %+v", rec)
	}
	if !rec.Timestamp.Equal(at) {
		t.Errorf("timestamp %v, want %v", rec.Timestamp, at)
	}
}

func TestAttendance_QueryEmptyDateIsNoData(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	defer cleanup()

	repo := NewAttendanceRepository(pool)
	records, err := repo.SelectionsByDate(context.Background(), time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("empty date must not error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestAttendance_SortedAscendingByTimestamp(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewAttendanceRepository(pool)

	day := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	for _, hour := range []int{15, 8, 12} {
		if _, err := repo.InsertSelection(ctx, "Bob", "Pizza - $8", day.Add(time.Duration(hour)*time.Hour)); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	records, err := repo.SelectionsByDate(ctx, day)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Before(records[i-1].Timestamp) {
			t.Errorf("records not sorted ascending: %v before %v", records[i].Timestamp, records[i-1].Timestamp)
		}
	}
}

func TestFeatures_ReplaceAndLoadRoundTrip(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewFeatureRepository(pool)

	vec := make([]float32, 128)
	for i := range vec {
		vec[i] = float32(i) * 0.01
	}

	features := []database.StoredFeature{
		{Label: "Alice", Vector: vec},
		{Label: "Bob", Vector: make([]float32, 128)},
	}
	if err := repo.ReplaceFeatures(ctx, features); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	loaded, err := repo.LoadFeatures(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 identities, got %d", len(loaded))
	}
	for i, v := range loaded["Alice"] {
		if v != vec[i] {
			t.Fatalf("vector element %d = %f, want %f", i, v, vec[i])
		}
	}

	// Replace must fully supersede the previous gallery.
	if err := repo.ReplaceFeatures(ctx, features[:1]); err != nil {
		t.Fatalf("second replace failed: %v", err)
	}
	loaded, err = repo.LoadFeatures(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Errorf("expected 1 identity after replace, got %d", len(loaded))
	}
}
