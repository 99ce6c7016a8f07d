package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/facegate/canteen/internal/database/mock"
)

func TestServer_Routes(t *testing.T) {
	store := mock.NewAttendanceStore()
	at := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
	if _, err := store.InsertSelection(context.Background(), "Alice", "Pancakes - $5", at); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}

	srv := NewServer(store, time.UTC, "127.0.0.1", 0)

	tests := []struct {
		path string
		want int
	}{
		{"/healthz", http.StatusOK},
		{"/api/attendance?date=2024-03-01", http.StatusOK},
		{"/api/attendance.csv?date=2024-03-01", http.StatusOK},
		{"/api/attendance?date=nope", http.StatusBadRequest},
		{"/api/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("GET %s: status %d, want %d", tt.path, rec.Code, tt.want)
		}
	}
}
