package handlers

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/facegate/canteen/internal/database"
)

// displayTimeFormat matches the original report rendering.
const displayTimeFormat = "2006-01-02 15:04:05"

// AttendanceHandler serves the read-only reporting endpoints. Records are
// stored in UTC and converted to the display timezone only here.
type AttendanceHandler struct {
	store database.AttendanceReader
	tz    *time.Location
}

// NewAttendanceHandler creates the reporting handler.
func NewAttendanceHandler(store database.AttendanceReader, tz *time.Location) *AttendanceHandler {
	return &AttendanceHandler{store: store, tz: tz}
}

// attendanceRow is one record as rendered for clients.
type attendanceRow struct {
	UserName  string `json:"user_name"`
	Dish      string `json:"dish"`
	Timestamp string `json:"timestamp"`
}

// parseDateParam validates the sole query parameter. A malformed date is
// rejected before any query runs.
func parseDateParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing required query parameter 'date'")
	}
	date, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return date, nil
}

func (h *AttendanceHandler) rowsForDate(r *http.Request) (time.Time, []attendanceRow, error) {
	date, err := parseDateParam(r)
	if err != nil {
		return time.Time{}, nil, err
	}

	records, err := h.store.SelectionsByDate(r.Context(), date)
	if err != nil {
		return date, nil, fmt.Errorf("querying attendance: %w", err)
	}

	rows := make([]attendanceRow, len(records))
	for i, rec := range records {
		rows[i] = attendanceRow{
			UserName:  rec.UserName,
			Dish:      rec.Dish,
			Timestamp: rec.Timestamp.In(h.tz).Format(displayTimeFormat),
		}
	}
	return date, rows, nil
}

// GetByDate handles GET /api/attendance?date=YYYY-MM-DD.
// An empty result is a normal no-data outcome, not an error.
func (h *AttendanceHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	date, rows, err := h.rowsForDate(r)
	switch {
	case err != nil && date.IsZero():
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("attendance query failed: %v", err)
		respondError(w, http.StatusInternalServerError, "attendance storage unavailable")
		return
	}

	if len(rows) == 0 {
		respondJSON(w, http.StatusOK, map[string]any{
			"date":    date.Format("2006-01-02"),
			"no_data": true,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"date":    date.Format("2006-01-02"),
		"records": rows,
	})
}

// ExportCSV handles GET /api/attendance.csv?date=YYYY-MM-DD and mirrors
// the JSON endpoint's three columns.
func (h *AttendanceHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	date, rows, err := h.rowsForDate(r)
	switch {
	case err != nil && date.IsZero():
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("attendance export failed: %v", err)
		respondError(w, http.StatusInternalServerError, "attendance storage unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.csv"`)

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"User Name", "Dish", "Timestamp"})
	for _, row := range rows {
		writer.Write([]string{row.UserName, row.Dish, row.Timestamp})
	}
}
