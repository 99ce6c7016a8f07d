package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/facegate/canteen/internal/config"
	"github.com/facegate/canteen/internal/database/postgres"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print attendance records for a date",
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("date", "", "Calendar date to report, YYYY-MM-DD (default today)")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	tz, err := time.LoadLocation(cfg.Report.DisplayTimezone)
	if err != nil {
		return fmt.Errorf("loading timezone %s: %w", cfg.Report.DisplayTimezone, err)
	}

	raw := mustGetString(cmd, "date")
	var date time.Time
	if raw == "" {
		date = time.Now().UTC()
	} else {
		date, err = time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
		}
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	records, err := postgres.NewAttendanceRepository(pool).SelectionsByDate(context.Background(), date)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Printf("No canteen data for %s\n", date.Format("2006-01-02"))
		return nil
	}

	fmt.Printf("Attendance for %s (%s):\n", date.Format("2006-01-02"), cfg.Report.DisplayTimezone)
	for _, rec := range records {
		fmt.Printf("  %s  %-20s %s\n", rec.Timestamp.In(tz).Format("2006-01-02 15:04:05"), rec.UserName, rec.Dish)
	}
	fmt.Printf("%d records\n", len(records))
	return nil
}
