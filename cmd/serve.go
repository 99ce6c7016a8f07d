package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/facegate/canteen/internal/config"
	"github.com/facegate/canteen/internal/database/postgres"
	"github.com/facegate/canteen/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance reporting server",
	Long: `Start the read-only reporting server. It answers date queries over
the attendance log as JSON and CSV; timestamps are converted from UTC to
the configured display timezone.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	tz, err := time.LoadLocation(cfg.Report.DisplayTimezone)
	if err != nil {
		return fmt.Errorf("loading timezone %s: %w", cfg.Report.DisplayTimezone, err)
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := postgres.NewAttendanceRepository(pool)
	server := web.NewServer(store, tz, mustGetString(cmd, "host"), mustGetInt(cmd, "port"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
