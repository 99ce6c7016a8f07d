package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/facegate/canteen/internal/capture"
	"github.com/facegate/canteen/internal/config"
	"github.com/facegate/canteen/internal/database/postgres"
	"github.com/facegate/canteen/internal/menu"
	"github.com/facegate/canteen/internal/recognition"
	"github.com/facegate/canteen/internal/session"
	"github.com/spf13/cobra"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize",
	Short: "Run the recognition loop against the camera",
	Long: `Recognize reads frames from the camera (or a directory of stills),
matches detected faces against the enrolled gallery, offers recognized
people the current menu, and records confirmed selections.

Unknown faces are ignored. Dismissing the menu records nothing.`,
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	recognizeCmd.Flags().String("frames", "", "Read frames from this directory instead of the camera")
	recognizeCmd.Flags().Duration("choice-timeout", 0, "Give up on an unanswered menu after this long (0 = wait forever)")
}

func runRecognize(cmd *cobra.Command, args []string) error {
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

	stored, err := postgres.NewFeatureRepository(pool).LoadFeatures(context.Background())
	if err != nil {
		return fmt.Errorf("loading gallery: %w", err)
	}
	gallery, err := recognition.GalleryFromStored(stored)
	if err != nil {
		return err
	}
	if len(gallery) == 0 {
		fmt.Println("Warning: gallery is empty, every face will be unknown. Run 'canteen enroll' first.")
	}
	recognizer := recognition.NewRecognizer(gallery, cfg.Recognition.Threshold)
	fmt.Printf("Gallery loaded: %d identities, threshold %.2f\n", recognizer.GallerySize(), recognizer.Threshold())

	extractor, err := recognition.NewExtractor(cfg.Recognition.ModelsDir, cfg.Recognition.MaxEdge)
	if err != nil {
		return err
	}
	defer extractor.Close()

	var frames session.FrameSource
	if dir := mustGetString(cmd, "frames"); dir != "" {
		frames, err = capture.NewFileSource(dir)
	} else {
		frames, err = capture.OpenWebcam(cfg.Camera.Device)
	}
	if err != nil {
		return err
	}
	defer frames.Close()

	catalog := menu.NewCatalog(cfg.Menus)
	store := postgres.NewAttendanceRepository(pool)

	s := session.New(extractor, recognizer, catalog, &terminalPrompter{}, store, tz)
	s.ChoiceTimeout = mustGetDuration(cmd, "choice-timeout")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := s.Run(ctx, frames)
	fmt.Printf("Session %s: %d frames, %d faces, %d unknown, %d canceled, %d recorded\n",
		s.ID, stats.Frames, stats.Faces, stats.Unknown, stats.Canceled, stats.Recorded)
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// terminalPrompter is the stdin menu-selection collaborator: it prints the
// offered menu and reads a dish number. Empty input or "q" cancels.
type terminalPrompter struct{}

func (terminalPrompter) Offer(ctx context.Context, identity string, dishes []string) (string, error) {
	fmt.Printf("\nMenu for %s:\n", identity)
	for i, dish := range dishes {
		fmt.Printf("  %d) %s\n", i+1, dish)
	}
	fmt.Print("Select a dish (number, empty to cancel): ")

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		ch <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return "", session.ErrChoiceCanceled
		}
		input := strings.TrimSpace(r.line)
		if input == "" || strings.EqualFold(input, "q") {
			return "", session.ErrChoiceCanceled
		}
		n, err := strconv.Atoi(input)
		if err != nil || n < 1 || n > len(dishes) {
			return "", session.ErrChoiceCanceled
		}
		return dishes[n-1], nil
	}
}
