// Package session orchestrates the per-frame recognition loop: detect
// faces, match them against the gallery, offer a menu to the selection
// collaborator, and record confirmed choices.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/facegate/canteen/internal/database"
	"github.com/facegate/canteen/internal/menu"
	"github.com/facegate/canteen/internal/recognition"
	"github.com/google/uuid"
)

// FrameSource yields raw image frames. Next returns io.EOF when the
// source is exhausted (camera closed, directory fully read).
type FrameSource interface {
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

// ErrChoiceCanceled is returned by a MenuPrompter when the person dismisses
// the menu without confirming. Nothing is recorded and scanning resumes.
var ErrChoiceCanceled = errors.New("menu choice canceled")

// MenuPrompter is the external selection collaborator: it surfaces the
// offered menu to a recognized person and returns the confirmed dish, or
// ErrChoiceCanceled. Implementations block until a decision or ctx ends.
type MenuPrompter interface {
	Offer(ctx context.Context, identity string, dishes []string) (string, error)
}

// FaceExtractor detects faces in a frame. *recognition.Extractor satisfies it.
type FaceExtractor interface {
	ExtractAll(data []byte) ([]recognition.Face, error)
}

// Matcher resolves a probe descriptor to a gallery identity.
// *recognition.Recognizer satisfies it.
type Matcher interface {
	Match(probe recognition.Descriptor) (recognition.Match, bool)
}

// Stats counts what a session did, for logging and tests.
type Stats struct {
	Frames   int
	Faces    int
	Unknown  int
	Canceled int
	Recorded int
}

// Session runs the recognition loop. Frames are processed sequentially,
// one at a time; store writes happen from this single loop and are
// therefore serialized within a session.
type Session struct {
	ID        uuid.UUID
	extractor FaceExtractor
	matcher   Matcher
	catalog   *menu.Catalog
	prompter  MenuPrompter
	store     database.AttendanceWriter
	tz        *time.Location

	// ChoiceTimeout bounds the await-choice suspension. Zero means no
	// timeout, which matches the original interactive behavior.
	ChoiceTimeout time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// New creates a recognition session. tz is the timezone used for menu
// bucketing; storage timestamps stay in UTC regardless.
func New(
	extractor FaceExtractor,
	matcher Matcher,
	catalog *menu.Catalog,
	prompter MenuPrompter,
	store database.AttendanceWriter,
	tz *time.Location,
) *Session {
	return &Session{
		ID:        uuid.New(),
		extractor: extractor,
		matcher:   matcher,
		catalog:   catalog,
		prompter:  prompter,
		store:     store,
		tz:        tz,
		now:       time.Now,
	}
}

// Run processes frames until the source reports io.EOF or ctx is canceled.
// A confirmed choice is always recorded before the next frame is read, so
// no in-flight recording is lost at shutdown.
func (s *Session) Run(ctx context.Context, frames FrameSource) (Stats, error) {
	var stats Stats

	for {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		frame, err := frames.Next(ctx)
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("reading frame: %w", err)
		}
		stats.Frames++

		if err := s.processFrame(ctx, frame, &stats); err != nil {
			return stats, err
		}
	}
}

// processFrame runs detect -> match -> select -> record for every face in
// one frame. Detection misses and unknown faces are normal outcomes;
// storage failures are not and abort the session so no attendance event
// is silently lost.
func (s *Session) processFrame(ctx context.Context, frame []byte, stats *Stats) error {
	faces, err := s.extractor.ExtractAll(frame)
	switch {
	case errors.Is(err, recognition.ErrNoFace):
		return nil
	case errors.Is(err, recognition.ErrInvalidImage):
		log.Printf("session %s: skipping undecodable frame: %v", s.ID, err)
		return nil
	case err != nil:
		return fmt.Errorf("extracting faces: %w", err)
	}

	for _, face := range faces {
		stats.Faces++

		m, ok := s.matcher.Match(face.Descriptor)
		if !ok {
			stats.Unknown++
			continue
		}

		if err := s.offerAndRecord(ctx, m, stats); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) offerAndRecord(ctx context.Context, m recognition.Match, stats *Stats) error {
	now := s.now()
	dishes := s.catalog.MenuFor(now, s.tz)

	offerCtx := ctx
	if s.ChoiceTimeout > 0 {
		var cancel context.CancelFunc
		offerCtx, cancel = context.WithTimeout(ctx, s.ChoiceTimeout)
		defer cancel()
	}

	dish, err := s.prompter.Offer(offerCtx, m.Label, dishes)
	switch {
	case errors.Is(err, ErrChoiceCanceled), errors.Is(err, context.DeadlineExceeded):
		// No record for a dismissed or timed-out menu; resume scanning.
		stats.Canceled++
		log.Printf("session %s: %s dismissed the menu", s.ID, m.Label)
		return nil
	case err != nil:
		return fmt.Errorf("awaiting dish choice for %s: %w", m.Label, err)
	}

	// Zero instant lets the store assign the current time.
	id, err := s.store.InsertSelection(ctx, m.Label, dish, time.Time{})
	if err != nil {
		return fmt.Errorf("recording selection for %s: %w", m.Label, err)
	}
	stats.Recorded++
	log.Printf("session %s: recorded #%d %s -> %s (distance %.3f)", s.ID, id, m.Label, dish, m.Distance)
	return nil
}
