// Package capture adapts a webcam to the session.FrameSource interface
// using OpenCV via gocv. The recognition core never imports gocv directly.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"gocv.io/x/gocv"
)

// Webcam reads JPEG frames from a V4L2 camera device.
type Webcam struct {
	cap    *gocv.VideoCapture
	mat    gocv.Mat
	mu     sync.Mutex
	closed bool
}

// OpenWebcam opens the camera at the given device index.
func OpenWebcam(device int) (*Webcam, error) {
	cap, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("opening camera device %d: %w", device, err)
	}
	return &Webcam{cap: cap, mat: gocv.NewMat()}, nil
}

// Next reads one frame and returns it as JPEG bytes. Returns io.EOF once
// the camera stops delivering frames or the webcam is closed.
func (w *Webcam) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, io.EOF
	}

	if ok := w.cap.Read(&w.mat); !ok {
		return nil, io.EOF
	}
	if w.mat.Empty() {
		return nil, errors.New("camera returned an empty frame")
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, w.mat)
	if err != nil {
		return nil, fmt.Errorf("encoding frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}

// Close releases the camera and frame buffer. Safe to call once.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	w.mat.Close()
	if err := w.cap.Close(); err != nil {
		return fmt.Errorf("closing camera: %w", err)
	}
	return nil
}
