package capture

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// imageExtensions lists the file types the dlib pipeline can consume.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

// FileSource replays still images from a directory as frames, sorted by
// filename. Useful for recognizing from captured stills and in tests.
type FileSource struct {
	paths []string
	pos   int
}

// NewFileSource lists the supported image files under dir.
func NewFileSource(dir string) (*FileSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading frame directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	return &FileSource{paths: paths}, nil
}

// Next returns the next image's bytes, or io.EOF after the last one.
func (f *FileSource) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.pos >= len(f.paths) {
		return nil, io.EOF
	}

	path := f.paths[f.pos]
	f.pos++

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading frame %s: %w", path, err)
	}
	return data, nil
}

// Close implements session.FrameSource; nothing to release.
func (f *FileSource) Close() error { return nil }
