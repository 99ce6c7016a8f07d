package recognition

import (
	"errors"
	"fmt"
	"image"
	"sync"

	goface "github.com/Kagami/go-face"
)

// ErrNoFace is returned when detection finds no face in the image.
// Recoverable: callers skip the image or region and move on.
var ErrNoFace = errors.New("no face detected")

// Face is one detected face within an image.
type Face struct {
	Region     image.Rectangle
	Descriptor Descriptor
}

// Extractor computes 128D descriptors from face images using dlib models.
// The models directory must contain shape_predictor_5_face_landmarks.dat
// and dlib_face_recognition_resnet_model_v1.dat.
type Extractor struct {
	rec     *goface.Recognizer
	maxEdge int
	mu      sync.Mutex
}

// NewExtractor loads the dlib models from modelsDir. maxEdge bounds the
// longer edge of decoded images before detection (0 disables downscaling).
func NewExtractor(modelsDir string, maxEdge int) (*Extractor, error) {
	rec, err := goface.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("loading face models from %s: %w", modelsDir, err)
	}
	return &Extractor{rec: rec, maxEdge: maxEdge}, nil
}

// Close releases the underlying dlib resources.
func (e *Extractor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec != nil {
		e.rec.Close()
		e.rec = nil
	}
}

// Extract computes the descriptor for the first face found in the image.
// With a non-nil region the image is cropped to it before detection.
// Returns ErrNoFace when detection finds nothing and ErrInvalidImage when
// the data cannot be decoded.
func (e *Extractor) Extract(data []byte, region *image.Rectangle) (Descriptor, error) {
	faces, err := e.detect(data, region)
	if err != nil {
		return Descriptor{}, err
	}
	return faces[0].Descriptor, nil
}

// ExtractAll detects every face in the image and returns a (region,
// descriptor) pair per face. Returns ErrNoFace when nothing is found.
func (e *Extractor) ExtractAll(data []byte) ([]Face, error) {
	return e.detect(data, nil)
}

func (e *Extractor) detect(data []byte, region *image.Rectangle) ([]Face, error) {
	jpegData, err := PrepareImage(data, region, e.maxEdge)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	rec := e.rec
	e.mu.Unlock()
	if rec == nil {
		return nil, errors.New("extractor is closed")
	}

	detected, err := rec.Recognize(jpegData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(detected) == 0 {
		return nil, ErrNoFace
	}

	faces := make([]Face, len(detected))
	for i, f := range detected {
		faces[i] = Face{
			Region:     f.Rectangle,
			Descriptor: Descriptor(f.Descriptor),
		}
	}
	return faces, nil
}
