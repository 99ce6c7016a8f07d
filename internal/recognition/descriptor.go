// Package recognition turns face images into 128D descriptors and matches
// them against a gallery of known identities. It uses dlib via go-face for
// detection, landmark extraction and descriptor computation.
package recognition

import (
	"fmt"
	"math"
)

// DescriptorDim is the dimensionality of dlib's ResNet v1 face descriptors.
const DescriptorDim = 128

// Descriptor is a fixed-length face descriptor. Euclidean distance in this
// space approximates facial similarity. Immutable once produced.
type Descriptor [DescriptorDim]float32

// DescriptorFromSlice validates and converts a stored vector into a Descriptor.
// Length mismatches are hard errors, never padded or truncated.
func DescriptorFromSlice(v []float32) (Descriptor, error) {
	var d Descriptor
	if len(v) != DescriptorDim {
		return d, fmt.Errorf("descriptor has %d dimensions, want %d", len(v), DescriptorDim)
	}
	copy(d[:], v)
	return d, nil
}

// Slice returns the descriptor as a float32 slice for storage and indexing.
func (d Descriptor) Slice() []float32 {
	out := make([]float32, DescriptorDim)
	copy(out, d[:])
	return out
}

// IsZero reports whether the descriptor is the all-zero sentinel used for
// identities whose enrollment produced no usable images.
func (d Descriptor) IsZero() bool {
	for _, v := range d {
		if v != 0 {
			return false
		}
	}
	return true
}

// EuclideanDistance computes the Euclidean distance between two descriptors.
// Lower means more similar; dlib's conventional match threshold is 0.6.
func EuclideanDistance(a, b Descriptor) float64 {
	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// Mean computes the element-wise arithmetic mean of descriptors. An empty
// input yields the all-zero sentinel, which keeps the identity in the
// gallery but unmatchable for any real probe.
func Mean(descriptors []Descriptor) Descriptor {
	var mean Descriptor
	if len(descriptors) == 0 {
		return mean
	}

	var sums [DescriptorDim]float64
	for _, d := range descriptors {
		for i, v := range d {
			sums[i] += float64(v)
		}
	}

	n := float64(len(descriptors))
	for i := range sums {
		mean[i] = float32(sums[i] / n)
	}
	return mean
}
