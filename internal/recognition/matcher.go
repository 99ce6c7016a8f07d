package recognition

import (
	"math"
	"sort"
)

// Match is the result of a successful gallery lookup.
type Match struct {
	Label    string
	Distance float64
}

// Recognizer matches probe descriptors against a fixed gallery with an
// acceptance threshold. Constructed once at startup and passed to the
// recognition session; there is no package-level gallery state.
//
// Matching is a pure decision function: minimum Euclidean distance over
// the gallery, accepted only below the threshold. Ties on exact distance
// resolve to the first entry in label-sorted gallery order. Galleries
// large enough to matter are searched through an HNSW index with an exact
// re-check of the candidates, which preserves the accept/reject contract.
type Recognizer struct {
	gallery   Gallery
	threshold float64
	index     *galleryIndex
}

// NewRecognizer builds a recognizer over the gallery. The gallery is
// re-sorted defensively so tie-breaks stay deterministic regardless of
// how the caller assembled it.
func NewRecognizer(gallery Gallery, threshold float64) *Recognizer {
	g := make(Gallery, len(gallery))
	copy(g, gallery)
	SortGallery(g)

	r := &Recognizer{gallery: g, threshold: threshold}
	if len(g) >= hnswMinGallerySize {
		r.index = newGalleryIndex(g)
	}
	return r
}

// Threshold returns the configured acceptance threshold.
func (r *Recognizer) Threshold() float64 {
	return r.threshold
}

// GallerySize returns the number of known identities.
func (r *Recognizer) GallerySize() int {
	return len(r.gallery)
}

// Match finds the closest gallery identity to the probe. ok is false when
// the gallery is empty or the minimum distance reaches the threshold, in
// which case the probe is treated as unknown.
func (r *Recognizer) Match(probe Descriptor) (Match, bool) {
	if len(r.gallery) == 0 {
		return Match{}, false
	}

	var best int
	var bestDist float64
	if r.index != nil {
		best, bestDist = r.nearestIndexed(probe)
	} else {
		best, bestDist = r.nearestLinear(probe)
	}

	if bestDist >= r.threshold {
		return Match{}, false
	}
	return Match{Label: r.gallery[best].Label, Distance: bestDist}, true
}

// nearestLinear scans the whole gallery. Strict less-than keeps the first
// entry in sorted order on exact distance ties.
func (r *Recognizer) nearestLinear(probe Descriptor) (int, float64) {
	best := 0
	bestDist := math.MaxFloat64
	for i := range r.gallery {
		if d := EuclideanDistance(probe, r.gallery[i].Descriptor); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

// nearestIndexed asks the HNSW graph for candidates and re-checks them
// with exact distances. Candidates are visited in gallery order so the
// tie-break matches the linear scan.
func (r *Recognizer) nearestIndexed(probe Descriptor) (int, float64) {
	k := hnswSearchMultiplier
	if k > len(r.gallery) {
		k = len(r.gallery)
	}

	candidates := r.index.search(probe, k)
	if len(candidates) == 0 {
		return r.nearestLinear(probe)
	}
	sort.Ints(candidates)

	best := candidates[0]
	bestDist := math.MaxFloat64
	for _, i := range candidates {
		if d := EuclideanDistance(probe, r.gallery[i].Descriptor); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}
