package recognition

import (
	"sync"

	"github.com/coder/hnsw"
)

// HNSW parameters for 128D face descriptors.
const (
	// hnswMaxNeighbors (M) is the maximum number of neighbors per node.
	// Higher values improve recall but increase memory and build time.
	hnswMaxNeighbors = 16

	// hnswSearchMultiplier requests extra candidates from the approximate
	// search so the exact re-check still sees the true nearest neighbor.
	hnswSearchMultiplier = 3

	// hnswMinGallerySize is the gallery size below which a linear scan is
	// both exact and faster than maintaining a graph.
	hnswMinGallerySize = 64
)

// galleryIndex is an in-memory HNSW index over gallery entries, keyed by
// position in the sorted gallery.
type galleryIndex struct {
	graph *hnsw.Graph[int]
	mu    sync.RWMutex
}

// newGalleryIndex builds an index from a sorted gallery.
func newGalleryIndex(gallery Gallery) *galleryIndex {
	g := hnsw.NewGraph[int]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors)
	g.Distance = hnsw.EuclideanDistance

	for i := range gallery {
		g.Add(hnsw.MakeNode(i, gallery[i].Descriptor.Slice()))
	}

	return &galleryIndex{graph: g}
}

// search returns up to k candidate gallery positions near the probe.
func (idx *galleryIndex) search(probe Descriptor, k int) []int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	neighbors := idx.graph.Search(probe.Slice(), k)
	positions := make([]int, len(neighbors))
	for i, n := range neighbors {
		positions[i] = n.Key
	}
	return positions
}
