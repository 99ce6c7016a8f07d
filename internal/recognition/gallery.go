package recognition

import (
	"errors"
	"fmt"
	"image"
	"log"
	"sort"
)

// Entry is one known identity: a label and its reference descriptor
// (the mean of the identity's successful enrollment descriptors).
type Entry struct {
	Label      string
	Descriptor Descriptor
}

// Gallery is the ordered set of known identities. Entries are sorted by
// normalized label so nearest-neighbor tie-breaks are reproducible across
// rebuilds and restarts.
type Gallery []Entry

// SortGallery orders entries by normalized label, original label as a
// secondary key for stability.
func SortGallery(g Gallery) {
	sort.SliceStable(g, func(i, j int) bool {
		ni, nj := NormalizeLabel(g[i].Label), NormalizeLabel(g[j].Label)
		if ni != nj {
			return ni < nj
		}
		return g[i].Label < g[j].Label
	})
}

// DescriptorSource extracts a descriptor from raw image data.
// *Extractor satisfies it; tests substitute a stub.
type DescriptorSource interface {
	Extract(data []byte, region *image.Rectangle) (Descriptor, error)
}

// PersonImages is the enrollment image set for one identity.
type PersonImages struct {
	Label  string
	Images []NamedImage
}

// NamedImage pairs image bytes with a name used only for logging.
type NamedImage struct {
	Name string
	Data []byte
}

// BuildGallery aggregates per-person enrollment images into reference
// descriptors. Images with no detectable face or undecodable data are
// skipped and logged; one bad photo never blocks gallery construction.
// An identity whose images all fail keeps an all-zero reference
// descriptor so any probe stays far from it.
func BuildGallery(source DescriptorSource, people []PersonImages) Gallery {
	gallery := make(Gallery, 0, len(people))

	for _, person := range people {
		var descriptors []Descriptor
		for _, img := range person.Images {
			d, err := source.Extract(img.Data, nil)
			switch {
			case errors.Is(err, ErrNoFace):
				log.Printf("enroll %s: no face detected in %s, skipping", person.Label, img.Name)
				continue
			case errors.Is(err, ErrInvalidImage):
				log.Printf("enroll %s: unreadable image %s, skipping: %v", person.Label, img.Name, err)
				continue
			case err != nil:
				log.Printf("enroll %s: extraction failed for %s, skipping: %v", person.Label, img.Name, err)
				continue
			}
			descriptors = append(descriptors, d)
		}

		if len(descriptors) == 0 {
			log.Printf("enroll %s: no usable enrollment images, storing zero descriptor", person.Label)
		}
		gallery = append(gallery, Entry{
			Label:      person.Label,
			Descriptor: Mean(descriptors),
		})
	}

	SortGallery(gallery)
	return gallery
}

// GalleryFromStored converts stored (label, vector) rows into a sorted
// gallery, validating every vector's dimensionality.
func GalleryFromStored(rows map[string][]float32) (Gallery, error) {
	gallery := make(Gallery, 0, len(rows))
	for label, vec := range rows {
		d, err := DescriptorFromSlice(vec)
		if err != nil {
			return nil, fmt.Errorf("identity %q: %w", label, err)
		}
		gallery = append(gallery, Entry{Label: label, Descriptor: d})
	}
	SortGallery(gallery)
	return gallery, nil
}
