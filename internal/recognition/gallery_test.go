package recognition

import (
	"fmt"
	"image"
	"testing"
)

// stubSource maps image names to canned descriptors or errors.
type stubSource struct {
	descriptors map[string]Descriptor
	errs        map[string]error
}

func (s *stubSource) Extract(data []byte, region *image.Rectangle) (Descriptor, error) {
	name := string(data)
	if err, ok := s.errs[name]; ok {
		return Descriptor{}, err
	}
	d, ok := s.descriptors[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("unexpected image %q", name)
	}
	return d, nil
}

func uniformDescriptor(v float32) Descriptor {
	var d Descriptor
	for i := range d {
		d[i] = v
	}
	return d
}

func namedImages(names ...string) []NamedImage {
	imgs := make([]NamedImage, len(names))
	for i, n := range names {
		imgs[i] = NamedImage{Name: n, Data: []byte(n)}
	}
	return imgs
}

func TestBuildGallery_MeanOfSuccessfulOnly(t *testing.T) {
	source := &stubSource{
		descriptors: map[string]Descriptor{
			"a1.jpg": uniformDescriptor(2),
			"a2.jpg": uniformDescriptor(4),
		},
		errs: map[string]error{
			"a3.jpg": ErrNoFace,
			"a4.jpg": ErrInvalidImage,
		},
	}

	gallery := BuildGallery(source, []PersonImages{
		{Label: "Alice", Images: namedImages("a1.jpg", "a2.jpg", "a3.jpg", "a4.jpg")},
	})

	if len(gallery) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(gallery))
	}
	want := uniformDescriptor(3)
	if gallery[0].Descriptor != want {
		t.Errorf("reference descriptor should be the mean of the 2 successful extractions")
	}
}

func TestBuildGallery_AllFailedKeepsZeroSentinel(t *testing.T) {
	source := &stubSource{
		errs: map[string]error{
			"b1.jpg": ErrNoFace,
			"b2.jpg": ErrNoFace,
		},
	}

	gallery := BuildGallery(source, []PersonImages{
		{Label: "Bob", Images: namedImages("b1.jpg", "b2.jpg")},
	})

	if len(gallery) != 1 {
		t.Fatalf("identity with no usable images must stay in the gallery, got %d entries", len(gallery))
	}
	if gallery[0].Label != "Bob" {
		t.Errorf("expected label Bob, got %q", gallery[0].Label)
	}
	if !gallery[0].Descriptor.IsZero() {
		t.Error("identity with no usable images must get the all-zero descriptor")
	}
}

func TestBuildGallery_SortedByNormalizedLabel(t *testing.T) {
	source := &stubSource{
		descriptors: map[string]Descriptor{
			"x.jpg": uniformDescriptor(1),
			"y.jpg": uniformDescriptor(2),
			"z.jpg": uniformDescriptor(3),
		},
	}

	gallery := BuildGallery(source, []PersonImages{
		{Label: "Zuzana", Images: namedImages("z.jpg")},
		{Label: "jiri-novak", Images: namedImages("y.jpg")},
		{Label: "Adéla", Images: namedImages("x.jpg")},
	})

	wantOrder := []string{"Adéla", "jiri-novak", "Zuzana"}
	for i, want := range wantOrder {
		if gallery[i].Label != want {
			t.Errorf("position %d: expected %q, got %q", i, want, gallery[i].Label)
		}
	}
}

func TestGalleryFromStored_ValidatesDimensions(t *testing.T) {
	_, err := GalleryFromStored(map[string][]float32{
		"Alice": make([]float32, DescriptorDim),
		"Bob":   make([]float32, 64),
	})
	if err == nil {
		t.Fatal("expected error for 64-dim stored vector")
	}
}

func TestGalleryFromStored_SortsEntries(t *testing.T) {
	gallery, err := GalleryFromStored(map[string][]float32{
		"carol": make([]float32, DescriptorDim),
		"alice": make([]float32, DescriptorDim),
		"bob":   make([]float32, DescriptorDim),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantOrder := []string{"alice", "bob", "carol"}
	for i, want := range wantOrder {
		if gallery[i].Label != want {
			t.Errorf("position %d: expected %q, got %q", i, want, gallery[i].Label)
		}
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jiří Novák", "jiri novak"},
		{"jan-novak", "jan novak"},
		{"person_1_Alice", "person 1 alice"},
		{"  Bob  ", "bob"},
	}
	for _, tt := range tests {
		if got := NormalizeLabel(tt.in); got != tt.want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
