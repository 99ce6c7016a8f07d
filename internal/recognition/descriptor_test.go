package recognition

import (
	"math"
	"testing"
)

func TestDescriptorFromSlice_RejectsWrongLength(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		wantErr bool
	}{
		{"exact", DescriptorDim, false},
		{"too short", 64, true},
		{"too long", 192, true},
		{"empty", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := make([]float32, tt.length)
			_, err := DescriptorFromSlice(v)
			if (err != nil) != tt.wantErr {
				t.Errorf("DescriptorFromSlice(len=%d) error = %v, wantErr %v", tt.length, err, tt.wantErr)
			}
		})
	}
}

func TestEuclideanDistance(t *testing.T) {
	var a, b Descriptor
	if d := EuclideanDistance(a, b); d != 0 {
		t.Errorf("distance between identical vectors = %f, want 0", d)
	}

	a[0] = 3
	b[0] = 0
	a[1] = 0
	b[1] = 4
	if d := EuclideanDistance(a, b); math.Abs(d-5) > 1e-9 {
		t.Errorf("distance = %f, want 5", d)
	}
}

func TestMean_ArithmeticMeanOfSuccessfulDescriptors(t *testing.T) {
	var d1, d2, d3 Descriptor
	for i := range d1 {
		d1[i] = 1
		d2[i] = 2
		d3[i] = 6
	}

	mean := Mean([]Descriptor{d1, d2, d3})
	for i, v := range mean {
		if math.Abs(float64(v)-3) > 1e-6 {
			t.Fatalf("mean[%d] = %f, want 3", i, v)
		}
	}
}

func TestMean_EmptyInputIsZeroSentinel(t *testing.T) {
	mean := Mean(nil)
	if !mean.IsZero() {
		t.Error("mean of zero descriptors should be the all-zero sentinel")
	}
}

func TestMean_OrderIndependent(t *testing.T) {
	var d1, d2 Descriptor
	for i := range d1 {
		d1[i] = float32(i)
		d2[i] = float32(DescriptorDim - i)
	}

	forward := Mean([]Descriptor{d1, d2})
	backward := Mean([]Descriptor{d2, d1})
	if forward != backward {
		t.Error("mean should not depend on descriptor order")
	}
}
