package density

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/tsawler/biobox/geometry"
)

// ============================================================================
// OpenDX Reader Tests
// ============================================================================

const sampleDX = `# Comments are ignored
object 1 class gridpositions counts 2 2 3
origin 1.0 2.0 3.0
delta 0.5 0 0
delta 0 0.5 0
delta 0 0 1.0
object 2 class gridconnections counts 2 2 3
object 3 class array type double rank 0 items 12 data follows
0 1 2
3 4 5
6 7 8
9 10 11
attribute "dep" string "positions"
object "regular positions regular connections" class field
`

func TestReadDX(t *testing.T) {
	d, err := ReadDX(strings.NewReader(sampleDX))
	if err != nil {
		t.Fatalf("ReadDX() error: %v", err)
	}

	if d.NX != 2 || d.NY != 2 || d.NZ != 3 {
		t.Fatalf("dimensions = %dx%dx%d, want 2x2x3", d.NX, d.NY, d.NZ)
	}
	if d.Origin.Distance(geometry.Vec3{X: 1, Y: 2, Z: 3}) > 1e-12 {
		t.Errorf("Origin = %+v, want (1,2,3)", d.Origin)
	}
	if d.Delta.Distance(geometry.Vec3{X: 0.5, Y: 0.5, Z: 1}) > 1e-12 {
		t.Errorf("Delta = %+v, want (0.5,0.5,1)", d.Delta)
	}

	// DX data is Z-fastest, matching the internal layout.
	if got := d.At(0, 0, 2); got != 2 {
		t.Errorf("At(0,0,2) = %v, want 2", got)
	}
	if got := d.At(1, 1, 0); got != 9 {
		t.Errorf("At(1,1,0) = %v, want 9", got)
	}
}

func TestReadDXSkewed(t *testing.T) {
	skewed := strings.Replace(sampleDX, "delta 0.5 0 0", "delta 0.5 0.1 0", 1)
	if _, err := ReadDX(strings.NewReader(skewed)); !errors.Is(err, ErrSkewedCell) {
		t.Errorf("skewed delta error = %v, want ErrSkewedCell", err)
	}
}

func TestReadDXMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing deltas", strings.Replace(sampleDX, "delta 0 0 1.0\n", "", 1)},
		{"bad origin", strings.Replace(sampleDX, "origin 1.0 2.0 3.0", "origin 1.0 x 3.0", 1)},
		{"bad data value", strings.Replace(sampleDX, "3 4 5", "3 four 5", 1)},
		{"truncated data", strings.Replace(sampleDX, "9 10 11\n", "", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadDX(strings.NewReader(tt.input)); err == nil {
				t.Error("ReadDX() error = nil, want error")
			}
		})
	}
}

// ============================================================================
// OpenDX Writer Tests
// ============================================================================

func TestDXRoundTrip(t *testing.T) {
	orig, err := New(3, 2, 4,
		geometry.Vec3{X: -5, Y: 0.25, Z: 7},
		geometry.Vec3{X: 0.5, Y: 1, Z: 1.5})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	for i := range orig.Data {
		orig.Data[i] = float32(i) * 0.125
	}

	var buf bytes.Buffer
	if err := WriteDX(&buf, orig); err != nil {
		t.Fatalf("WriteDX() error: %v", err)
	}

	got, err := ReadDX(&buf)
	if err != nil {
		t.Fatalf("ReadDX() error: %v", err)
	}

	if got.NX != orig.NX || got.NY != orig.NY || got.NZ != orig.NZ {
		t.Fatalf("dimensions = %dx%dx%d, want %dx%dx%d",
			got.NX, got.NY, got.NZ, orig.NX, orig.NY, orig.NZ)
	}
	if got.Origin.Distance(orig.Origin) > 1e-9 {
		t.Errorf("Origin = %+v, want %+v", got.Origin, orig.Origin)
	}
	if got.Delta.Distance(orig.Delta) > 1e-9 {
		t.Errorf("Delta = %+v, want %+v", got.Delta, orig.Delta)
	}
	for i := range orig.Data {
		if math.Abs(float64(got.Data[i]-orig.Data[i])) > 1e-6 {
			t.Fatalf("Data[%d] = %v, want %v", i, got.Data[i], orig.Data[i])
		}
	}
}

func TestWriteDXInvalid(t *testing.T) {
	d := &Density{NX: 2, NY: 2, NZ: 2, Data: make([]float32, 3)}
	if err := WriteDX(&bytes.Buffer{}, d); err == nil {
		t.Error("WriteDX() on mismatched data error = nil, want error")
	}
}
