package assembly

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/tsawler/biobox/geometry"
	"github.com/tsawler/biobox/pdb"
	"github.com/tsawler/biobox/structure"
)

// ============================================================================
// Test Helpers
// ============================================================================

// triangle returns a three-point unit with centroid (0, 0, 1).
func triangle(t *testing.T) *structure.Structure {
	t.Helper()
	return structure.New([]geometry.Vec3{
		{X: 1, Y: 0, Z: 0},
		{X: -1, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: 3},
	})
}

// ============================================================================
// Collection Tests
// ============================================================================

func TestAddAndUnit(t *testing.T) {
	a := New()
	if err := a.Add("core", triangle(t)); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := a.Add("shell", triangle(t)); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	if a.Len() != 2 {
		t.Errorf("Len() = %d, want 2", a.Len())
	}
	if got := a.Labels(); got[0] != "core" || got[1] != "shell" {
		t.Errorf("Labels() = %v, want [core shell]", got)
	}
	if _, ok := a.Unit("core"); !ok {
		t.Error("Unit(core) not found")
	}
	if _, ok := a.Unit("missing"); ok {
		t.Error("Unit(missing) found, want absent")
	}
}

func TestAddDuplicateLabel(t *testing.T) {
	a := New()
	if err := a.Add("core", triangle(t)); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := a.Add("core", triangle(t)); !errors.Is(err, ErrDuplicateLabel) {
		t.Errorf("duplicate Add() error = %v, want ErrDuplicateLabel", err)
	}
	if err := a.Add("nil", nil); err == nil {
		t.Error("Add(nil) error = nil, want error")
	}
}

func TestAllXYZ(t *testing.T) {
	a := New()
	first := structure.New([]geometry.Vec3{{X: 1}})
	second := structure.New([]geometry.Vec3{{X: 2}, {X: 3}})
	if err := a.Add("first", first); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := a.Add("second", second); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	got := a.AllXYZ()
	want := []float64{1, 2, 3}
	if len(got) != 3 {
		t.Fatalf("AllXYZ() has %d points, want 3", len(got))
	}
	for i, x := range want {
		if got[i].X != x {
			t.Errorf("AllXYZ()[%d].X = %v, want %v", i, got[i].X, x)
		}
	}
	if c := a.Center(); math.Abs(c.X-2) > 1e-12 {
		t.Errorf("Center().X = %v, want 2", c.X)
	}
}

// ============================================================================
// Rigid Motion Tests
// ============================================================================

func TestTranslateMovesAllUnits(t *testing.T) {
	a := New()
	if err := a.Add("u", triangle(t)); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := a.Add("v", triangle(t)); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	a.Translate(geometry.Vec3{X: 5, Y: -1, Z: 2})
	want := geometry.Vec3{X: 5, Y: -1, Z: 3}
	if c := a.Center(); c.Distance(want) > 1e-12 {
		t.Errorf("Center() = %+v, want %+v", c, want)
	}
}

func TestRotateAbout(t *testing.T) {
	a := New()
	unit := structure.New([]geometry.Vec3{{X: 2}})
	if err := a.Add("u", unit); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	a.RotateAbout(geometry.RotationZ(math.Pi), geometry.Vec3{X: 1})
	if got := unit.XYZ()[0]; got.Distance(geometry.Vec3{}) > 1e-12 {
		t.Errorf("point = %+v, want origin", got)
	}
}

// ============================================================================
// Layout Tests
// ============================================================================

func TestMakeCircular(t *testing.T) {
	tmpl := triangle(t)
	a, err := MakeCircular(tmpl, 4, 10)
	if err != nil {
		t.Fatalf("MakeCircular() error: %v", err)
	}
	if a.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", a.Len())
	}

	// Unit centers sit on the ring, 90 degrees apart.
	for i, label := range a.Labels() {
		u, ok := a.Unit(label)
		if !ok {
			t.Fatalf("Unit(%q) not found", label)
		}
		angle := 2 * math.Pi * float64(i) / 4
		want := geometry.Vec3{X: 10 * math.Cos(angle), Y: 10 * math.Sin(angle)}
		if c := u.Center(); c.Distance(want) > 1e-9 {
			t.Errorf("unit %q center = %+v, want %+v", label, c, want)
		}
	}

	// The ring has n-fold symmetry: rotating one unit about the axis by
	// the step angle reproduces its neighbor.
	first, _ := a.Unit("0")
	second, _ := a.Unit("1")
	rotated := first.Clone()
	rotated.Rotate(geometry.RotationZ(math.Pi / 2))
	for i, p := range rotated.XYZ() {
		if p.Distance(second.XYZ()[i]) > 1e-9 {
			t.Fatalf("rotated unit 0 point %d = %+v, want %+v", i, p, second.XYZ()[i])
		}
	}

	// The template itself is untouched.
	if c := tmpl.Center(); c.Distance(geometry.Vec3{Z: 1}) > 1e-12 {
		t.Errorf("template center moved to %+v", c)
	}
}

func TestMakeStacked(t *testing.T) {
	a, err := MakeStacked(triangle(t), 3, 5)
	if err != nil {
		t.Fatalf("MakeStacked() error: %v", err)
	}
	for i, label := range a.Labels() {
		u, _ := a.Unit(label)
		want := geometry.Vec3{Z: float64(i) * 5}
		if c := u.Center(); c.Distance(want) > 1e-12 {
			t.Errorf("unit %q center = %+v, want %+v", label, c, want)
		}
	}
}

func TestLayoutErrors(t *testing.T) {
	if _, err := MakeCircular(triangle(t), 0, 10); err == nil {
		t.Error("MakeCircular(n=0) error = nil, want error")
	}
	if _, err := MakeStacked(nil, 3, 5); err == nil {
		t.Error("MakeStacked(nil) error = nil, want error")
	}
	if _, err := MakeCircular(structure.New(nil), 3, 10); err == nil {
		t.Error("MakeCircular(empty) error = nil, want error")
	}
}

// ============================================================================
// Output Tests
// ============================================================================

func TestWritePDB(t *testing.T) {
	a, err := MakeStacked(triangle(t), 2, 8)
	if err != nil {
		t.Fatalf("MakeStacked() error: %v", err)
	}

	var buf bytes.Buffer
	if err := a.WritePDB(&buf); err != nil {
		t.Fatalf("WritePDB() error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("WritePDB() wrote no bytes")
	}

	f, warnings, err := pdb.NewParser(&buf).Parse()
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(f.Atoms) != 6 {
		t.Fatalf("wrote %d atoms, want 6", len(f.Atoms))
	}

	chains := map[string]int{}
	for _, atom := range f.Atoms {
		chains[atom.Chain]++
		if atom.Name != "CA" || atom.ResName != "UNK" {
			t.Errorf("atom = %s/%s, want CA/UNK", atom.Name, atom.ResName)
		}
	}
	if chains["A"] != 3 || chains["B"] != 3 {
		t.Errorf("chain sizes = %v, want A:3 B:3", chains)
	}
}
