package polyhedron

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/tsawler/biobox/geometry"
)

// ============================================================================
// Solid Database Tests
// ============================================================================

func TestSolidCounts(t *testing.T) {
	tests := []struct {
		name     string
		vertices int
		edges    int
	}{
		{"tetrahedron", 4, 6},
		{"cube", 8, 12},
		{"octahedron", 6, 12},
		{"dodecahedron", 20, 30},
		{"icosahedron", 12, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.name)
			if err != nil {
				t.Fatalf("New(%q) error: %v", tt.name, err)
			}
			if got := len(p.Vertices()); got != tt.vertices {
				t.Errorf("vertex count = %d, want %d", got, tt.vertices)
			}
			if got := len(p.Edges()); got != tt.edges {
				t.Errorf("edge count = %d, want %d", got, tt.edges)
			}
		})
	}
}

func TestVerticesOnUnitSphere(t *testing.T) {
	for _, name := range Names() {
		p, err := New(name)
		if err != nil {
			t.Fatalf("New(%q) error: %v", name, err)
		}
		for i, v := range p.Vertices() {
			if math.Abs(v.Norm()-1) > 1e-12 {
				t.Errorf("%s vertex %d has norm %v, want 1", name, i, v.Norm())
			}
		}
	}
}

func TestEdgesAreUniformLength(t *testing.T) {
	for _, name := range Names() {
		p, err := New(name)
		if err != nil {
			t.Fatalf("New(%q) error: %v", name, err)
		}
		verts := p.Vertices()
		want := p.EdgeLength()
		for _, e := range p.Edges() {
			d := verts[e[0]].Distance(verts[e[1]])
			if math.Abs(d-want) > 1e-9 {
				t.Errorf("%s edge %v has length %v, want %v", name, e, d, want)
			}
		}
	}
}

func TestNewUnknown(t *testing.T) {
	if _, err := New("teapot"); !errors.Is(err, ErrUnknownSolid) {
		t.Errorf("New(teapot) error = %v, want ErrUnknownSolid", err)
	}
}

func TestNewCaseInsensitive(t *testing.T) {
	p, err := New("  Icosahedron ")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if p.Name() != "icosahedron" {
		t.Errorf("Name() = %q, want icosahedron", p.Name())
	}
}

// ============================================================================
// Geometry Tests
// ============================================================================

func TestScale(t *testing.T) {
	p, err := New("cube")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := p.Scale(5); err != nil {
		t.Fatalf("Scale() error: %v", err)
	}
	if got := p.EdgeLength(); math.Abs(got-5) > 1e-9 {
		t.Errorf("EdgeLength() = %v, want 5", got)
	}

	// Circumradius scales with the edges: for a unit-edge cube it is
	// sqrt(3)/2.
	want := 5 * math.Sqrt(3) / 2
	for _, v := range p.Vertices() {
		if math.Abs(v.Norm()-want) > 1e-9 {
			t.Errorf("vertex norm = %v, want %v", v.Norm(), want)
		}
	}

	if err := p.Scale(0); err == nil {
		t.Error("Scale(0) error = nil, want error")
	}
}

func TestStructure(t *testing.T) {
	p, err := New("octahedron")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	s := p.Structure()
	if s.NumPoints() != 6 {
		t.Errorf("NumPoints() = %d, want 6", s.NumPoints())
	}
	if c := s.Center(); c.Norm() > 1e-12 {
		t.Errorf("Center() = %+v, want origin", c)
	}

	// The structure is a snapshot: scaling the solid must not move it.
	before := s.XYZ()[0]
	if err := p.Scale(10); err != nil {
		t.Fatalf("Scale() error: %v", err)
	}
	if s.XYZ()[0] != before {
		t.Error("structure points changed after scaling the solid")
	}
}

func TestJitter(t *testing.T) {
	p, err := New("tetrahedron")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	before := p.Vertices()

	rng := rand.New(rand.NewSource(7))
	p.Jitter(0.1, rng)

	moved := false
	for i, v := range p.Vertices() {
		d := v.Distance(before[i])
		if d > 0 {
			moved = true
		}
		if d > 1 {
			t.Errorf("vertex %d moved by %v, far beyond 0.1 sigma", i, d)
		}
	}
	if !moved {
		t.Error("Jitter() left all vertices in place")
	}

	// Zero sigma is a no-op.
	q, _ := New("tetrahedron")
	orig := q.Vertices()
	q.Jitter(0, rng)
	for i, v := range q.Vertices() {
		if v != orig[i] {
			t.Errorf("Jitter(0) moved vertex %d", i)
		}
	}
}

// edgesContain reports whether the edge list contains the pair in
// either order.
func edgesContain(edges [][2]int, a, b int) bool {
	for _, e := range edges {
		if (e[0] == a && e[1] == b) || (e[0] == b && e[1] == a) {
			return true
		}
	}
	return false
}

func TestCubeEdgeTopology(t *testing.T) {
	p, err := New("cube")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	verts := p.Vertices()
	edges := p.Edges()

	// Cube edges connect vertices differing in exactly one coordinate
	// sign.
	for i := range verts {
		degree := 0
		for j := range verts {
			if i == j {
				continue
			}
			diff := 0
			if verts[i].X*verts[j].X < 0 {
				diff++
			}
			if verts[i].Y*verts[j].Y < 0 {
				diff++
			}
			if verts[i].Z*verts[j].Z < 0 {
				diff++
			}
			if diff == 1 && !edgesContain(edges, i, j) {
				t.Errorf("missing edge between vertices %d and %d", i, j)
			}
			if diff > 1 && edgesContain(edges, i, j) {
				t.Errorf("spurious edge between vertices %d and %d", i, j)
			}
			if edgesContain(edges, i, j) {
				degree++
			}
		}
		if degree != 3 {
			t.Errorf("vertex %d has degree %d, want 3", i, degree)
		}
	}
}

// ============================================================================
// Vec3 sanity for the database helpers
// ============================================================================

func TestGoldenRatioShells(t *testing.T) {
	// Icosahedron and dodecahedron vertex families sit on one sphere
	// each before normalization; spot-check the identity phi^2 = phi+1
	// the construction relies on.
	if math.Abs(phi*phi-phi-1) > 1e-12 {
		t.Fatalf("phi identity violated: phi = %v", phi)
	}
	a := geometry.Vec3{Y: 1, Z: phi}.Norm()
	b := geometry.Vec3{X: phi, Z: 1}.Norm()
	if math.Abs(a-b) > 1e-12 {
		t.Errorf("icosahedron families on different shells: %v vs %v", a, b)
	}
}
