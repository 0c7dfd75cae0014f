package polyhedron

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/tsawler/biobox/geometry"
	"github.com/tsawler/biobox/structure"
)

// ErrUnknownSolid is returned for solid names not in the database.
var ErrUnknownSolid = errors.New("unknown solid")

// Polyhedron is a geometric scaffold: the vertices and edges of a
// regular solid, used to position copies of a molecule in space.
type Polyhedron struct {
	name  string
	verts []geometry.Vec3
	edges [][2]int
}

// phi is the golden ratio, which parametrizes the icosahedron and
// dodecahedron vertex sets.
var phi = (1 + math.Sqrt(5)) / 2

// solids maps solid names to raw vertex sets. Vertices are normalized
// to the unit sphere on lookup; edges are the minimal-distance pairs.
var solids = map[string][]geometry.Vec3{
	"tetrahedron": {
		{X: 1, Y: 1, Z: 1}, {X: 1, Y: -1, Z: -1},
		{X: -1, Y: 1, Z: -1}, {X: -1, Y: -1, Z: 1},
	},
	"cube":         boxVertices(1, 1, 1),
	"octahedron":   crossVertices(1),
	"icosahedron":  cyclicVertices(0, 1, phi),
	"dodecahedron": dodecahedronVertices(),
}

func boxVertices(a, b, c float64) []geometry.Vec3 {
	var out []geometry.Vec3
	for _, x := range []float64{a, -a} {
		for _, y := range []float64{b, -b} {
			for _, z := range []float64{c, -c} {
				out = append(out, geometry.Vec3{X: x, Y: y, Z: z})
			}
		}
	}
	return out
}

func crossVertices(a float64) []geometry.Vec3 {
	return []geometry.Vec3{
		{X: a}, {X: -a}, {Y: a}, {Y: -a}, {Z: a}, {Z: -a},
	}
}

// cyclicVertices returns all sign combinations of (a, +-b, +-c) under
// the three cyclic coordinate rotations. Zero components take no sign.
func cyclicVertices(a, b, c float64) []geometry.Vec3 {
	var out []geometry.Vec3
	for _, sb := range []float64{1, -1} {
		for _, sc := range []float64{1, -1} {
			x, y, z := a, sb*b, sc*c
			out = append(out,
				geometry.Vec3{X: x, Y: y, Z: z},
				geometry.Vec3{X: z, Y: x, Z: y},
				geometry.Vec3{X: y, Y: z, Z: x})
		}
	}
	return out
}

func dodecahedronVertices() []geometry.Vec3 {
	out := boxVertices(1, 1, 1)
	return append(out, cyclicVertices(0, 1/phi, phi)...)
}

// Names returns the available solid names in sorted order.
func Names() []string {
	out := make([]string, 0, len(solids))
	for name := range solids {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// New builds a solid by name, case-insensitively, with vertices on the
// unit sphere.
func New(name string) (*Polyhedron, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	raw, ok := solids[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSolid, name)
	}

	verts := make([]geometry.Vec3, len(raw))
	for i, v := range raw {
		verts[i] = v.Normalize()
	}
	return &Polyhedron{name: key, verts: verts, edges: computeEdges(verts)}, nil
}

// computeEdges connects every vertex pair at the minimal pairwise
// distance, which for a regular solid is exactly the edge set.
func computeEdges(verts []geometry.Vec3) [][2]int {
	min := math.Inf(1)
	for i := 0; i < len(verts); i++ {
		for j := i + 1; j < len(verts); j++ {
			if d := verts[i].Distance(verts[j]); d < min {
				min = d
			}
		}
	}

	var edges [][2]int
	for i := 0; i < len(verts); i++ {
		for j := i + 1; j < len(verts); j++ {
			if verts[i].Distance(verts[j]) <= min*(1+1e-9) {
				edges = append(edges, [2]int{i, j})
			}
		}
	}
	return edges
}

// Name returns the solid's name.
func (p *Polyhedron) Name() string {
	return p.name
}

// EdgeLength returns the current edge length.
func (p *Polyhedron) EdgeLength() float64 {
	e := p.edges[0]
	return p.verts[e[0]].Distance(p.verts[e[1]])
}

// Scale resizes the solid about its center so edges have the given
// length.
func (p *Polyhedron) Scale(edgeLength float64) error {
	if edgeLength <= 0 {
		return fmt.Errorf("edge length must be positive, got %v", edgeLength)
	}
	factor := edgeLength / p.EdgeLength()
	for i := range p.verts {
		p.verts[i] = p.verts[i].Scale(factor)
	}
	return nil
}

// Vertices returns a copy of the vertex positions.
func (p *Polyhedron) Vertices() []geometry.Vec3 {
	out := make([]geometry.Vec3, len(p.verts))
	copy(out, p.verts)
	return out
}

// Edges returns a copy of the edge list as vertex index pairs.
func (p *Polyhedron) Edges() [][2]int {
	out := make([][2]int, len(p.edges))
	copy(out, p.edges)
	return out
}

// Structure returns the vertex cloud as a point structure.
func (p *Polyhedron) Structure() *structure.Structure {
	return structure.New(p.Vertices())
}

// Jitter displaces every vertex by Gaussian noise of the given standard
// deviation, for coarse conformational sampling. A nil rng uses the
// shared global source.
func (p *Polyhedron) Jitter(sigma float64, rng *rand.Rand) {
	norm := rand.NormFloat64
	if rng != nil {
		norm = rng.NormFloat64
	}
	for i := range p.verts {
		p.verts[i].X += norm() * sigma
		p.verts[i].Y += norm() * sigma
		p.verts[i].Z += norm() * sigma
	}
}
