package polyhedron

import (
	"fmt"
	"math"

	"github.com/tsawler/biobox/geometry"
	"github.com/tsawler/biobox/molecule"
	"github.com/tsawler/biobox/multimer"
)

// PlaceOnVertices builds a complex with one copy of the molecule on
// each vertex. Each copy is centered, its longest principal axis turned
// onto the outward vertex direction, and moved to the vertex position.
func (p *Polyhedron) PlaceOnVertices(m *molecule.Molecule) (*multimer.Multimer, error) {
	mols := make([]*molecule.Molecule, len(p.verts))
	for i, v := range p.verts {
		dir := v.Normalize()
		if v.Norm() == 0 {
			dir = geometry.Vec3{X: 1}
		}
		sub, err := orient(m, dir, v)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		mols[i] = sub
	}
	return multimer.FromMolecules(mols)
}

// PlaceOnEdges builds a complex with one copy of the molecule on each
// edge midpoint, its longest principal axis turned along the edge.
func (p *Polyhedron) PlaceOnEdges(m *molecule.Molecule) (*multimer.Multimer, error) {
	mols := make([]*molecule.Molecule, len(p.edges))
	for i, e := range p.edges {
		a, b := p.verts[e[0]], p.verts[e[1]]
		mid := a.Add(b).Scale(0.5)
		dir := b.Sub(a).Normalize()
		sub, err := orient(m, dir, mid)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		mols[i] = sub
	}
	return multimer.FromMolecules(mols)
}

// orient returns a copy of m centered at the origin, rotated so its
// longest principal axis points along dir, and translated to pos.
func orient(m *molecule.Molecule, dir, pos geometry.Vec3) (*molecule.Molecule, error) {
	if m == nil || m.NumPoints() == 0 {
		return nil, fmt.Errorf("empty molecule")
	}
	sub := m.Clone()
	if sub.NumPoints() > 1 {
		if err := sub.AlignAxes(); err != nil {
			return nil, err
		}
		sub.Rotate(rotationFromX(dir))
	} else {
		sub.Translate(sub.Center().Scale(-1))
	}
	sub.Translate(pos)
	return sub, nil
}

// rotationFromX returns a rotation taking the +X axis onto dir.
func rotationFromX(dir geometry.Vec3) geometry.Mat3 {
	x := geometry.Vec3{X: 1}
	axis := x.Cross(dir)
	dot := x.Dot(dir)
	if axis.Norm() < 1e-12 {
		if dot > 0 {
			return geometry.Identity()
		}
		return geometry.RotationY(math.Pi)
	}
	angle := math.Atan2(axis.Norm(), dot)
	return geometry.RotationAxis(axis.Normalize(), angle)
}
