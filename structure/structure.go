package structure

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tsawler/biobox/geometry"
)

// ErrEmptyStructure is returned by operations that are undefined on a
// structure with no points.
var ErrEmptyStructure = errors.New("structure has no points")

// Structure is an ensemble of conformations over one set of points.
// Every conformation holds the same number of points in the same
// order; one conformation is current and is the target of geometric
// operations unless stated otherwise.
type Structure struct {
	coords  [][]geometry.Vec3
	current int

	// Radii are optional per-point radii (e.g. van der Waals),
	// shared by all conformations. Nil when unset.
	Radii []float64

	// Properties holds arbitrary named per-structure values.
	Properties map[string]float64
}

// New creates a structure with a single conformation.
func New(points []geometry.Vec3) *Structure {
	return &Structure{coords: [][]geometry.Vec3{points}}
}

// NewEnsemble creates a structure from multiple conformations, which
// must all have the same point count.
func NewEnsemble(conformations [][]geometry.Vec3) (*Structure, error) {
	if len(conformations) == 0 {
		return nil, fmt.Errorf("no conformations given")
	}
	n := len(conformations[0])
	for i, c := range conformations[1:] {
		if len(c) != n {
			return nil, fmt.Errorf("conformation %d has %d points, expected %d", i+2, len(c), n)
		}
	}
	return &Structure{coords: conformations}, nil
}

// NumPoints returns the number of points per conformation.
func (s *Structure) NumPoints() int {
	if len(s.coords) == 0 {
		return 0
	}
	return len(s.coords[0])
}

// NumConformations returns the number of stored conformations.
func (s *Structure) NumConformations() int {
	return len(s.coords)
}

// Current returns the index of the current conformation.
func (s *Structure) Current() int {
	return s.current
}

// SetCurrent selects the conformation subsequent operations act on.
func (s *Structure) SetCurrent(i int) error {
	if i < 0 || i >= len(s.coords) {
		return fmt.Errorf("conformation %d out of range [0, %d)", i, len(s.coords))
	}
	s.current = i
	return nil
}

// XYZ returns the current conformation's coordinates without copying.
// Mutating the returned slice mutates the structure.
func (s *Structure) XYZ() []geometry.Vec3 {
	return s.coords[s.current]
}

// Conformation returns the coordinates of conformation i without
// copying.
func (s *Structure) Conformation(i int) ([]geometry.Vec3, error) {
	if i < 0 || i >= len(s.coords) {
		return nil, fmt.Errorf("conformation %d out of range [0, %d)", i, len(s.coords))
	}
	return s.coords[i], nil
}

// CopyXYZ returns a copy of the current conformation's coordinates.
func (s *Structure) CopyXYZ() []geometry.Vec3 {
	out := make([]geometry.Vec3, len(s.coords[s.current]))
	copy(out, s.coords[s.current])
	return out
}

// AddConformation appends a coordinate set, which must match the
// existing point count.
func (s *Structure) AddConformation(points []geometry.Vec3) error {
	if len(s.coords) > 0 && len(points) != s.NumPoints() {
		return fmt.Errorf("conformation has %d points, expected %d", len(points), s.NumPoints())
	}
	s.coords = append(s.coords, points)
	return nil
}

// Clone returns a deep copy of the structure.
func (s *Structure) Clone() *Structure {
	out := &Structure{current: s.current}
	out.coords = make([][]geometry.Vec3, len(s.coords))
	for i, c := range s.coords {
		out.coords[i] = make([]geometry.Vec3, len(c))
		copy(out.coords[i], c)
	}
	if s.Radii != nil {
		out.Radii = make([]float64, len(s.Radii))
		copy(out.Radii, s.Radii)
	}
	if s.Properties != nil {
		out.Properties = make(map[string]float64, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = v
		}
	}
	return out
}

// Subset returns a new structure restricted to the given point
// indices, preserving all conformations.
func (s *Structure) Subset(indices []int) (*Structure, error) {
	n := s.NumPoints()
	for _, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("point index %d out of range [0, %d)", idx, n)
		}
	}
	out := &Structure{current: s.current}
	out.coords = make([][]geometry.Vec3, len(s.coords))
	for i, c := range s.coords {
		sel := make([]geometry.Vec3, len(indices))
		for j, idx := range indices {
			sel[j] = c[idx]
		}
		out.coords[i] = sel
	}
	if s.Radii != nil {
		out.Radii = make([]float64, len(indices))
		for j, idx := range indices {
			out.Radii[j] = s.Radii[idx]
		}
	}
	if s.Properties != nil {
		out.Properties = make(map[string]float64, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = v
		}
	}
	return out, nil
}

// Center returns the centroid of the current conformation.
func (s *Structure) Center() geometry.Vec3 {
	return geometry.Centroid(s.XYZ())
}

// BBox returns the bounding box of the current conformation.
func (s *Structure) BBox() geometry.BBox {
	return geometry.NewBBox(s.XYZ())
}

// Size returns the extent of the current conformation along each axis.
func (s *Structure) Size() geometry.Vec3 {
	return s.BBox().Size()
}

// Translate shifts the current conformation by delta.
func (s *Structure) Translate(delta geometry.Vec3) {
	points := s.XYZ()
	for i := range points {
		points[i] = points[i].Add(delta)
	}
}

// TranslateAll shifts every conformation by delta.
func (s *Structure) TranslateAll(delta geometry.Vec3) {
	for _, c := range s.coords {
		for i := range c {
			c[i] = c[i].Add(delta)
		}
	}
}

// CenterToOrigin moves the current conformation's centroid to the
// origin.
func (s *Structure) CenterToOrigin() {
	s.Translate(s.Center().Scale(-1))
}

// Rotate applies a rotation to the current conformation about its
// centroid.
func (s *Structure) Rotate(rot geometry.Mat3) {
	s.RotateAbout(rot, s.Center())
}

// RotateAbout applies a rotation to the current conformation about an
// arbitrary pivot point.
func (s *Structure) RotateAbout(rot geometry.Mat3, pivot geometry.Vec3) {
	points := s.XYZ()
	for i := range points {
		points[i] = rot.MulVec(points[i].Sub(pivot)).Add(pivot)
	}
}

// ApplyTransform applies the rigid transform p -> rot*p + trans to the
// current conformation.
func (s *Structure) ApplyTransform(rot geometry.Mat3, trans geometry.Vec3) {
	points := s.XYZ()
	for i := range points {
		points[i] = rot.MulVec(points[i]).Add(trans)
	}
}

// RadiusOfGyration returns the radius of gyration of the current
// conformation, with all points weighted equally.
func (s *Structure) RadiusOfGyration() (float64, error) {
	points := s.XYZ()
	if len(points) == 0 {
		return 0, ErrEmptyStructure
	}
	c := geometry.Centroid(points)
	var sum float64
	for _, p := range points {
		d := p.Sub(c)
		sum += d.Dot(d)
	}
	return math.Sqrt(sum / float64(len(points))), nil
}

// DistanceMatrix returns the symmetric matrix of pairwise distances
// between points of the current conformation.
func (s *Structure) DistanceMatrix() (*mat.SymDense, error) {
	points := s.XYZ()
	if len(points) == 0 {
		return nil, ErrEmptyStructure
	}
	d := mat.NewSymDense(len(points), nil)
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			d.SetSym(i, j, points[i].Distance(points[j]))
		}
	}
	return d, nil
}

// AlignAxes rotates the current conformation so its principal axes
// coincide with the coordinate axes, longest axis on X, and moves the
// centroid to the origin.
func (s *Structure) AlignAxes() error {
	axes, center, err := geometry.PrincipalAxes(s.XYZ())
	if err != nil {
		return fmt.Errorf("failed to compute principal axes: %w", err)
	}
	rot := axes.Transpose()
	points := s.XYZ()
	for i := range points {
		points[i] = rot.MulVec(points[i].Sub(center))
	}
	return nil
}

// RMSDFrom returns the raw RMSD between the current conformations of
// two structures, without superposition.
func (s *Structure) RMSDFrom(other *Structure) (float64, error) {
	return geometry.RMSD(s.XYZ(), other.XYZ())
}

// AlignTo superposes the current conformation onto the other
// structure's current conformation and returns the resulting RMSD.
func (s *Structure) AlignTo(other *Structure) (float64, error) {
	rot, trans, err := geometry.Kabsch(s.XYZ(), other.XYZ())
	if err != nil {
		return 0, fmt.Errorf("failed to superpose: %w", err)
	}
	s.ApplyTransform(rot, trans)
	return geometry.RMSD(s.XYZ(), other.XYZ())
}

// RMSDTrajectory returns the superposed RMSD of every conformation
// against conformation 0.
func (s *Structure) RMSDTrajectory() ([]float64, error) {
	if s.NumPoints() == 0 {
		return nil, ErrEmptyStructure
	}
	ref := s.coords[0]
	out := make([]float64, len(s.coords))
	for i, c := range s.coords[1:] {
		rmsd, err := geometry.SuperposedRMSD(c, ref)
		if err != nil {
			return nil, fmt.Errorf("conformation %d: %w", i+1, err)
		}
		out[i+1] = rmsd
	}
	return out, nil
}
