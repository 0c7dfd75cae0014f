// Package convex provides point-cloud models of simple convex solids:
// spheres, ellipsoids, cylinders, prisms, and cones.
//
// Each solid generates an even covering of its surface as a Structure,
// so solids compose with everything that operates on structures
// (assemblies, density fitting, neighbor searches). Solids also keep
// their defining parameters and local reference frame, giving exact
// analytic Contains, Volume, and SurfaceArea regardless of how the
// point cloud has been moved.
package convex

import (
	"fmt"
	"math"

	"github.com/tsawler/biobox/geometry"
	"github.com/tsawler/biobox/structure"
)

// goldenAngle is the angular step of the Fibonacci lattice.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// solid couples a surface point cloud with the rigid frame tracking
// needed for analytic inside tests. The frame maps local coordinates
// (solid axis along Z, centered on the local origin) to world space.
type solid struct {
	*structure.Structure
	frame  geometry.Mat3
	origin geometry.Vec3
}

func newSolid(points []geometry.Vec3) solid {
	return solid{
		Structure: structure.New(points),
		frame:     geometry.Identity(),
	}
}

// Translate shifts the solid, keeping the analytic frame in sync with
// the point cloud.
func (s *solid) Translate(delta geometry.Vec3) {
	s.Structure.Translate(delta)
	s.origin = s.origin.Add(delta)
}

// Rotate rotates the solid about the point cloud's centroid.
func (s *solid) Rotate(rot geometry.Mat3) {
	s.RotateAbout(rot, s.Structure.Center())
}

// RotateAbout rotates the solid about an arbitrary pivot.
func (s *solid) RotateAbout(rot geometry.Mat3, pivot geometry.Vec3) {
	s.Structure.RotateAbout(rot, pivot)
	s.origin = rot.MulVec(s.origin.Sub(pivot)).Add(pivot)
	s.frame = rot.Mul(s.frame)
}

// CenterToOrigin moves the solid so the point cloud's centroid sits at
// the origin.
func (s *solid) CenterToOrigin() {
	s.Translate(s.Structure.Center().Scale(-1))
}

// ApplyTransform applies a rotation followed by a translation, keeping
// the analytic frame in sync with the point cloud.
func (s *solid) ApplyTransform(rot geometry.Mat3, trans geometry.Vec3) {
	s.Structure.ApplyTransform(rot, trans)
	s.origin = rot.MulVec(s.origin).Add(trans)
	s.frame = rot.Mul(s.frame)
}

// AlignAxes rotates the solid so its principal axes coincide with the
// coordinate axes, longest axis on X, and moves the centroid to the
// origin.
func (s *solid) AlignAxes() error {
	axes, center, err := geometry.PrincipalAxes(s.XYZ())
	if err != nil {
		return fmt.Errorf("failed to compute principal axes: %w", err)
	}
	rot := axes.Transpose()
	s.ApplyTransform(rot, rot.MulVec(center).Scale(-1))
	return nil
}

// AlignTo superposes the solid onto the other structure's current
// conformation and returns the resulting RMSD.
func (s *solid) AlignTo(other *structure.Structure) (float64, error) {
	rot, trans, err := geometry.Kabsch(s.XYZ(), other.XYZ())
	if err != nil {
		return 0, fmt.Errorf("failed to superpose: %w", err)
	}
	s.ApplyTransform(rot, trans)
	return geometry.RMSD(s.XYZ(), other.XYZ())
}

// toLocal maps a world point into the solid's local frame.
func (s *solid) toLocal(p geometry.Vec3) geometry.Vec3 {
	return s.frame.Transpose().MulVec(p.Sub(s.origin))
}

// fibonacciSphere returns n points evenly spread on the unit sphere.
func fibonacciSphere(n int) []geometry.Vec3 {
	points := make([]geometry.Vec3, n)
	for i := range points {
		// z descends evenly through (-1, 1); longitude follows the
		// golden angle.
		z := 1 - (2*float64(i)+1)/float64(n)
		r := math.Sqrt(1 - z*z)
		theta := goldenAngle * float64(i)
		points[i] = geometry.Vec3{
			X: r * math.Cos(theta),
			Y: r * math.Sin(theta),
			Z: z,
		}
	}
	return points
}

// ringLayout splits a target point count into rings for lateral
// surfaces: perRing points per ring and the ring count needed to reach
// at least n points in total.
func ringLayout(n int, circumference, length float64) (perRing, rings int) {
	if length <= 0 {
		return n, 1
	}
	perRing = int(math.Round(math.Sqrt(float64(n) * circumference / length)))
	if perRing < 3 {
		perRing = 3
	}
	rings = (n + perRing - 1) / perRing
	if rings < 2 {
		rings = 2
	}
	return perRing, rings
}
