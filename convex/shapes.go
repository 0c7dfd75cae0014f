package convex

import (
	"fmt"
	"math"

	"github.com/tsawler/biobox/geometry"
)

// Sphere is a spherical surface point cloud.
type Sphere struct {
	solid
	Radius float64
}

// NewSphere creates a sphere of the given radius sampled with n
// surface points on a Fibonacci lattice.
func NewSphere(radius float64, n int) (*Sphere, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("radius must be positive, got %v", radius)
	}
	if n < 4 {
		return nil, fmt.Errorf("need at least 4 surface points, got %d", n)
	}
	points := fibonacciSphere(n)
	for i := range points {
		points[i] = points[i].Scale(radius)
	}
	return &Sphere{solid: newSolid(points), Radius: radius}, nil
}

// Contains reports whether a world point lies inside the sphere.
func (s *Sphere) Contains(p geometry.Vec3) bool {
	return s.toLocal(p).Norm() <= s.Radius
}

// Volume returns the analytic volume.
func (s *Sphere) Volume() float64 {
	return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
}

// SurfaceArea returns the analytic surface area.
func (s *Sphere) SurfaceArea() float64 {
	return 4 * math.Pi * s.Radius * s.Radius
}

// Ellipsoid is an ellipsoidal surface point cloud with semi-axes A, B,
// C along the local X, Y, Z axes.
type Ellipsoid struct {
	solid
	A, B, C float64
}

// NewEllipsoid creates an ellipsoid with the given semi-axes sampled
// with n surface points.
func NewEllipsoid(a, b, c float64, n int) (*Ellipsoid, error) {
	if a <= 0 || b <= 0 || c <= 0 {
		return nil, fmt.Errorf("semi-axes must be positive, got %v, %v, %v", a, b, c)
	}
	if n < 4 {
		return nil, fmt.Errorf("need at least 4 surface points, got %d", n)
	}
	points := fibonacciSphere(n)
	for i := range points {
		points[i] = geometry.Vec3{X: points[i].X * a, Y: points[i].Y * b, Z: points[i].Z * c}
	}
	return &Ellipsoid{solid: newSolid(points), A: a, B: b, C: c}, nil
}

// Contains reports whether a world point lies inside the ellipsoid.
func (e *Ellipsoid) Contains(p geometry.Vec3) bool {
	l := e.toLocal(p)
	x, y, z := l.X/e.A, l.Y/e.B, l.Z/e.C
	return x*x+y*y+z*z <= 1
}

// Volume returns the analytic volume.
func (e *Ellipsoid) Volume() float64 {
	return 4.0 / 3.0 * math.Pi * e.A * e.B * e.C
}

// SurfaceArea returns the Thomsen approximation of the surface area,
// accurate to about 1% for biologically plausible axis ratios.
func (e *Ellipsoid) SurfaceArea() float64 {
	const p = 1.6075
	ap, bp, cp := math.Pow(e.A, p), math.Pow(e.B, p), math.Pow(e.C, p)
	return 4 * math.Pi * math.Pow((ap*bp+ap*cp+bp*cp)/3, 1/p)
}

// Cylinder is the lateral surface of a cylinder, axis along local Z,
// centered on the local origin.
type Cylinder struct {
	solid
	Radius float64
	Length float64
}

// NewCylinder creates a cylinder sampled with at least n lateral
// surface points arranged in rings.
func NewCylinder(radius, length float64, n int) (*Cylinder, error) {
	if radius <= 0 || length <= 0 {
		return nil, fmt.Errorf("radius and length must be positive, got %v, %v", radius, length)
	}
	if n < 6 {
		return nil, fmt.Errorf("need at least 6 surface points, got %d", n)
	}

	perRing, rings := ringLayout(n, 2*math.Pi*radius, length)
	points := make([]geometry.Vec3, 0, perRing*rings)
	for ring := 0; ring < rings; ring++ {
		z := -length/2 + length*float64(ring)/float64(rings-1)
		// Stagger alternate rings by half a step.
		offset := float64(ring%2) * math.Pi / float64(perRing)
		for k := 0; k < perRing; k++ {
			theta := 2*math.Pi*float64(k)/float64(perRing) + offset
			points = append(points, geometry.Vec3{
				X: radius * math.Cos(theta),
				Y: radius * math.Sin(theta),
				Z: z,
			})
		}
	}
	return &Cylinder{solid: newSolid(points), Radius: radius, Length: length}, nil
}

// Contains reports whether a world point lies inside the cylinder.
func (c *Cylinder) Contains(p geometry.Vec3) bool {
	l := c.toLocal(p)
	if math.Abs(l.Z) > c.Length/2 {
		return false
	}
	return math.Hypot(l.X, l.Y) <= c.Radius
}

// Volume returns the analytic volume.
func (c *Cylinder) Volume() float64 {
	return math.Pi * c.Radius * c.Radius * c.Length
}

// SurfaceArea returns the analytic surface area including both caps.
func (c *Cylinder) SurfaceArea() float64 {
	return 2*math.Pi*c.Radius*c.Length + 2*math.Pi*c.Radius*c.Radius
}

// Prism is the lateral surface of a regular right prism, axis along
// local Z, centered on the local origin. Sides is the number of
// polygon edges and Radius the circumradius of the cross-section.
type Prism struct {
	solid
	Sides  int
	Radius float64
	Length float64
}

// NewPrism creates a regular prism sampled with at least n lateral
// surface points.
func NewPrism(sides int, radius, length float64, n int) (*Prism, error) {
	if sides < 3 {
		return nil, fmt.Errorf("need at least 3 sides, got %d", sides)
	}
	if radius <= 0 || length <= 0 {
		return nil, fmt.Errorf("radius and length must be positive, got %v, %v", radius, length)
	}
	if n < 2*sides {
		return nil, fmt.Errorf("need at least %d surface points for %d sides, got %d", 2*sides, sides, n)
	}

	perimeter := 2 * float64(sides) * radius * math.Sin(math.Pi/float64(sides))
	perRing, rings := ringLayout(n, perimeter, length)
	points := make([]geometry.Vec3, 0, perRing*rings)
	for ring := 0; ring < rings; ring++ {
		z := -length/2 + length*float64(ring)/float64(rings-1)
		for k := 0; k < perRing; k++ {
			theta := 2 * math.Pi * float64(k) / float64(perRing)
			r := polygonRadius(sides, radius, theta)
			points = append(points, geometry.Vec3{
				X: r * math.Cos(theta),
				Y: r * math.Sin(theta),
				Z: z,
			})
		}
	}
	return &Prism{solid: newSolid(points), Sides: sides, Radius: radius, Length: length}, nil
}

// polygonRadius returns the boundary distance of a regular polygon
// (circumradius r, m sides) from its center at polar angle theta.
func polygonRadius(m int, r, theta float64) float64 {
	sector := 2 * math.Pi / float64(m)
	local := math.Mod(theta, sector)
	if local < 0 {
		local += sector
	}
	return r * math.Cos(sector/2) / math.Cos(local-sector/2)
}

// Contains reports whether a world point lies inside the prism.
func (p *Prism) Contains(v geometry.Vec3) bool {
	l := p.toLocal(v)
	if math.Abs(l.Z) > p.Length/2 {
		return false
	}
	rho := math.Hypot(l.X, l.Y)
	if rho == 0 {
		return true
	}
	theta := math.Atan2(l.Y, l.X)
	return rho <= polygonRadius(p.Sides, p.Radius, theta)
}

// Volume returns the analytic volume.
func (p *Prism) Volume() float64 {
	m := float64(p.Sides)
	area := 0.5 * m * p.Radius * p.Radius * math.Sin(2*math.Pi/m)
	return area * p.Length
}

// SurfaceArea returns the analytic surface area including both caps.
func (p *Prism) SurfaceArea() float64 {
	m := float64(p.Sides)
	area := 0.5 * m * p.Radius * p.Radius * math.Sin(2*math.Pi/m)
	perimeter := 2 * m * p.Radius * math.Sin(math.Pi/m)
	return 2*area + perimeter*p.Length
}

// Cone is a right circular cone, base of the given radius on the local
// z=0 plane and apex at local z=Height.
type Cone struct {
	solid
	Radius float64
	Height float64
}

// NewCone creates a cone with at least n points spiraling up the
// lateral surface.
func NewCone(radius, height float64, n int) (*Cone, error) {
	if radius <= 0 || height <= 0 {
		return nil, fmt.Errorf("radius and height must be positive, got %v, %v", radius, height)
	}
	if n < 4 {
		return nil, fmt.Errorf("need at least 4 surface points, got %d", n)
	}

	points := make([]geometry.Vec3, n)
	for i := range points {
		// Climb the surface with area-uniform spacing: the fraction of
		// lateral area below height z grows as 1-(1-z/h)^2.
		t := 1 - math.Sqrt(1-(float64(i)+0.5)/float64(n))
		theta := goldenAngle * float64(i)
		r := radius * (1 - t)
		points[i] = geometry.Vec3{
			X: r * math.Cos(theta),
			Y: r * math.Sin(theta),
			Z: height * t,
		}
	}
	return &Cone{solid: newSolid(points), Radius: radius, Height: height}, nil
}

// Contains reports whether a world point lies inside the cone.
func (c *Cone) Contains(p geometry.Vec3) bool {
	l := c.toLocal(p)
	if l.Z < 0 || l.Z > c.Height {
		return false
	}
	return math.Hypot(l.X, l.Y) <= c.Radius*(1-l.Z/c.Height)
}

// Volume returns the analytic volume.
func (c *Cone) Volume() float64 {
	return math.Pi * c.Radius * c.Radius * c.Height / 3
}

// SurfaceArea returns the analytic surface area including the base.
func (c *Cone) SurfaceArea() float64 {
	slant := math.Sqrt(c.Radius*c.Radius + c.Height*c.Height)
	return math.Pi*c.Radius*slant + math.Pi*c.Radius*c.Radius
}
