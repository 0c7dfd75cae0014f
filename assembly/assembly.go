package assembly

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/tsawler/biobox/geometry"
	"github.com/tsawler/biobox/pdb"
	"github.com/tsawler/biobox/structure"
)

// ErrDuplicateLabel is returned when a unit label is already in use.
var ErrDuplicateLabel = errors.New("duplicate unit label")

// Assembly is an ordered collection of labeled point clouds that moves
// as one rigid body.
type Assembly struct {
	labels []string
	units  map[string]*structure.Structure
}

// New creates an empty assembly.
func New() *Assembly {
	return &Assembly{units: make(map[string]*structure.Structure)}
}

// Add appends a unit under the given label. Labels must be unique.
func (a *Assembly) Add(label string, unit *structure.Structure) error {
	if unit == nil {
		return fmt.Errorf("unit %q is nil", label)
	}
	if _, ok := a.units[label]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateLabel, label)
	}
	a.labels = append(a.labels, label)
	a.units[label] = unit
	return nil
}

// Unit returns the unit stored under label.
func (a *Assembly) Unit(label string) (*structure.Structure, bool) {
	u, ok := a.units[label]
	return u, ok
}

// Len returns the number of units.
func (a *Assembly) Len() int {
	return len(a.labels)
}

// Labels returns the unit labels in insertion order.
func (a *Assembly) Labels() []string {
	out := make([]string, len(a.labels))
	copy(out, a.labels)
	return out
}

// AllXYZ returns the current coordinates of every unit concatenated in
// insertion order.
func (a *Assembly) AllXYZ() []geometry.Vec3 {
	var out []geometry.Vec3
	for _, label := range a.labels {
		out = append(out, a.units[label].XYZ()...)
	}
	return out
}

// Center returns the centroid over all points of all units.
func (a *Assembly) Center() geometry.Vec3 {
	return geometry.Centroid(a.AllXYZ())
}

// Translate moves every unit by delta.
func (a *Assembly) Translate(delta geometry.Vec3) {
	for _, label := range a.labels {
		a.units[label].Translate(delta)
	}
}

// Rotate rotates every unit about the origin.
func (a *Assembly) Rotate(rot geometry.Mat3) {
	for _, label := range a.labels {
		a.units[label].Rotate(rot)
	}
}

// RotateAbout rotates every unit about a pivot point.
func (a *Assembly) RotateAbout(rot geometry.Mat3, pivot geometry.Vec3) {
	for _, label := range a.labels {
		a.units[label].RotateAbout(rot, pivot)
	}
}

// MakeCircular arranges n copies of a template on a ring of the given
// radius in the XY plane. Each copy is rotated about Z so that all
// copies present the same face to the ring axis. Units are labeled by
// their ring position, "0" through "n-1".
func MakeCircular(template *structure.Structure, n int, radius float64) (*Assembly, error) {
	if err := checkTemplate(template, n); err != nil {
		return nil, err
	}

	a := New()
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		unit := template.Clone()
		unit.Translate(unit.Center().Scale(-1))
		unit.Rotate(geometry.RotationZ(angle))
		unit.Translate(geometry.Vec3{
			X: radius * math.Cos(angle),
			Y: radius * math.Sin(angle),
		})
		if err := a.Add(strconv.Itoa(i), unit); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// MakeStacked arranges n copies of a template along the Z axis with the
// given center-to-center spacing. Units are labeled "0" through "n-1".
func MakeStacked(template *structure.Structure, n int, spacing float64) (*Assembly, error) {
	if err := checkTemplate(template, n); err != nil {
		return nil, err
	}

	a := New()
	for i := 0; i < n; i++ {
		unit := template.Clone()
		target := geometry.Vec3{Z: float64(i) * spacing}
		unit.Translate(target.Sub(unit.Center()))
		if err := a.Add(strconv.Itoa(i), unit); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func checkTemplate(template *structure.Structure, n int) error {
	if n <= 0 {
		return fmt.Errorf("unit count must be positive, got %d", n)
	}
	if template == nil || template.NumPoints() == 0 {
		return fmt.Errorf("empty template")
	}
	return nil
}

// WritePDB writes the assembly as pseudo-atom records, one chain per
// unit. Points carry no chemistry, so every record is a CA pseudo-atom
// in its own UNK residue.
func (a *Assembly) WritePDB(w io.Writer) error {
	if a.Len() > len(pdb.ChainAlphabet) {
		return fmt.Errorf("%d units exceed the %d available chain identifiers",
			a.Len(), len(pdb.ChainAlphabet))
	}

	f := &pdb.File{}
	var coords []geometry.Vec3
	serial := 0
	for u, label := range a.labels {
		unit := a.units[label]
		chain := string(pdb.ChainAlphabet[u])
		for i, p := range unit.XYZ() {
			serial++
			f.Atoms = append(f.Atoms, pdb.Atom{
				Serial:    serial,
				Name:      "CA",
				ResName:   "UNK",
				Chain:     chain,
				ResSeq:    i + 1,
				X:         p.X,
				Y:         p.Y,
				Z:         p.Z,
				Occupancy: 1,
				Element:   "C",
			})
			coords = append(coords, p)
		}
	}
	f.Coords = [][]geometry.Vec3{coords}
	pw := pdb.NewWriter(w)
	if err := pw.WriteAll(f); err != nil {
		return err
	}
	return pw.Flush()
}
