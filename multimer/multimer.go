package multimer

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/tsawler/biobox/geometry"
	"github.com/tsawler/biobox/molecule"
	"github.com/tsawler/biobox/pdb"
	"github.com/tsawler/biobox/structure"
)

// ErrTooManySubunits is returned when an arrangement needs more chain
// identifiers than the PDB chain column can hold.
var ErrTooManySubunits = errors.New("too many subunits for available chain identifiers")

// Multimer is an ordered arrangement of molecular subunits. Each
// subunit keeps its own atom metadata; chain identifiers are assigned
// per subunit in construction order.
type Multimer struct {
	subunits []*molecule.Molecule
}

// FromMolecules builds a multimer from existing molecules. The input
// molecules are cloned and their chains renamed A, B, C and so on, one
// identifier per subunit.
func FromMolecules(mols []*molecule.Molecule) (*Multimer, error) {
	if len(mols) == 0 {
		return nil, fmt.Errorf("no subunits given")
	}
	if len(mols) > len(pdb.ChainAlphabet) {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManySubunits,
			len(mols), len(pdb.ChainAlphabet))
	}

	mm := &Multimer{subunits: make([]*molecule.Molecule, len(mols))}
	for i, m := range mols {
		if m == nil || m.NumPoints() == 0 {
			return nil, fmt.Errorf("subunit %d is empty", i)
		}
		sub := m.Clone()
		setChain(sub, string(pdb.ChainAlphabet[i]))
		mm.subunits[i] = sub
	}
	return mm, nil
}

// MakeCircular arranges n copies of a template on a ring about the Z
// axis. The ring radius is the template's largest radial extent in the
// XY plane plus radiusOffset, so subunits start in contact for a zero
// offset and separate as the offset grows.
func MakeCircular(template *molecule.Molecule, n int, radiusOffset float64) (*Multimer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("subunit count must be positive, got %d", n)
	}
	if n > len(pdb.ChainAlphabet) {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManySubunits, n, len(pdb.ChainAlphabet))
	}
	if template == nil || template.NumPoints() == 0 {
		return nil, fmt.Errorf("empty template")
	}

	center := template.Center()
	radius := radiusOffset
	for _, p := range template.XYZ() {
		r := math.Hypot(p.X-center.X, p.Y-center.Y)
		if r+radiusOffset > radius {
			radius = r + radiusOffset
		}
	}

	mols := make([]*molecule.Molecule, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		sub := template.Clone()
		sub.Translate(sub.Center().Scale(-1))
		sub.Rotate(geometry.RotationZ(angle))
		sub.Translate(geometry.Vec3{
			X: radius * math.Cos(angle),
			Y: radius * math.Sin(angle),
		})
		mols[i] = sub
	}
	return FromMolecules(mols)
}

func setChain(m *molecule.Molecule, chain string) {
	for i := range m.Atoms {
		m.Atoms[i].Chain = chain
	}
}

// Len returns the number of subunits.
func (mm *Multimer) Len() int {
	return len(mm.subunits)
}

// Subunit returns the i-th subunit.
func (mm *Multimer) Subunit(i int) (*molecule.Molecule, error) {
	if i < 0 || i >= len(mm.subunits) {
		return nil, fmt.Errorf("subunit index %d out of range [0, %d)", i, len(mm.subunits))
	}
	return mm.subunits[i], nil
}

// AllXYZ returns the current coordinates of every subunit concatenated
// in order.
func (mm *Multimer) AllXYZ() []geometry.Vec3 {
	var out []geometry.Vec3
	for _, sub := range mm.subunits {
		out = append(out, sub.XYZ()...)
	}
	return out
}

// InterfaceContacts returns all atom pairs between subunits i and j
// closer than cutoff. Pair indices refer to atoms within each subunit.
func (mm *Multimer) InterfaceContacts(i, j int, cutoff float64) ([]structure.Pair, error) {
	a, err := mm.Subunit(i)
	if err != nil {
		return nil, err
	}
	b, err := mm.Subunit(j)
	if err != nil {
		return nil, err
	}
	return structure.CrossNeighborPairs(a.XYZ(), b.XYZ(), cutoff)
}

// TotalMass returns the summed mass of all subunits in Daltons, plus
// the names of atoms skipped because their element is unknown.
func (mm *Multimer) TotalMass() (float64, []string) {
	var total float64
	var unknown []string
	for _, sub := range mm.subunits {
		m, u := sub.Mass()
		total += m
		unknown = append(unknown, u...)
	}
	return total, unknown
}

// RGyr returns the radius of gyration over all atoms of all subunits.
func (mm *Multimer) RGyr() (float64, error) {
	points := mm.AllXYZ()
	if len(points) == 0 {
		return 0, fmt.Errorf("no atoms")
	}
	center := geometry.Centroid(points)
	var sum float64
	for _, p := range points {
		d := p.Sub(center)
		sum += d.Dot(d)
	}
	return math.Sqrt(sum / float64(len(points))), nil
}

// WritePDB writes the whole multimer as a single model, one chain per
// subunit, with atom serials renumbered across the file.
func (mm *Multimer) WritePDB(w io.Writer) error {
	var atoms []pdb.Atom
	var coords []geometry.Vec3
	for _, sub := range mm.subunits {
		atoms = append(atoms, sub.File().Atoms...)
		coords = append(coords, sub.XYZ()...)
	}

	pw := pdb.NewWriter(w)
	if err := pw.WriteModel(atoms, coords); err != nil {
		return err
	}
	return pw.Flush()
}
