package molecule

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/tsawler/biobox/chem"
	"github.com/tsawler/biobox/cif"
	"github.com/tsawler/biobox/format"
	"github.com/tsawler/biobox/geometry"
	"github.com/tsawler/biobox/pdb"
	"github.com/tsawler/biobox/structure"
)

// Molecule couples a coordinate ensemble with per-atom metadata.
// Coordinates live in the embedded Structure; the X/Y/Z fields of
// Atoms are refreshed only when records are written out.
type Molecule struct {
	*structure.Structure
	Atoms []pdb.Atom
	Title string
	Box   *pdb.Box
}

// FromFile builds a molecule from a parsed coordinate file.
func FromFile(f *pdb.File) (*Molecule, error) {
	s, err := structure.NewEnsemble(f.Coords)
	if err != nil {
		return nil, fmt.Errorf("inconsistent coordinate sets: %w", err)
	}
	return &Molecule{
		Structure: s,
		Atoms:     f.Atoms,
		Title:     f.Title,
		Box:       f.Box,
	}, nil
}

// ReadPDB reads a molecule from a PDB stream.
func ReadPDB(r io.Reader) (*Molecule, []pdb.Warning, error) {
	f, warnings, err := pdb.NewParser(r).Parse()
	if err != nil {
		return nil, warnings, err
	}
	m, err := FromFile(f)
	return m, warnings, err
}

// ReadPQR reads a molecule from a PQR stream.
func ReadPQR(r io.Reader) (*Molecule, []pdb.Warning, error) {
	f, warnings, err := pdb.NewParser(r).ParsePQR()
	if err != nil {
		return nil, warnings, err
	}
	m, err := FromFile(f)
	return m, warnings, err
}

// ReadCIF reads a molecule from an mmCIF stream.
func ReadCIF(r io.Reader) (*Molecule, []pdb.Warning, error) {
	f, warnings, err := cif.Read(r)
	if err != nil {
		return nil, warnings, err
	}
	m, err := FromFile(f)
	return m, warnings, err
}

// Open reads a molecule from disk, detecting the format from the file
// name and, failing that, from the leading bytes.
func Open(path string) (*Molecule, []pdb.Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	kind := format.Detect(path)
	if kind == format.Unknown {
		head := make([]byte, 512)
		n, _ := f.Read(head)
		kind = format.DetectFromMagic(head[:n])
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, nil, fmt.Errorf("failed to rewind file: %w", err)
		}
	}

	switch kind {
	case format.PDB:
		return ReadPDB(f)
	case format.PQR:
		return ReadPQR(f)
	case format.MmCIF:
		return ReadCIF(f)
	default:
		return nil, nil, fmt.Errorf("unsupported molecule format %s for %s", kind, path)
	}
}

// File returns a pdb.File view of the molecule with atom coordinate
// fields refreshed from the structure, suitable for writing.
func (m *Molecule) File() *pdb.File {
	atoms := make([]pdb.Atom, len(m.Atoms))
	copy(atoms, m.Atoms)
	coords := make([][]geometry.Vec3, m.NumConformations())
	for i := range coords {
		c, _ := m.Conformation(i)
		coords[i] = c
	}
	if len(coords) > 0 {
		for i := range atoms {
			atoms[i].X = coords[0][i].X
			atoms[i].Y = coords[0][i].Y
			atoms[i].Z = coords[0][i].Z
		}
	}
	return &pdb.File{Title: m.Title, Atoms: atoms, Coords: coords, Box: m.Box}
}

// WritePDB writes all conformations to w in PDB format.
func (m *Molecule) WritePDB(w io.Writer) error {
	pw := pdb.NewWriter(w)
	if err := pw.WriteAll(m.File()); err != nil {
		return err
	}
	return pw.Flush()
}

// WriteCurrentPDB writes only the current conformation to w.
func (m *Molecule) WriteCurrentPDB(w io.Writer) error {
	pw := pdb.NewWriter(w)
	if err := pw.WriteModel(m.Atoms, m.XYZ()); err != nil {
		return err
	}
	return pw.Flush()
}

// WritePQR writes the current conformation to w in PQR format.
func (m *Molecule) WritePQR(w io.Writer) error {
	pw := pdb.NewPQRWriter(w)
	if err := pw.WriteModel(m.Atoms, m.XYZ()); err != nil {
		return err
	}
	return pw.Flush()
}

// Clone returns a deep copy of the molecule.
func (m *Molecule) Clone() *Molecule {
	atoms := make([]pdb.Atom, len(m.Atoms))
	copy(atoms, m.Atoms)
	var box *pdb.Box
	if m.Box != nil {
		b := *m.Box
		box = &b
	}
	return &Molecule{
		Structure: m.Structure.Clone(),
		Atoms:     atoms,
		Title:     m.Title,
		Box:       box,
	}
}

// Subset returns a new molecule restricted to the given atom indices,
// preserving all conformations.
func (m *Molecule) Subset(indices []int) (*Molecule, error) {
	s, err := m.Structure.Subset(indices)
	if err != nil {
		return nil, err
	}
	atoms := make([]pdb.Atom, len(indices))
	for i, idx := range indices {
		atoms[i] = m.Atoms[idx]
	}
	return &Molecule{Structure: s, Atoms: atoms, Title: m.Title, Box: m.Box}, nil
}

// Mass returns the molecular mass in Daltons. Atoms whose element is
// unknown to the mass table are skipped and reported by name in the
// returned slice.
func (m *Molecule) Mass() (float64, []string) {
	var total float64
	var unknown []string
	for _, a := range m.Atoms {
		mass, ok := chem.Mass(a.Element)
		if !ok {
			unknown = append(unknown, a.Name)
			continue
		}
		total += mass
	}
	return total, unknown
}

// CenterOfMass returns the mass-weighted center of the current
// conformation. Unknown elements contribute zero weight; if no atom
// has a known mass the plain centroid is returned.
func (m *Molecule) CenterOfMass() geometry.Vec3 {
	points := m.XYZ()
	var com geometry.Vec3
	var total float64
	for i, a := range m.Atoms {
		mass, ok := chem.Mass(a.Element)
		if !ok {
			continue
		}
		com = com.Add(points[i].Scale(mass))
		total += mass
	}
	if total == 0 {
		return m.Center()
	}
	return com.Scale(1 / total)
}

// AssignRadii fills the structure's per-point radii from the van der
// Waals table, defaulting unknown elements to the carbon radius.
func (m *Molecule) AssignRadii() {
	radii := make([]float64, len(m.Atoms))
	fallback, _ := chem.VdwRadius("C")
	for i, a := range m.Atoms {
		if r, ok := chem.VdwRadius(a.Element); ok {
			radii[i] = r
		} else {
			radii[i] = fallback
		}
	}
	m.Radii = radii
}

// Chains returns the distinct chain identifiers in order of first
// appearance.
func (m *Molecule) Chains() []string {
	seen := make(map[string]bool)
	var chains []string
	for _, a := range m.Atoms {
		if !seen[a.Chain] {
			seen[a.Chain] = true
			chains = append(chains, a.Chain)
		}
	}
	return chains
}

// GuessChains assigns fresh chain identifiers wherever the residue
// numbering jumps backwards or by more than one residue gap, the usual
// sign of concatenated chains in files written without chain IDs.
func (m *Molecule) GuessChains() {
	if len(m.Atoms) == 0 {
		return
	}
	chain := 0
	prev := m.Atoms[0].ResSeq
	for i := range m.Atoms {
		cur := m.Atoms[i].ResSeq
		if cur < prev || cur > prev+1 {
			if chain < len(pdb.ChainAlphabet)-1 {
				chain++
			}
		}
		m.Atoms[i].Chain = string(pdb.ChainAlphabet[chain])
		prev = cur
	}
}

// Sequence returns the one-letter residue sequence of a chain, taking
// each residue once in order of residue number.
func (m *Molecule) Sequence(chain string) string {
	type key struct {
		seq   int
		icode byte
	}
	names := make(map[key]string)
	var order []key
	for _, a := range m.Atoms {
		if a.Chain != chain || a.Hetatm {
			continue
		}
		k := key{a.ResSeq, a.ICode}
		if _, ok := names[k]; !ok {
			names[k] = a.ResName
			order = append(order, k)
		}
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].seq != order[j].seq {
			return order[i].seq < order[j].seq
		}
		return order[i].icode < order[j].icode
	})

	var sb strings.Builder
	for _, k := range order {
		sb.WriteByte(chem.OneLetterCode(names[k]))
	}
	return sb.String()
}
