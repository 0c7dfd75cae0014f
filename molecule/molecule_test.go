package molecule

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/tsawler/biobox/geometry"
)

const samplePDB = `TITLE     DIPEPTIDE
ATOM      1  N   ALA A   1       0.000   0.000   0.000  1.00 10.00           N
ATOM      2  CA  ALA A   1       1.458   0.000   0.000  1.00 10.00           C
ATOM      3  C   ALA A   1       2.009   1.420   0.000  1.00 10.00           C
ATOM      4  O   ALA A   1       1.251   2.390   0.000  1.00 10.00           O
ATOM      5  CB  ALA A   1       1.988  -0.773  -1.199  1.00 10.00           C
ATOM      6  N   GLY A   2       3.332   1.536   0.000  1.00 10.00           N
ATOM      7  CA  GLY A   2       3.970   2.840   0.000  1.00 10.00           C
ATOM      8  C   GLY A   2       5.480   2.700   0.000  1.00 10.00           C
ATOM      9  O   GLY A   2       6.050   1.610   0.000  1.00 10.00           O
HETATM   10  O   HOH B 101       8.000   8.000   8.000  1.00 30.00           O
END
`

func testMolecule(t *testing.T) *Molecule {
	t.Helper()
	m, warnings, err := ReadPDB(strings.NewReader(samplePDB))
	if err != nil {
		t.Fatalf("ReadPDB() error: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	return m
}

// ============================================================================
// Reading Tests
// ============================================================================

func TestReadPDB(t *testing.T) {
	m := testMolecule(t)
	if len(m.Atoms) != 10 || m.NumPoints() != 10 {
		t.Fatalf("atoms = %d, points = %d", len(m.Atoms), m.NumPoints())
	}
	if m.Title != "DIPEPTIDE" {
		t.Errorf("title = %q", m.Title)
	}
	// Structure coordinates mirror atom records.
	if m.XYZ()[1].X != 1.458 {
		t.Errorf("CA x = %v", m.XYZ()[1].X)
	}
}

// ============================================================================
// Measure Tests
// ============================================================================

func TestMass(t *testing.T) {
	m := testMolecule(t)
	mass, unknown := m.Mass()
	if len(unknown) != 0 {
		t.Fatalf("unknown elements: %v", unknown)
	}
	// Elements present: 2 N, 5 C, 3 O.
	want := 2*14.007 + 5*12.011 + 3*15.999
	if math.Abs(mass-want) > 1e-6 {
		t.Errorf("Mass() = %v, want %v", mass, want)
	}
}

func TestCenterOfMassWeighting(t *testing.T) {
	m := testMolecule(t)
	com := m.CenterOfMass()
	centroid := m.Center()
	// Both lie inside the bounding box but differ since masses differ.
	if com.Distance(centroid) == 0 {
		t.Error("CenterOfMass() identical to centroid despite unequal masses")
	}
	if !m.BBox().Contains(com) {
		t.Errorf("CenterOfMass() outside bbox: %+v", com)
	}
}

func TestAssignRadii(t *testing.T) {
	m := testMolecule(t)
	m.AssignRadii()
	if len(m.Radii) != len(m.Atoms) {
		t.Fatalf("radii length = %d", len(m.Radii))
	}
	// First atom is nitrogen.
	if m.Radii[0] != 1.55 {
		t.Errorf("N radius = %v, want 1.55", m.Radii[0])
	}
}

func TestChainsAndSequence(t *testing.T) {
	m := testMolecule(t)
	chains := m.Chains()
	if len(chains) != 2 || chains[0] != "A" || chains[1] != "B" {
		t.Errorf("Chains() = %v", chains)
	}
	if seq := m.Sequence("A"); seq != "AG" {
		t.Errorf("Sequence(A) = %q, want AG", seq)
	}
	if seq := m.Sequence("B"); seq != "" {
		t.Errorf("Sequence(B) = %q, want empty (water only)", seq)
	}
}

func TestGuessChains(t *testing.T) {
	input := `ATOM      1  CA  ALA A   1       0.000   0.000   0.000  1.00  0.00           C
ATOM      2  CA  GLY A   2       3.800   0.000   0.000  1.00  0.00           C
ATOM      3  CA  ALA A   1      10.000   0.000   0.000  1.00  0.00           C
ATOM      4  CA  GLY A   2      13.800   0.000   0.000  1.00  0.00           C
`
	m, _, err := ReadPDB(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadPDB() error: %v", err)
	}
	m.GuessChains()
	if m.Atoms[0].Chain != "A" || m.Atoms[1].Chain != "A" {
		t.Errorf("first chain = %q %q", m.Atoms[0].Chain, m.Atoms[1].Chain)
	}
	if m.Atoms[2].Chain != "B" || m.Atoms[3].Chain != "B" {
		t.Errorf("second chain = %q %q", m.Atoms[2].Chain, m.Atoms[3].Chain)
	}
}

// ============================================================================
// Subset and Writing Tests
// ============================================================================

func TestSubsetPreservesMetadata(t *testing.T) {
	m := testMolecule(t)
	sub, err := m.Subset([]int{1, 6})
	if err != nil {
		t.Fatalf("Subset() error: %v", err)
	}
	if len(sub.Atoms) != 2 || sub.NumPoints() != 2 {
		t.Fatalf("subset shape: %d atoms, %d points", len(sub.Atoms), sub.NumPoints())
	}
	if sub.Atoms[0].Name != "CA" || sub.Atoms[1].ResName != "GLY" {
		t.Errorf("subset atoms = %+v", sub.Atoms)
	}
}

func TestWriteReflectsMovedCoordinates(t *testing.T) {
	m := testMolecule(t)
	m.Translate(geometry.Vec3{X: 100})

	var buf bytes.Buffer
	if err := m.WriteCurrentPDB(&buf); err != nil {
		t.Fatalf("WriteCurrentPDB() error: %v", err)
	}
	if !strings.Contains(buf.String(), "100.000") {
		t.Error("written PDB does not reflect translated coordinates")
	}

	// Round trip.
	m2, _, err := ReadPDB(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("re-ReadPDB() error: %v", err)
	}
	if math.Abs(m2.XYZ()[0].X-100) > 1e-9 {
		t.Errorf("round-tripped x = %v, want 100", m2.XYZ()[0].X)
	}
}

func TestWritePQRRoundTrip(t *testing.T) {
	m := testMolecule(t)
	for i := range m.Atoms {
		m.Atoms[i].Charge = -0.5
		m.Atoms[i].Radius = 1.5
	}

	var buf bytes.Buffer
	if err := m.WritePQR(&buf); err != nil {
		t.Fatalf("WritePQR() error: %v", err)
	}

	m2, _, err := ReadPQR(&buf)
	if err != nil {
		t.Fatalf("ReadPQR() error: %v", err)
	}
	if m2.Atoms[0].Charge != -0.5 || m2.Atoms[0].Radius != 1.5 {
		t.Errorf("round-tripped charge/radius = %v/%v", m2.Atoms[0].Charge, m2.Atoms[0].Radius)
	}
}
