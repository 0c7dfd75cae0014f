package multimer

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/tsawler/biobox/chem"
	"github.com/tsawler/biobox/geometry"
	"github.com/tsawler/biobox/molecule"
	"github.com/tsawler/biobox/pdb"
	"github.com/tsawler/biobox/structure"
)

// ============================================================================
// Test Helpers
// ============================================================================

// carbonMol builds a molecule of CA pseudo-atoms at the given points.
func carbonMol(t *testing.T, points []geometry.Vec3) *molecule.Molecule {
	t.Helper()
	atoms := make([]pdb.Atom, len(points))
	for i := range atoms {
		atoms[i] = pdb.Atom{
			Serial:    i + 1,
			Name:      "CA",
			ResName:   "ALA",
			Chain:     "X",
			ResSeq:    i + 1,
			Occupancy: 1,
			Element:   "C",
		}
	}
	return &molecule.Molecule{Structure: structure.New(points), Atoms: atoms}
}

// ============================================================================
// Construction Tests
// ============================================================================

func TestFromMolecules(t *testing.T) {
	a := carbonMol(t, []geometry.Vec3{{X: 1}})
	b := carbonMol(t, []geometry.Vec3{{X: 5}, {X: 6}})

	mm, err := FromMolecules([]*molecule.Molecule{a, b})
	if err != nil {
		t.Fatalf("FromMolecules() error: %v", err)
	}
	if mm.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", mm.Len())
	}

	for i, want := range []string{"A", "B"} {
		sub, err := mm.Subunit(i)
		if err != nil {
			t.Fatalf("Subunit(%d) error: %v", i, err)
		}
		for _, atom := range sub.Atoms {
			if atom.Chain != want {
				t.Errorf("subunit %d chain = %q, want %q", i, atom.Chain, want)
			}
		}
	}

	// Subunits are clones: the input molecules keep their chains.
	if a.Atoms[0].Chain != "X" {
		t.Errorf("input molecule chain changed to %q", a.Atoms[0].Chain)
	}
}

func TestFromMoleculesErrors(t *testing.T) {
	if _, err := FromMolecules(nil); err == nil {
		t.Error("FromMolecules(nil) error = nil, want error")
	}

	empty := &molecule.Molecule{Structure: structure.New(nil)}
	if _, err := FromMolecules([]*molecule.Molecule{empty}); err == nil {
		t.Error("empty subunit error = nil, want error")
	}

	many := make([]*molecule.Molecule, len(pdb.ChainAlphabet)+1)
	for i := range many {
		many[i] = carbonMol(t, []geometry.Vec3{{X: float64(i)}})
	}
	if _, err := FromMolecules(many); !errors.Is(err, ErrTooManySubunits) {
		t.Errorf("oversized input error = %v, want ErrTooManySubunits", err)
	}
}

func TestSubunitOutOfRange(t *testing.T) {
	mm, err := FromMolecules([]*molecule.Molecule{carbonMol(t, []geometry.Vec3{{X: 1}})})
	if err != nil {
		t.Fatalf("FromMolecules() error: %v", err)
	}
	if _, err := mm.Subunit(1); err == nil {
		t.Error("Subunit(1) error = nil, want error")
	}
	if _, err := mm.Subunit(-1); err == nil {
		t.Error("Subunit(-1) error = nil, want error")
	}
}

// ============================================================================
// Ring Arrangement Tests
// ============================================================================

func TestMakeCircular(t *testing.T) {
	// Template with radial extent 2 in the XY plane.
	tmpl := carbonMol(t, []geometry.Vec3{{X: 2}, {X: -2}})

	mm, err := MakeCircular(tmpl, 3, 1)
	if err != nil {
		t.Fatalf("MakeCircular() error: %v", err)
	}
	if mm.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", mm.Len())
	}

	// Subunit centers sit on a ring of radius extent+offset = 3.
	for i := 0; i < 3; i++ {
		sub, err := mm.Subunit(i)
		if err != nil {
			t.Fatalf("Subunit(%d) error: %v", i, err)
		}
		angle := 2 * math.Pi * float64(i) / 3
		want := geometry.Vec3{X: 3 * math.Cos(angle), Y: 3 * math.Sin(angle)}
		if c := sub.Center(); c.Distance(want) > 1e-9 {
			t.Errorf("subunit %d center = %+v, want %+v", i, c, want)
		}
	}

	// Chain identifiers are distinct across subunits.
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		sub, _ := mm.Subunit(i)
		if seen[sub.Atoms[0].Chain] {
			t.Errorf("chain %q assigned twice", sub.Atoms[0].Chain)
		}
		seen[sub.Atoms[0].Chain] = true
	}
}

func TestMakeCircularErrors(t *testing.T) {
	tmpl := carbonMol(t, []geometry.Vec3{{X: 1}})

	if _, err := MakeCircular(tmpl, 0, 1); err == nil {
		t.Error("MakeCircular(n=0) error = nil, want error")
	}
	if _, err := MakeCircular(nil, 3, 1); err == nil {
		t.Error("MakeCircular(nil) error = nil, want error")
	}
	if _, err := MakeCircular(tmpl, len(pdb.ChainAlphabet)+1, 1); !errors.Is(err, ErrTooManySubunits) {
		t.Error("oversized ring error, want ErrTooManySubunits")
	}
}

// ============================================================================
// Measure Tests
// ============================================================================

func TestInterfaceContacts(t *testing.T) {
	a := carbonMol(t, []geometry.Vec3{{X: 0}, {X: 10}})
	b := carbonMol(t, []geometry.Vec3{{X: 1}})

	mm, err := FromMolecules([]*molecule.Molecule{a, b})
	if err != nil {
		t.Fatalf("FromMolecules() error: %v", err)
	}

	pairs, err := mm.InterfaceContacts(0, 1, 1.5)
	if err != nil {
		t.Fatalf("InterfaceContacts() error: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("got %d contacts, want 1", len(pairs))
	}
	if pairs[0].I != 0 || pairs[0].J != 0 {
		t.Errorf("contact = (%d, %d), want (0, 0)", pairs[0].I, pairs[0].J)
	}
	if math.Abs(pairs[0].Distance-1) > 1e-12 {
		t.Errorf("contact distance = %v, want 1", pairs[0].Distance)
	}

	if _, err := mm.InterfaceContacts(0, 5, 1.5); err == nil {
		t.Error("bad subunit index error = nil, want error")
	}
}

func TestTotalMass(t *testing.T) {
	a := carbonMol(t, []geometry.Vec3{{X: 0}, {X: 1}})
	b := carbonMol(t, []geometry.Vec3{{X: 5}})
	b.Atoms[0].Element = "ZZ"
	b.Atoms[0].Name = "ZZ1"

	mm, err := FromMolecules([]*molecule.Molecule{a, b})
	if err != nil {
		t.Fatalf("FromMolecules() error: %v", err)
	}

	carbon, ok := chem.Mass("C")
	if !ok {
		t.Fatal("no mass for carbon")
	}
	total, unknown := mm.TotalMass()
	if math.Abs(total-2*carbon) > 1e-9 {
		t.Errorf("TotalMass() = %v, want %v", total, 2*carbon)
	}
	if len(unknown) != 1 || unknown[0] != "ZZ1" {
		t.Errorf("unknown atoms = %v, want [ZZ1]", unknown)
	}
}

func TestRGyr(t *testing.T) {
	a := carbonMol(t, []geometry.Vec3{{X: 1}})
	b := carbonMol(t, []geometry.Vec3{{X: -1}})

	mm, err := FromMolecules([]*molecule.Molecule{a, b})
	if err != nil {
		t.Fatalf("FromMolecules() error: %v", err)
	}
	rg, err := mm.RGyr()
	if err != nil {
		t.Fatalf("RGyr() error: %v", err)
	}
	if math.Abs(rg-1) > 1e-12 {
		t.Errorf("RGyr() = %v, want 1", rg)
	}
}

// ============================================================================
// Output Tests
// ============================================================================

func TestWritePDB(t *testing.T) {
	a := carbonMol(t, []geometry.Vec3{{X: 0}, {X: 1}})
	b := carbonMol(t, []geometry.Vec3{{X: 5}})

	mm, err := FromMolecules([]*molecule.Molecule{a, b})
	if err != nil {
		t.Fatalf("FromMolecules() error: %v", err)
	}

	var buf bytes.Buffer
	if err := mm.WritePDB(&buf); err != nil {
		t.Fatalf("WritePDB() error: %v", err)
	}

	f, warnings, err := pdb.NewParser(bytes.NewReader(buf.Bytes())).Parse()
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(f.Atoms) != 3 {
		t.Fatalf("wrote %d atoms, want 3", len(f.Atoms))
	}
	if len(f.Coords) != 1 {
		t.Errorf("wrote %d models, want 1", len(f.Coords))
	}
	for i, atom := range f.Atoms {
		if atom.Serial != i+1 {
			t.Errorf("atom %d serial = %d, want %d", i, atom.Serial, i+1)
		}
	}
	if f.Atoms[0].Chain != "A" || f.Atoms[2].Chain != "B" {
		t.Errorf("chains = %q/%q, want A/B", f.Atoms[0].Chain, f.Atoms[2].Chain)
	}
}
