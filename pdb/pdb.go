package pdb

import (
	"errors"
	"fmt"

	"github.com/tsawler/biobox/geometry"
)

// ErrNoAtoms is returned when a file contains no ATOM or HETATM records.
var ErrNoAtoms = errors.New("no atom records found")

// ChainAlphabet lists the chain identifiers usable in the one-character
// chain column, in assignment order.
const ChainAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Atom holds the metadata of one ATOM or HETATM record. Coordinates for
// the first model are stored here; additional models live in File.Coords.
type Atom struct {
	Serial    int
	Name      string
	AltLoc    byte
	ResName   string
	Chain     string
	ResSeq    int
	ICode     byte
	X, Y, Z   float64
	Occupancy float64
	Beta      float64
	Element   string
	Charge    float64 // populated by PQR files
	Radius    float64 // populated by PQR files
	Hetatm    bool
}

// Position returns the atom's first-model coordinates as a vector.
func (a Atom) Position() geometry.Vec3 {
	return geometry.Vec3{X: a.X, Y: a.Y, Z: a.Z}
}

// Box holds the CRYST1 unit cell: edge lengths in Angstrom and angles
// in degrees.
type Box struct {
	A, B, C             float64
	Alpha, Beta, Gamma  float64
	SpaceGroup          string
}

// File is the parsed content of a PDB or PQR file.
type File struct {
	Title string
	Atoms []Atom
	// Coords holds one coordinate set per model, each parallel to Atoms.
	// Coords[0] duplicates the per-atom X/Y/Z fields.
	Coords [][]geometry.Vec3
	Box    *Box
}

// Warning describes a non-fatal problem encountered while parsing,
// such as a malformed record that was skipped.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s", w.Line, w.Message)
	}
	return w.Message
}
