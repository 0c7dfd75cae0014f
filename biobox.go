// Package biobox provides a fluent API for loading, transforming, and
// writing macromolecular structures and density maps.
//
// Basic usage:
//
//	mol, warnings, err := biobox.Load("protein.pdb").Molecule()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", biobox.FormatWarnings(warnings))
//	}
//
// With options:
//
//	mol, _, err := biobox.Load("traj.pdb").
//	    Model(3).
//	    Heavy().
//	    Chains("A", "B").
//	    Molecule()
//
// The root package re-exports the main types of the subpackages, so
// most programs only import biobox. For advanced use cases the
// lower-level packages (pdb, cif, density, geometry, ...) are also
// available.
package biobox

import (
	"github.com/tsawler/biobox/assembly"
	"github.com/tsawler/biobox/convex"
	"github.com/tsawler/biobox/density"
	"github.com/tsawler/biobox/molecule"
	"github.com/tsawler/biobox/multimer"
	"github.com/tsawler/biobox/polyhedron"
	"github.com/tsawler/biobox/structure"
)

// The facade types are aliases, not wrappers: a biobox.Molecule is a
// molecule.Molecule, and values flow between the facade and the
// subpackages without conversion.
type (
	// Structure is an ensemble of conformations over one ordered set of
	// 3D points. See package structure.
	Structure = structure.Structure

	// Sphere, Ellipsoid, Cylinder, Prism, and Cone are point-cloud
	// solids with analytic containment tests. See package convex.
	Sphere    = convex.Sphere
	Ellipsoid = convex.Ellipsoid
	Cylinder  = convex.Cylinder
	Prism     = convex.Prism
	Cone      = convex.Cone

	// Density is a scalar field on a regular 3D grid. See package
	// density.
	Density = density.Density

	// Molecule couples a Structure with per-atom metadata. See package
	// molecule.
	Molecule = molecule.Molecule

	// Assembly is a rigid collection of labeled structures. See package
	// assembly.
	Assembly = assembly.Assembly

	// Polyhedron is a regular-solid scaffold. See package polyhedron.
	Polyhedron = polyhedron.Polyhedron

	// Multimer is an arrangement of molecular subunits. See package
	// multimer.
	Multimer = multimer.Multimer
)

// Constructor re-exports, so callers can stay on the facade.
var (
	NewStructure = structure.New
	NewEnsemble  = structure.NewEnsemble

	NewSphere    = convex.NewSphere
	NewEllipsoid = convex.NewEllipsoid
	NewCylinder  = convex.NewCylinder
	NewPrism     = convex.NewPrism
	NewCone      = convex.NewCone

	NewDensity  = density.New
	ReadDXFile  = density.ReadDXFile
	ReadMRCFile = density.ReadMRCFile

	OpenMolecule = molecule.Open

	NewAssembly      = assembly.New
	CircularAssembly = assembly.MakeCircular
	StackedAssembly  = assembly.MakeStacked

	NewPolyhedron = polyhedron.New

	NewMultimer      = multimer.FromMolecules
	CircularMultimer = multimer.MakeCircular
)

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	ico := biobox.Must(biobox.NewPolyhedron("icosahedron"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustLoad is a helper that wraps a call to a Loader terminal and
// panics if the error is non-nil. It discards warnings and returns just
// the value.
//
// Example:
//
//	mol := biobox.MustLoad(biobox.Load("protein.pdb").Molecule())
func MustLoad[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
