package biobox

import (
	"fmt"
	"os"
	"strings"

	"github.com/tsawler/biobox/density"
	"github.com/tsawler/biobox/format"
	"github.com/tsawler/biobox/molecule"
	"github.com/tsawler/biobox/pdb"
)

// Format identifies a structure or density file format. It is an alias
// for format.Format; the constants below cover the supported kinds.
type Format = format.Format

// Re-exported format constants for use with Loader.Format.
const (
	FormatUnknown = format.Unknown
	FormatPDB     = format.PDB
	FormatPQR     = format.PQR
	FormatMmCIF   = format.MmCIF
	FormatDX      = format.DX
	FormatMRC     = format.MRC
)

// Loader provides a fluent interface for loading molecules, point
// clouds, and density maps from files. Each configuration method
// returns a new Loader instance, making it safe for concurrent use and
// allowing method chaining.
type Loader struct {
	// Source
	filename string
	format   Format

	// Configuration
	options loadOptions

	// Accumulated error (fail-fast)
	err error

	// Warnings accumulated during processing
	warnings []Warning
}

// Load points a Loader at a file. The format is detected from the file
// name, or from the leading bytes when the extension is unknown, unless
// Format is called explicitly.
//
// Example:
//
//	mol, warnings, err := biobox.Load("protein.pdb").Molecule()
func Load(filename string) *Loader {
	return &Loader{
		filename: filename,
		options:  defaultLoadOptions(),
	}
}

// clone creates a shallow copy of the Loader with a deep copy of
// options. This ensures immutability - each chain method returns a new
// instance.
func (l *Loader) clone() *Loader {
	return &Loader{
		filename: l.filename,
		format:   l.format,
		options:  l.options.clone(),
		err:      l.err,
		warnings: append([]Warning(nil), l.warnings...),
	}
}

// ============================================================================
// Configuration Methods (return new Loader instance)
// ============================================================================

// Format overrides format detection.
//
// Example:
//
//	mol, _, err := biobox.Load("weird.dat").Format(biobox.FormatPDB).Molecule()
func (l *Loader) Format(f Format) *Loader {
	newLd := l.clone()
	newLd.format = f
	return newLd
}

// Model selects one conformation of a multi-model file (1-indexed,
// matching PDB MODEL numbering).
//
// Example:
//
//	mol, _, err := biobox.Load("traj.pdb").Model(3).Molecule()
func (l *Loader) Model(n int) *Loader {
	newLd := l.clone()
	if n < 1 {
		newLd.err = fmt.Errorf("model %d out of range (models are 1-indexed)", n)
		return newLd
	}
	newLd.options.model = n
	return newLd
}

// Heavy drops hydrogen atoms from the loaded molecule.
//
// Example:
//
//	mol, _, err := biobox.Load("protein.pdb").Heavy().Molecule()
func (l *Loader) Heavy() *Loader {
	newLd := l.clone()
	newLd.options.heavyOnly = true
	return newLd
}

// Chains restricts the loaded molecule to the given chain identifiers.
// Multiple calls are cumulative.
//
// Example:
//
//	mol, _, err := biobox.Load("complex.pdb").Chains("A", "B").Molecule()
func (l *Loader) Chains(ids ...string) *Loader {
	newLd := l.clone()
	newLd.options.chains = append(newLd.options.chains, ids...)
	return newLd
}

// ============================================================================
// Terminal Operations (load the file and return results)
// ============================================================================

// Molecule loads the file as a molecule and applies the configured
// model, chain, and hydrogen filters.
//
// Returns the molecule, any warnings encountered during loading, and an
// error if loading failed. Warnings indicate non-fatal issues, such as
// malformed records that were skipped.
//
// Example:
//
//	mol, warnings, err := biobox.Load("protein.pdb").Heavy().Molecule()
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", biobox.FormatWarnings(warnings))
//	}
func (l *Loader) Molecule() (*Molecule, []Warning, error) {
	if l.err != nil {
		return nil, nil, l.err
	}

	kind, err := l.resolveFormat()
	if err != nil {
		return nil, nil, err
	}

	m, warnings, err := l.readMolecule(kind)
	allWarnings := append(append([]Warning(nil), l.warnings...), parseWarnings(warnings)...)
	if err != nil {
		return nil, allWarnings, err
	}

	if l.options.model > 0 {
		if err := m.SetCurrent(l.options.model - 1); err != nil {
			return nil, allWarnings, fmt.Errorf("model %d: %w", l.options.model, err)
		}
	}

	if len(l.options.chains) > 0 {
		query := "chain " + strings.Join(l.options.chains, " ")
		filtered, err := m.SelectSubset(query)
		if err != nil {
			return nil, allWarnings, fmt.Errorf("chain filter: %w", err)
		}
		if filtered.NumPoints() == 0 {
			allWarnings = append(allWarnings, Warning{
				Code:    WarningEmptySelection,
				Message: fmt.Sprintf("no atoms in chains %v", l.options.chains),
			})
		}
		m = filtered
	}

	if l.options.heavyOnly {
		filtered, err := m.SelectSubset("not hydrogen")
		if err != nil {
			return nil, allWarnings, fmt.Errorf("hydrogen filter: %w", err)
		}
		m = filtered
	}

	return m, allWarnings, nil
}

// Structure loads the file as a molecule and returns only its
// coordinates, with the same filters applied as Molecule.
//
// Example:
//
//	s, _, err := biobox.Load("protein.pdb").Heavy().Structure()
func (l *Loader) Structure() (*Structure, []Warning, error) {
	m, warnings, err := l.Molecule()
	if err != nil {
		return nil, warnings, err
	}
	return m.Structure, warnings, nil
}

// Density loads the file as a density map. Molecule-only options
// (Model, Heavy, Chains) are ignored.
//
// Example:
//
//	d, _, err := biobox.Load("map.mrc").Density()
func (l *Loader) Density() (*Density, []Warning, error) {
	if l.err != nil {
		return nil, nil, l.err
	}

	kind, err := l.resolveFormat()
	if err != nil {
		return nil, nil, err
	}

	var d *density.Density
	switch kind {
	case format.DX:
		d, err = density.ReadDXFile(l.filename)
	case format.MRC:
		d, err = density.ReadMRCFile(l.filename)
	default:
		return nil, nil, fmt.Errorf("%s is not a density map format", kind)
	}
	if err != nil {
		return nil, l.warnings, err
	}
	return d, l.warnings, nil
}

// ============================================================================
// Internal helpers
// ============================================================================

// resolveFormat returns the explicit format if set, otherwise detects
// it from the file name and, failing that, from the leading bytes.
func (l *Loader) resolveFormat() (Format, error) {
	if l.filename == "" {
		return format.Unknown, fmt.Errorf("no filename specified")
	}
	if l.format != format.Unknown {
		return l.format, nil
	}

	kind := format.Detect(l.filename)
	if kind != format.Unknown {
		return kind, nil
	}

	f, err := os.Open(l.filename)
	if err != nil {
		return format.Unknown, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := f.Read(head)
	kind = format.DetectFromMagic(head[:n])
	if kind == format.Unknown {
		return kind, fmt.Errorf("cannot determine format of %s", l.filename)
	}
	return kind, nil
}

// readMolecule parses the file with the reader for the given format.
func (l *Loader) readMolecule(kind Format) (*molecule.Molecule, []pdb.Warning, error) {
	f, err := os.Open(l.filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	switch kind {
	case format.PDB:
		return molecule.ReadPDB(f)
	case format.PQR:
		return molecule.ReadPQR(f)
	case format.MmCIF:
		return molecule.ReadCIF(f)
	default:
		return nil, nil, fmt.Errorf("%s is not a molecule format", kind)
	}
}
