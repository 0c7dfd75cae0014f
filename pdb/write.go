package pdb

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/tsawler/biobox/geometry"
)

// Writer emits PDB records with exact fixed-column layout.
type Writer struct {
	w   *bufio.Writer
	pqr bool
}

// NewWriter creates a PDB writer targeting w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// NewPQRWriter creates a writer that emits PQR records: charge and
// radius in place of occupancy and temperature factor.
func NewPQRWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w), pqr: true}
}

// WriteFile writes a parsed file to disk in PDB format. Multi-model
// files are wrapped in MODEL/ENDMDL records.
func WriteFile(path string, f *File) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	w := NewWriter(out)
	if err := w.WriteAll(f); err != nil {
		return err
	}
	return w.Flush()
}

// WriteAll writes the title, unit cell, and every model of f.
func (w *Writer) WriteAll(f *File) error {
	if f.Title != "" {
		if err := w.WriteTitle(f.Title); err != nil {
			return err
		}
	}
	if f.Box != nil {
		if err := w.WriteBox(f.Box); err != nil {
			return err
		}
	}

	coords := f.Coords
	if len(coords) == 0 {
		coords = [][]geometry.Vec3{nil}
	}
	multi := len(coords) > 1
	for i, model := range coords {
		if multi {
			if _, err := fmt.Fprintf(w.w, "MODEL     %4d\n", i+1); err != nil {
				return fmt.Errorf("failed to write MODEL record: %w", err)
			}
		}
		if err := w.WriteModel(f.Atoms, model); err != nil {
			return err
		}
		if multi {
			if _, err := fmt.Fprintln(w.w, "ENDMDL"); err != nil {
				return fmt.Errorf("failed to write ENDMDL record: %w", err)
			}
		}
	}
	if _, err := fmt.Fprintln(w.w, "END"); err != nil {
		return fmt.Errorf("failed to write END record: %w", err)
	}
	return nil
}

// WriteTitle writes a TITLE record, splitting long titles into
// continuation records.
func (w *Writer) WriteTitle(title string) error {
	const width = 70
	for i, cont := 0, 1; i < len(title); i, cont = i+width, cont+1 {
		end := i + width
		if end > len(title) {
			end = len(title)
		}
		var err error
		if cont == 1 {
			_, err = fmt.Fprintf(w.w, "TITLE     %s\n", title[i:end])
		} else {
			_, err = fmt.Fprintf(w.w, "TITLE   %2d %s\n", cont, title[i:end])
		}
		if err != nil {
			return fmt.Errorf("failed to write TITLE record: %w", err)
		}
	}
	return nil
}

// WriteBox writes a CRYST1 record.
func (w *Writer) WriteBox(b *Box) error {
	sg := b.SpaceGroup
	if sg == "" {
		sg = "P 1"
	}
	_, err := fmt.Fprintf(w.w, "CRYST1%9.3f%9.3f%9.3f%7.2f%7.2f%7.2f %-11s%4d\n",
		b.A, b.B, b.C, b.Alpha, b.Beta, b.Gamma, sg, 1)
	if err != nil {
		return fmt.Errorf("failed to write CRYST1 record: %w", err)
	}
	return nil
}

// WriteModel writes one coordinate set. Atom serials are renumbered
// sequentially and a TER record is emitted at each chain change. When
// coords is nil the per-atom X/Y/Z fields are used.
func (w *Writer) WriteModel(atoms []Atom, coords []geometry.Vec3) error {
	if coords != nil && len(coords) != len(atoms) {
		return fmt.Errorf("coordinate set has %d points, expected %d", len(coords), len(atoms))
	}

	serial := 0
	for i, atom := range atoms {
		pos := atom.Position()
		if coords != nil {
			pos = coords[i]
		}

		// TER between chains, only after non-HETATM records.
		if i > 0 && atoms[i-1].Chain != atom.Chain && !atoms[i-1].Hetatm {
			serial++
			prev := atoms[i-1]
			_, err := fmt.Fprintf(w.w, "TER   %5d      %3s %1s%4d%c\n",
				serial, prev.ResName, prev.Chain, prev.ResSeq, icodeChar(prev.ICode))
			if err != nil {
				return fmt.Errorf("failed to write TER record: %w", err)
			}
		}

		serial++
		if err := w.writeAtom(serial, atom, pos); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes any buffered output.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

func (w *Writer) writeAtom(serial int, atom Atom, pos geometry.Vec3) error {
	record := "ATOM  "
	if atom.Hetatm {
		record = "HETATM"
	}

	var tail string
	if w.pqr {
		tail = fmt.Sprintf("%8.4f%7.4f", atom.Charge, atom.Radius)
	} else {
		tail = fmt.Sprintf("%6.2f%6.2f          %2s", atom.Occupancy, atom.Beta, atom.Element)
	}

	_, err := fmt.Fprintf(w.w, "%s%5d %s%c%3s %1s%4d%c   %8.3f%8.3f%8.3f%s\n",
		record, serial, formatAtomName(atom), altLocChar(atom.AltLoc),
		atom.ResName, atom.Chain, atom.ResSeq, icodeChar(atom.ICode),
		pos.X, pos.Y, pos.Z, tail)
	if err != nil {
		return fmt.Errorf("failed to write atom record: %w", err)
	}
	return nil
}

// formatAtomName lays out the four-character atom name column. Names
// shorter than four characters start at column 14 unless the element
// symbol has two letters, in which case they start at column 13.
func formatAtomName(atom Atom) string {
	name := atom.Name
	if len(name) >= 4 {
		return name[:4]
	}
	if len(atom.Element) == 2 {
		return fmt.Sprintf("%-4s", name)
	}
	return fmt.Sprintf(" %-3s", name)
}

func altLocChar(b byte) byte {
	if b == 0 {
		return ' '
	}
	return b
}

func icodeChar(b byte) byte {
	if b == 0 {
		return ' '
	}
	return b
}
