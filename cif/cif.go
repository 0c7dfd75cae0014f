// Package cif implements a reader for macromolecular CIF (mmCIF)
// coordinate files.
//
// Only the subset of CIF 1.1 syntax needed for coordinate exchange is
// supported: one data block, key-value items, and loop_ tables with
// quoted, unquoted, and semicolon-delimited values. The atom_site
// loop is mapped onto the same Atom representation the pdb package
// uses, so molecules read from either format behave identically
// downstream.
package cif

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tsawler/biobox/chem"
	"github.com/tsawler/biobox/geometry"
	"github.com/tsawler/biobox/pdb"
)

// ErrNoAtomSite is returned when a file lacks an atom_site loop.
var ErrNoAtomSite = errors.New("no atom_site loop found")

// ReadFile parses an mmCIF file from disk.
func ReadFile(path string) (*pdb.File, []pdb.Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses an mmCIF stream and extracts the atom_site loop.
// Malformed loop rows are skipped and reported as warnings.
func Read(r io.Reader) (*pdb.File, []pdb.Warning, error) {
	lx := newLexer(r)

	var (
		file     = &pdb.File{}
		warnings []pdb.Warning
		found    bool
	)

	for {
		t, err := lx.next()
		if err != nil {
			return nil, warnings, err
		}
		switch t.kind {
		case tokenEOF:
			if !found {
				return nil, warnings, ErrNoAtomSite
			}
			if len(file.Atoms) == 0 {
				return nil, warnings, pdb.ErrNoAtoms
			}
			return file, warnings, nil

		case tokenDataBlock:
			if file.Title == "" {
				file.Title = t.text
			}

		case tokenLoop:
			tags, first, err := lx.loopHeader()
			if err != nil {
				return nil, warnings, err
			}
			if len(tags) > 0 && strings.HasPrefix(strings.ToLower(tags[0]), "_atom_site.") {
				found = true
				w, err := readAtomSite(lx, tags, first, file)
				warnings = append(warnings, w...)
				if err != nil {
					return nil, warnings, err
				}
			} else if err := lx.skipLoop(first); err != nil {
				return nil, warnings, err
			}
		}
	}
}

// loopHeader consumes the tag list of a loop_ and returns it along
// with the first body token.
func (lx *lexer) loopHeader() ([]string, token, error) {
	var tags []string
	for {
		t, err := lx.next()
		if err != nil {
			return nil, token{}, err
		}
		if t.kind != tokenTag {
			return tags, t, nil
		}
		tags = append(tags, t.text)
	}
}

// skipLoop discards loop body values, starting from the already-read
// first token, until a non-value token is reached. That token is
// pushed back for the caller.
func (lx *lexer) skipLoop(first token) error {
	t := first
	for t.kind == tokenValue {
		var err error
		if t, err = lx.next(); err != nil {
			return err
		}
	}
	lx.pending = append([]token{t}, lx.pending...)
	return nil
}

// atom_site column names recognized, auth_* preferred over label_*.
type columnMap struct {
	group, serial, name, altLoc, resName, chain  int
	resSeq, iCode, x, y, z, occ, beta, elem, mdl int
}

func mapColumns(tags []string) columnMap {
	cm := columnMap{
		group: -1, serial: -1, name: -1, altLoc: -1, resName: -1, chain: -1,
		resSeq: -1, iCode: -1, x: -1, y: -1, z: -1, occ: -1, beta: -1,
		elem: -1, mdl: -1,
	}
	set := func(dst *int, i int, preferred bool) {
		if *dst == -1 || preferred {
			*dst = i
		}
	}
	for i, tag := range tags {
		name := strings.ToLower(strings.TrimPrefix(tag, "_atom_site."))
		switch name {
		case "group_pdb":
			cm.group = i
		case "id":
			cm.serial = i
		case "auth_atom_id":
			set(&cm.name, i, true)
		case "label_atom_id":
			set(&cm.name, i, false)
		case "label_alt_id":
			cm.altLoc = i
		case "auth_comp_id":
			set(&cm.resName, i, true)
		case "label_comp_id":
			set(&cm.resName, i, false)
		case "auth_asym_id":
			set(&cm.chain, i, true)
		case "label_asym_id":
			set(&cm.chain, i, false)
		case "auth_seq_id":
			set(&cm.resSeq, i, true)
		case "label_seq_id":
			set(&cm.resSeq, i, false)
		case "pdbx_pdb_ins_code":
			cm.iCode = i
		case "cartn_x":
			cm.x = i
		case "cartn_y":
			cm.y = i
		case "cartn_z":
			cm.z = i
		case "occupancy":
			cm.occ = i
		case "b_iso_or_equiv":
			cm.beta = i
		case "type_symbol":
			cm.elem = i
		case "pdbx_pdb_model_num":
			cm.mdl = i
		}
	}
	return cm
}

// readAtomSite consumes the atom_site loop body row by row.
func readAtomSite(lx *lexer, tags []string, first token, file *pdb.File) ([]pdb.Warning, error) {
	cm := mapColumns(tags)
	if cm.x == -1 || cm.y == -1 || cm.z == -1 {
		return nil, fmt.Errorf("atom_site loop lacks Cartn_x/y/z columns")
	}

	var warnings []pdb.Warning
	row := make([]token, 0, len(tags))
	t := first

	var (
		curModel string
		coords   []geometry.Vec3
		nModels  int
	)
	flush := func() error {
		if len(coords) == 0 {
			return nil
		}
		nModels++
		if nModels > 1 && len(coords) != len(file.Atoms) {
			return fmt.Errorf("model %d has %d atoms, expected %d", nModels, len(coords), len(file.Atoms))
		}
		file.Coords = append(file.Coords, coords)
		coords = nil
		return nil
	}

	for t.kind == tokenValue {
		row = append(row, t)
		if len(row) == len(tags) {
			atom, model, err := rowToAtom(row, cm)
			if err != nil {
				warnings = append(warnings, pdb.Warning{
					Line:    row[0].line,
					Message: fmt.Sprintf("skipping atom_site row: %v", err),
				})
			} else {
				if model != curModel {
					if err := flush(); err != nil {
						return warnings, err
					}
					curModel = model
				}
				if nModels == 0 {
					file.Atoms = append(file.Atoms, atom)
				}
				coords = append(coords, atom.Position())
			}
			row = row[:0]
		}
		var err error
		if t, err = lx.next(); err != nil {
			return warnings, err
		}
	}
	lx.pending = append([]token{t}, lx.pending...)

	if len(row) != 0 {
		warnings = append(warnings, pdb.Warning{
			Line:    row[0].line,
			Message: fmt.Sprintf("discarding %d trailing values in atom_site loop", len(row)),
		})
	}
	if err := flush(); err != nil {
		return warnings, err
	}
	return warnings, nil
}

// rowToAtom converts one loop row. The "." and "?" placeholders map to
// zero values.
func rowToAtom(row []token, cm columnMap) (pdb.Atom, string, error) {
	get := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		s := row[i].text
		if s == "." || s == "?" {
			return ""
		}
		return s
	}

	var atom pdb.Atom
	atom.Hetatm = strings.EqualFold(get(cm.group), "HETATM")
	if s := get(cm.serial); s != "" {
		atom.Serial, _ = strconv.Atoi(s)
	}
	atom.Name = get(cm.name)
	if s := get(cm.altLoc); s != "" {
		atom.AltLoc = s[0]
	}
	atom.ResName = get(cm.resName)
	atom.Chain = get(cm.chain)
	if s := get(cm.resSeq); s != "" {
		atom.ResSeq, _ = strconv.Atoi(s)
	}
	if s := get(cm.iCode); s != "" {
		atom.ICode = s[0]
	}

	var err error
	if atom.X, err = strconv.ParseFloat(get(cm.x), 64); err != nil {
		return pdb.Atom{}, "", fmt.Errorf("bad Cartn_x %q", get(cm.x))
	}
	if atom.Y, err = strconv.ParseFloat(get(cm.y), 64); err != nil {
		return pdb.Atom{}, "", fmt.Errorf("bad Cartn_y %q", get(cm.y))
	}
	if atom.Z, err = strconv.ParseFloat(get(cm.z), 64); err != nil {
		return pdb.Atom{}, "", fmt.Errorf("bad Cartn_z %q", get(cm.z))
	}

	if s := get(cm.occ); s != "" {
		atom.Occupancy, _ = strconv.ParseFloat(s, 64)
	}
	if s := get(cm.beta); s != "" {
		atom.Beta, _ = strconv.ParseFloat(s, 64)
	}
	atom.Element = strings.ToUpper(get(cm.elem))
	if atom.Element == "" {
		atom.Element = chem.GuessElement(atom.Name)
	}

	return atom, get(cm.mdl), nil
}
