package pdb

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/tsawler/biobox/chem"
	"github.com/tsawler/biobox/geometry"
)

// Parser reads PDB records from an input stream. Malformed records are
// reported as warnings and skipped rather than aborting the parse.
type Parser struct {
	scanner  *bufio.Scanner
	line     int
	warnings []Warning
}

// NewParser creates a parser reading from r. Input is decoded as
// Latin-1, which leaves ASCII untouched and tolerates the legacy
// encoding found in older PDB header records.
func NewParser(r io.Reader) *Parser {
	decoded := transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	sc := bufio.NewScanner(decoded)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Parser{scanner: sc}
}

// ReadFile parses a PDB file from disk.
func ReadFile(path string) (*File, []Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return NewParser(f).Parse()
}

// Parse consumes the whole stream and returns the parsed file along
// with any warnings. A file without atom records yields ErrNoAtoms.
func (p *Parser) Parse() (*File, []Warning, error) {
	return p.parse(false)
}

// ParsePQR consumes a PQR stream, where the occupancy and temperature
// factor columns carry partial charge and radius instead.
func (p *Parser) ParsePQR() (*File, []Warning, error) {
	return p.parse(true)
}

func (p *Parser) parse(pqr bool) (*File, []Warning, error) {
	file := &File{}
	var titleParts []string

	// Coordinates of the model currently being read. Populated directly
	// into file.Atoms for the first model.
	var model []geometry.Vec3
	modelCount := 0

	for p.scanner.Scan() {
		p.line++
		line := p.scanner.Text()
		if len(line) < 6 {
			continue
		}
		record := line[:6]

		switch {
		case record == "ATOM  " || record == "HETATM":
			if modelCount > 1 {
				// Later models only contribute coordinates.
				v, err := parseCoords(line)
				if err != nil {
					p.warnf("skipping record: %v", err)
					continue
				}
				model = append(model, v)
				continue
			}
			atom, err := p.parseAtom(line, pqr)
			if err != nil {
				p.warnf("skipping record: %v", err)
				continue
			}
			file.Atoms = append(file.Atoms, atom)
			model = append(model, atom.Position())

		case record == "MODEL ":
			modelCount++
			if modelCount > 1 && len(model) > 0 {
				if err := file.appendModel(model); err != nil {
					return nil, p.warnings, err
				}
				model = nil
			}

		case record == "ENDMDL":
			// Coordinates are flushed on the next MODEL or at EOF.

		case record == "CRYST1":
			box, err := parseCryst1(line)
			if err != nil {
				p.warnf("bad CRYST1 record: %v", err)
				continue
			}
			file.Box = box

		case record == "TITLE ":
			titleParts = append(titleParts, strings.TrimSpace(line[6:]))
		}
	}
	if err := p.scanner.Err(); err != nil {
		return nil, p.warnings, fmt.Errorf("failed to read input: %w", err)
	}

	if len(file.Atoms) == 0 {
		return nil, p.warnings, ErrNoAtoms
	}

	file.Title = strings.Join(titleParts, " ")
	if modelCount <= 1 {
		// Single implicit model.
		file.Coords = [][]geometry.Vec3{model}
	} else if len(model) > 0 {
		if err := file.appendModel(model); err != nil {
			return nil, p.warnings, err
		}
	}

	return file, p.warnings, nil
}

// appendModel adds a completed coordinate set, enforcing that every
// model has the same atom count as the first.
func (f *File) appendModel(model []geometry.Vec3) error {
	if len(f.Coords) == 0 {
		f.Coords = append(f.Coords, model)
		return nil
	}
	if len(model) != len(f.Atoms) {
		return fmt.Errorf("model %d has %d atoms, expected %d",
			len(f.Coords)+1, len(model), len(f.Atoms))
	}
	f.Coords = append(f.Coords, model)
	return nil
}

func (p *Parser) warnf(format string, args ...interface{}) {
	p.warnings = append(p.warnings, Warning{
		Line:    p.line,
		Message: fmt.Sprintf(format, args...),
	})
}

// field extracts the trimmed substring of the fixed-column range
// [start, end) using 0-based indexing, tolerating short lines.
func field(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(line[start:end])
}

func parseFloat(line string, start, end int, what string) (float64, error) {
	s := field(line, start, end)
	if s == "" {
		return 0, fmt.Errorf("missing %s", what)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q", what, s)
	}
	return v, nil
}

// parseCoords extracts just the x/y/z columns of an atom record.
func parseCoords(line string) (geometry.Vec3, error) {
	x, err := parseFloat(line, 30, 38, "x coordinate")
	if err != nil {
		return geometry.Vec3{}, err
	}
	y, err := parseFloat(line, 38, 46, "y coordinate")
	if err != nil {
		return geometry.Vec3{}, err
	}
	z, err := parseFloat(line, 46, 54, "z coordinate")
	if err != nil {
		return geometry.Vec3{}, err
	}
	return geometry.Vec3{X: x, Y: y, Z: z}, nil
}

// parseAtom parses a full ATOM/HETATM record per the PDB 3.3 column
// layout. In PQR mode the occupancy/beta columns are read as
// whitespace-separated charge and radius instead.
func (p *Parser) parseAtom(line string, pqr bool) (Atom, error) {
	atom := Atom{Hetatm: line[:6] == "HETATM"}

	if serial, err := strconv.Atoi(field(line, 6, 11)); err == nil {
		atom.Serial = serial
	}
	atom.Name = field(line, 12, 16)
	if len(line) > 16 && line[16] != ' ' {
		atom.AltLoc = line[16]
	}
	atom.ResName = field(line, 17, 20)
	atom.Chain = field(line, 21, 22)
	if resSeq, err := strconv.Atoi(field(line, 22, 26)); err == nil {
		atom.ResSeq = resSeq
	}
	if len(line) > 26 && line[26] != ' ' {
		atom.ICode = line[26]
	}

	v, err := parseCoords(line)
	if err != nil {
		return Atom{}, err
	}
	atom.X, atom.Y, atom.Z = v.X, v.Y, v.Z

	if pqr {
		// PQR files relax the fixed columns after z: charge and radius
		// are the last two whitespace-separated fields.
		fields := strings.Fields(line[54:])
		if len(fields) < 2 {
			return Atom{}, fmt.Errorf("missing charge/radius fields")
		}
		if atom.Charge, err = strconv.ParseFloat(fields[0], 64); err != nil {
			return Atom{}, fmt.Errorf("bad charge %q", fields[0])
		}
		if atom.Radius, err = strconv.ParseFloat(fields[1], 64); err != nil {
			return Atom{}, fmt.Errorf("bad radius %q", fields[1])
		}
	} else {
		if occ, err := parseFloat(line, 54, 60, "occupancy"); err == nil {
			atom.Occupancy = occ
		}
		if beta, err := parseFloat(line, 60, 66, "temperature factor"); err == nil {
			atom.Beta = beta
		}
	}

	atom.Element = field(line, 76, 78)
	if atom.Element == "" {
		atom.Element = chem.GuessElement(atom.Name)
	}

	return atom, nil
}

// parseCryst1 parses a CRYST1 unit cell record.
func parseCryst1(line string) (*Box, error) {
	var box Box
	var err error
	if box.A, err = parseFloat(line, 6, 15, "cell edge a"); err != nil {
		return nil, err
	}
	if box.B, err = parseFloat(line, 15, 24, "cell edge b"); err != nil {
		return nil, err
	}
	if box.C, err = parseFloat(line, 24, 33, "cell edge c"); err != nil {
		return nil, err
	}
	if box.Alpha, err = parseFloat(line, 33, 40, "cell angle alpha"); err != nil {
		return nil, err
	}
	if box.Beta, err = parseFloat(line, 40, 47, "cell angle beta"); err != nil {
		return nil, err
	}
	if box.Gamma, err = parseFloat(line, 47, 54, "cell angle gamma"); err != nil {
		return nil, err
	}
	box.SpaceGroup = field(line, 55, 66)
	return &box, nil
}
