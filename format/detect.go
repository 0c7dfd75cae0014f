// Package format provides file format detection for the biobox library.
package format

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format represents a supported structure or density file format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDB indicates a Protein Data Bank text file.
	PDB
	// PQR indicates a PQR file (PDB with charge and radius columns).
	PQR
	// MmCIF indicates a macromolecular CIF file.
	MmCIF
	// GRO indicates a GROMACS coordinate file.
	GRO
	// DX indicates an OpenDX scalar map.
	DX
	// MRC indicates an MRC/CCP4 density map.
	MRC
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PDB:
		return "PDB"
	case PQR:
		return "PQR"
	case MmCIF:
		return "mmCIF"
	case GRO:
		return "GRO"
	case DX:
		return "DX"
	case MRC:
		return "MRC"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PDB:
		return ".pdb"
	case PQR:
		return ".pqr"
	case MmCIF:
		return ".cif"
	case GRO:
		return ".gro"
	case DX:
		return ".dx"
	case MRC:
		return ".mrc"
	default:
		return ""
	}
}

// IsDensity reports whether the format holds a scalar density map rather
// than atomic coordinates.
func (f Format) IsDensity() bool {
	return f == DX || f == MRC
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdb", ".ent":
		return PDB
	case ".pqr":
		return PQR
	case ".cif", ".mmcif":
		return MmCIF
	case ".gro":
		return GRO
	case ".dx":
		return DX
	case ".mrc", ".map", ".ccp4":
		return MRC
	default:
		return Unknown
	}
}

// pdbRecords are the record names whose presence at line start marks a
// PDB file.
var pdbRecords = [][]byte{
	[]byte("HEADER"), []byte("ATOM  "), []byte("HETATM"),
	[]byte("REMARK"), []byte("CRYST1"), []byte("MODEL "), []byte("TITLE "),
}

// DetectFromMagic checks leading bytes to determine format.
// This provides more reliable detection than extension-based detection.
// Returns Unknown if the format cannot be determined from content alone;
// in particular PDB and PQR share record structure and sniff as PDB.
func DetectFromMagic(data []byte) Format {
	if len(data) < 6 {
		return Unknown
	}

	// MRC/CCP4 magic: "MAP " stamp at byte offset 208.
	if len(data) >= 212 && bytes.Equal(data[208:212], []byte("MAP ")) {
		return MRC
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")

	// mmCIF files open with a data block heading or a comment line.
	if bytes.HasPrefix(trimmed, []byte("data_")) {
		return MmCIF
	}

	// OpenDX maps start with comment lines or an object declaration.
	if bytes.HasPrefix(trimmed, []byte("object ")) {
		return DX
	}
	if bytes.HasPrefix(trimmed, []byte("#")) {
		// Both DX and CIF use # comments; look for a DX object line.
		if bytes.Contains(data, []byte("\nobject ")) {
			return DX
		}
		if bytes.Contains(data, []byte("\ndata_")) {
			return MmCIF
		}
		return Unknown
	}

	for _, rec := range pdbRecords {
		if bytes.HasPrefix(trimmed, rec) {
			return PDB
		}
	}

	return Unknown
}
