// Package chem holds the small chemical knowledge base the library needs:
// atomic masses, van der Waals radii, residue naming, and heuristics for
// recovering an element symbol from a PDB atom name.
package chem

import "strings"

// atomic masses in Daltons, standard atomic weights.
var masses = map[string]float64{
	"H": 1.008, "D": 2.014, "C": 12.011, "N": 14.007, "O": 15.999,
	"F": 18.998, "NA": 22.990, "MG": 24.305, "P": 30.974, "S": 32.06,
	"CL": 35.45, "K": 39.098, "CA": 40.078, "MN": 54.938, "FE": 55.845,
	"CO": 58.933, "NI": 58.693, "CU": 63.546, "ZN": 65.38, "SE": 78.971,
	"BR": 79.904, "I": 126.904,
}

// van der Waals radii in Angstrom (Bondi set, common biomolecular subset).
var vdwRadii = map[string]float64{
	"H": 1.20, "C": 1.70, "N": 1.55, "O": 1.52, "F": 1.47,
	"NA": 2.27, "MG": 1.73, "P": 1.80, "S": 1.80, "CL": 1.75,
	"K": 2.75, "CA": 2.31, "MN": 2.05, "FE": 2.04, "CO": 2.00,
	"NI": 1.63, "CU": 1.40, "ZN": 1.39, "SE": 1.90, "BR": 1.85,
	"I": 1.98,
}

// residue three-letter to one-letter codes for the twenty standard
// amino acids.
var residueCodes = map[string]byte{
	"ALA": 'A', "ARG": 'R', "ASN": 'N', "ASP": 'D', "CYS": 'C',
	"GLN": 'Q', "GLU": 'E', "GLY": 'G', "HIS": 'H', "ILE": 'I',
	"LEU": 'L', "LYS": 'K', "MET": 'M', "PHE": 'F', "PRO": 'P',
	"SER": 'S', "THR": 'T', "TRP": 'W', "TYR": 'Y', "VAL": 'V',
}

// backboneAtoms are the protein backbone atom names.
var backboneAtoms = map[string]bool{
	"N": true, "CA": true, "C": true, "O": true, "OXT": true,
}

// waterResidues are the residue names commonly used for water.
var waterResidues = map[string]bool{
	"HOH": true, "WAT": true, "TIP": true, "TIP3": true, "SOL": true,
}

// Mass returns the atomic mass in Daltons for an element symbol.
// The second return value reports whether the element is known.
func Mass(element string) (float64, bool) {
	m, ok := masses[normalize(element)]
	return m, ok
}

// VdwRadius returns the van der Waals radius in Angstrom for an element
// symbol. The second return value reports whether the element is known.
func VdwRadius(element string) (float64, bool) {
	r, ok := vdwRadii[normalize(element)]
	return r, ok
}

// OneLetterCode returns the one-letter code for a three-letter residue
// name, or 'X' for unknown residues.
func OneLetterCode(resName string) byte {
	if c, ok := residueCodes[normalize(resName)]; ok {
		return c
	}
	return 'X'
}

// IsStandardResidue reports whether resName is one of the twenty
// standard amino acids.
func IsStandardResidue(resName string) bool {
	_, ok := residueCodes[normalize(resName)]
	return ok
}

// IsBackbone reports whether a protein atom name belongs to the backbone.
func IsBackbone(atomName string) bool {
	return backboneAtoms[normalize(atomName)]
}

// IsWater reports whether a residue name denotes water.
func IsWater(resName string) bool {
	return waterResidues[normalize(resName)]
}

// GuessElement recovers an element symbol from a PDB atom name. Atom
// names place two-letter elements (FE, ZN...) starting in column 13,
// while one-letter elements are indented; in practice files violate
// this, so the heuristic strips digits and tries the two-letter
// candidate before falling back to the first letter.
func GuessElement(atomName string) string {
	name := strings.TrimLeft(strings.TrimSpace(atomName), "0123456789")
	if name == "" {
		return ""
	}
	letters := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '\'' || r == '*' {
			return -1
		}
		return r
	}, name)
	if letters == "" {
		return ""
	}
	if len(letters) >= 2 {
		two := normalize(letters[:2])
		if _, ok := masses[two]; ok && !ambiguousTwoLetter(letters) {
			return two
		}
	}
	return normalize(letters[:1])
}

// ambiguousTwoLetter guards against reading "CA" (alpha carbon) or
// "CD" (delta carbon) as calcium/cadmium. Hydrogens like "HG" are
// mercury only in HETATM records, which callers must decide from
// context; here side-chain naming wins.
func ambiguousTwoLetter(name string) bool {
	switch normalize(name[:2]) {
	case "CA", "CB", "CD", "CE", "CG", "CZ", "CH",
		"HA", "HB", "HD", "HE", "HG", "HH", "HZ",
		"ND", "NE", "NH", "NZ", "OD", "OE", "OG", "OH",
		"SD", "SG":
		return true
	}
	return false
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
