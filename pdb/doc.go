// Package pdb implements reading and writing of Protein Data Bank
// coordinate files, including the PQR variant used by electrostatics
// tools.
//
// Parsing is line-oriented with fixed-column slicing per the PDB 3.3
// format description. Malformed atom records are skipped and reported
// as warnings rather than aborting the parse, since hand-edited and
// tool-generated PDB files routinely bend the format. Multi-model
// files (MODEL/ENDMDL) are parsed into parallel coordinate sets, with
// every model required to match the first model's atom count.
//
// Writing produces exact fixed-column records: atom serials are
// renumbered, TER records separate chains, and multi-model content is
// wrapped in MODEL/ENDMDL pairs.
package pdb
