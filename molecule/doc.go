// Package molecule builds on the structure package to represent
// molecules read from PDB, PQR, and mmCIF files: a conformational
// ensemble plus per-atom metadata, a selection query language, and
// chemistry-aware measures such as molecular mass and the
// mass-weighted center.
package molecule
