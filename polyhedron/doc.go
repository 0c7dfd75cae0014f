// Package polyhedron provides regular-solid scaffolds, tetrahedron
// through icosahedron, and places copies of a molecule on their
// vertices or edges to build symmetric complexes.
package polyhedron
