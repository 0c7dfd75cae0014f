// Package structure provides the core point-cloud representation shared
// by every shape in the library: an ensemble of conformations over one
// ordered set of 3D points.
//
// A Structure stores one or more coordinate sets (conformations) of
// identical length. One conformation is current at any time and is the
// target of geometric operations: rigid transforms, centering, axis
// alignment, and measures such as the radius of gyration, pairwise
// distance matrices, and cell-list neighbor searches. Higher-level
// types (molecules, convex solids, assemblies) embed or wrap Structure
// and inherit these operations.
package structure
