// Package geometry provides the 3D math primitives used throughout the
// biobox library: vectors, rotation matrices, bounding boxes, and the
// rigid-body alignment routines (Kabsch superposition, principal axes)
// that the structure and molecule packages build on.
package geometry
