// Package density handles scalar fields sampled on regular orthogonal
// 3D grids, such as electron density maps from cryo-EM or electrostatic
// potential maps.
//
// Maps are read from OpenDX text files and MRC/CCP4 binary files and
// written back as OpenDX. The Density type offers summary statistics,
// isosurface thresholding into point clouds, automatic threshold
// selection from a target volume or molecular mass, and grayscale slice
// rendering to PNG or TIFF.
//
// Only orthogonal cells are supported; skewed maps yield ErrSkewedCell.
package density
