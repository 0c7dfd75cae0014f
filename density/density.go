package density

import (
	"errors"
	"fmt"
	"math"

	"github.com/tsawler/biobox/geometry"
	"github.com/tsawler/biobox/structure"
)

// proteinVolPerDalton is the average protein volume in cubic Angstrom
// per Dalton of mass.
const proteinVolPerDalton = 1.21

var (
	// ErrSkewedCell is returned for maps whose axes are not orthogonal.
	ErrSkewedCell = errors.New("non-orthogonal map cell not supported")
	// ErrUnknownMapFormat is returned when a density file cannot be
	// recognized.
	ErrUnknownMapFormat = errors.New("unknown density map format")
)

// Density is a scalar field sampled on a regular orthogonal 3D grid.
// Data is stored with the Z index varying fastest:
// Data[(i*NY+j)*NZ+k] holds the value at grid point (i, j, k).
type Density struct {
	NX, NY, NZ int
	// Origin is the world position of grid point (0, 0, 0).
	Origin geometry.Vec3
	// Delta is the voxel edge length along each axis.
	Delta geometry.Vec3
	Data  []float32
}

// New creates an empty map with the given dimensions.
func New(nx, ny, nz int, origin, delta geometry.Vec3) (*Density, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %dx%dx%d", nx, ny, nz)
	}
	if delta.X <= 0 || delta.Y <= 0 || delta.Z <= 0 {
		return nil, fmt.Errorf("voxel size must be positive, got %+v", delta)
	}
	return &Density{
		NX: nx, NY: ny, NZ: nz,
		Origin: origin,
		Delta:  delta,
		Data:   make([]float32, nx*ny*nz),
	}, nil
}

// validate checks that dimensions and data length agree.
func (d *Density) validate() error {
	if d.NX <= 0 || d.NY <= 0 || d.NZ <= 0 {
		return fmt.Errorf("bad dimensions %dx%dx%d", d.NX, d.NY, d.NZ)
	}
	if len(d.Data) != d.NX*d.NY*d.NZ {
		return fmt.Errorf("data length %d does not match %dx%dx%d grid",
			len(d.Data), d.NX, d.NY, d.NZ)
	}
	return nil
}

// At returns the value at grid point (i, j, k).
func (d *Density) At(i, j, k int) float32 {
	return d.Data[(i*d.NY+j)*d.NZ+k]
}

// Set stores a value at grid point (i, j, k).
func (d *Density) Set(i, j, k int, v float32) {
	d.Data[(i*d.NY+j)*d.NZ+k] = v
}

// VoxelVolume returns the volume of one voxel in cubic Angstrom.
func (d *Density) VoxelVolume() float64 {
	return d.Delta.X * d.Delta.Y * d.Delta.Z
}

// GridToWorld returns the world position of a grid point.
func (d *Density) GridToWorld(i, j, k int) geometry.Vec3 {
	return geometry.Vec3{
		X: d.Origin.X + float64(i)*d.Delta.X,
		Y: d.Origin.Y + float64(j)*d.Delta.Y,
		Z: d.Origin.Z + float64(k)*d.Delta.Z,
	}
}

// WorldToGrid returns the grid indices nearest to a world position.
// The indices may fall outside the grid.
func (d *Density) WorldToGrid(p geometry.Vec3) (int, int, int) {
	return int(math.Round((p.X - d.Origin.X) / d.Delta.X)),
		int(math.Round((p.Y - d.Origin.Y) / d.Delta.Y)),
		int(math.Round((p.Z - d.Origin.Z) / d.Delta.Z))
}

// Stats holds summary statistics of the map values.
type Stats struct {
	Min, Max, Mean, Sigma float64
}

// Statistics computes summary statistics over all voxels.
func (d *Density) Statistics() Stats {
	if len(d.Data) == 0 {
		return Stats{}
	}
	min, max := float64(d.Data[0]), float64(d.Data[0])
	var sum float64
	for _, v := range d.Data {
		f := float64(v)
		sum += f
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
	}
	mean := sum / float64(len(d.Data))
	var ss float64
	for _, v := range d.Data {
		diff := float64(v) - mean
		ss += diff * diff
	}
	return Stats{
		Min:   min,
		Max:   max,
		Mean:  mean,
		Sigma: math.Sqrt(ss / float64(len(d.Data))),
	}
}

// Threshold returns the centers of all voxels with value at or above
// level as a point cloud. A level above the map maximum yields an
// empty structure.
func (d *Density) Threshold(level float64) *structure.Structure {
	var points []geometry.Vec3
	lv := float32(level)
	for i := 0; i < d.NX; i++ {
		for j := 0; j < d.NY; j++ {
			base := (i*d.NY + j) * d.NZ
			for k := 0; k < d.NZ; k++ {
				if d.Data[base+k] >= lv {
					points = append(points, d.GridToWorld(i, j, k))
				}
			}
		}
	}
	return structure.New(points)
}

// countAbove returns the number of voxels with value >= level.
func (d *Density) countAbove(level float64) int {
	lv := float32(level)
	count := 0
	for _, v := range d.Data {
		if v >= lv {
			count++
		}
	}
	return count
}

// ThresholdForVolume finds by bisection the level whose enclosed
// volume best matches the target volume in cubic Angstrom.
func (d *Density) ThresholdForVolume(volume float64) (float64, error) {
	if volume <= 0 {
		return 0, fmt.Errorf("volume must be positive, got %v", volume)
	}
	st := d.Statistics()
	targetCount := volume / d.VoxelVolume()
	if targetCount >= float64(len(d.Data)) {
		return st.Min, nil
	}

	lo, hi := st.Min, st.Max
	// countAbove decreases monotonically with level.
	for iter := 0; iter < 60; iter++ {
		mid := (lo + hi) / 2
		if float64(d.countAbove(mid)) > targetCount {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, nil
}

// PredictThreshold estimates the isosurface level enclosing the volume
// expected for a protein of the given mass in Daltons.
func (d *Density) PredictThreshold(massDa float64) (float64, error) {
	if massDa <= 0 {
		return 0, fmt.Errorf("mass must be positive, got %v", massDa)
	}
	return d.ThresholdForVolume(massDa * proteinVolPerDalton)
}

// BestThresholdFit scans candidate levels and returns the one whose
// thresholded voxel set best overlaps (by Jaccard index) the voxels
// occupied by the given points.
func (d *Density) BestThresholdFit(points []geometry.Vec3) (float64, error) {
	if len(points) == 0 {
		return 0, fmt.Errorf("no points given")
	}
	if err := d.validate(); err != nil {
		return 0, err
	}

	occupied := make(map[int]bool)
	for _, p := range points {
		i, j, k := d.WorldToGrid(p)
		if i < 0 || i >= d.NX || j < 0 || j >= d.NY || k < 0 || k >= d.NZ {
			continue
		}
		occupied[(i*d.NY+j)*d.NZ+k] = true
	}
	if len(occupied) == 0 {
		return 0, fmt.Errorf("no points fall inside the map")
	}

	st := d.Statistics()
	const steps = 50
	bestLevel, bestScore := st.Min, -1.0
	for s := 0; s < steps; s++ {
		level := st.Min + (st.Max-st.Min)*float64(s)/float64(steps-1)
		lv := float32(level)

		inter, above := 0, 0
		for idx, v := range d.Data {
			if v >= lv {
				above++
				if occupied[idx] {
					inter++
				}
			}
		}
		union := above + len(occupied) - inter
		if union == 0 {
			continue
		}
		if score := float64(inter) / float64(union); score > bestScore {
			bestScore = score
			bestLevel = level
		}
	}
	return bestLevel, nil
}
