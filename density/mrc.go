package density

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/tsawler/biobox/geometry"
)

// mrcHeaderSize is the fixed MRC/CCP4 header length in bytes.
const mrcHeaderSize = 1024

// ReadMRCFile parses an MRC/CCP4 density map from disk.
func ReadMRCFile(path string) (*Density, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return ReadMRC(f)
}

// ReadMRC parses an MRC/CCP4 density map. Mode 2 (float32) data is
// supported; byte order is taken from the machine stamp, falling back
// to little-endian. Axis permutations (MAPC/MAPR/MAPS) are undone so
// the resulting grid is always indexed (x, y, z).
func ReadMRC(r io.Reader) (*Density, error) {
	header := make([]byte, mrcHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if string(header[208:212]) != "MAP " {
		return nil, fmt.Errorf("%w: missing MAP stamp", ErrUnknownMapFormat)
	}

	order := byteOrder(header)
	i32 := func(off int) int32 { return int32(order.Uint32(header[off : off+4])) }
	f32 := func(off int) float32 { return math.Float32frombits(order.Uint32(header[off : off+4])) }

	// Dimensions of the stored data: columns vary fastest.
	ncol, nrow, nsec := int(i32(0)), int(i32(4)), int(i32(8))
	mode := i32(12)
	if mode != 2 {
		return nil, fmt.Errorf("unsupported MRC mode %d (only mode 2 float32)", mode)
	}
	if ncol <= 0 || nrow <= 0 || nsec <= 0 {
		return nil, fmt.Errorf("bad dimensions %dx%dx%d", ncol, nrow, nsec)
	}

	start := [3]int{int(i32(16)), int(i32(20)), int(i32(24))}
	mx, my, mz := int(i32(28)), int(i32(32)), int(i32(36))
	cellX, cellY, cellZ := f32(40), f32(44), f32(48)
	alpha, beta, gamma := f32(52), f32(56), f32(60)
	if !rightAngle(alpha) || !rightAngle(beta) || !rightAngle(gamma) {
		return nil, ErrSkewedCell
	}

	// Axis assignment: mapc/mapr/maps name the world axis (1=x, 2=y,
	// 3=z) of the column, row, and section indices.
	mapc, mapr, maps := int(i32(64)), int(i32(68)), int(i32(72))
	axisOf := [3]int{mapc - 1, mapr - 1, maps - 1}
	if !validAxes(axisOf) {
		return nil, fmt.Errorf("bad axis order %d %d %d", mapc, mapr, maps)
	}

	if mx <= 0 || my <= 0 || mz <= 0 {
		return nil, fmt.Errorf("bad sampling %dx%dx%d", mx, my, mz)
	}
	delta := geometry.Vec3{
		X: float64(cellX) / float64(mx),
		Y: float64(cellY) / float64(my),
		Z: float64(cellZ) / float64(mz),
	}

	nskip := int(i32(92)) // symmetry data to skip
	if nskip < 0 {
		return nil, fmt.Errorf("bad symmetry block size %d", nskip)
	}
	if _, err := io.CopyN(io.Discard, r, int64(nskip)); err != nil {
		return nil, fmt.Errorf("failed to skip symmetry block: %w", err)
	}

	raw := make([]byte, 4*ncol*nrow*nsec)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	// Map the stored (col, row, sec) dimensions onto world (x, y, z).
	var dims [3]int
	storeDims := [3]int{ncol, nrow, nsec}
	for storeAxis, worldAxis := range axisOf {
		dims[worldAxis] = storeDims[storeAxis]
	}

	d := &Density{
		NX: dims[0], NY: dims[1], NZ: dims[2],
		Delta: delta,
		Data:  make([]float32, dims[0]*dims[1]*dims[2]),
	}

	// MRC2000 origin record wins when set, else fall back to the
	// start indices.
	ox, oy, oz := f32(196), f32(200), f32(204)
	if ox != 0 || oy != 0 || oz != 0 {
		d.Origin = geometry.Vec3{X: float64(ox), Y: float64(oy), Z: float64(oz)}
	} else {
		var worldStart [3]int
		for storeAxis, worldAxis := range axisOf {
			worldStart[worldAxis] = start[storeAxis]
		}
		d.Origin = geometry.Vec3{
			X: float64(worldStart[0]) * delta.X,
			Y: float64(worldStart[1]) * delta.Y,
			Z: float64(worldStart[2]) * delta.Z,
		}
	}

	// Stored order: column fastest, then row, then section.
	idx := 0
	var world [3]int
	for sec := 0; sec < nsec; sec++ {
		world[axisOf[2]] = sec
		for row := 0; row < nrow; row++ {
			world[axisOf[1]] = row
			for col := 0; col < ncol; col++ {
				world[axisOf[0]] = col
				v := math.Float32frombits(order.Uint32(raw[4*idx : 4*idx+4]))
				d.Set(world[0], world[1], world[2], v)
				idx++
			}
		}
	}
	return d, nil
}

// byteOrder determines endianness from the machine stamp, defaulting
// to little-endian for the common case of stamps written as zeros.
func byteOrder(header []byte) binary.ByteOrder {
	switch header[212] {
	case 0x11:
		return binary.BigEndian
	default:
		return binary.LittleEndian
	}
}

func rightAngle(deg float32) bool {
	return math.Abs(float64(deg)-90) < 1e-3 || deg == 0
}

func validAxes(a [3]int) bool {
	var seen [3]bool
	for _, axis := range a {
		if axis < 0 || axis > 2 || seen[axis] {
			return false
		}
		seen[axis] = true
	}
	return true
}
