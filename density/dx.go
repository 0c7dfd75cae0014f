package density

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/tsawler/biobox/geometry"
)

// ReadDXFile parses an OpenDX scalar map from disk.
func ReadDXFile(path string) (*Density, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return ReadDX(f)
}

// ReadDX parses an OpenDX scalar map. Only regular orthogonal grids
// are supported; skewed delta vectors yield ErrSkewedCell.
func ReadDX(r io.Reader) (*Density, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	d := &Density{}
	var deltaRow int
	var inData bool

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch {
		case inData:
			// The data section ends at the first attribute/object line.
			if fields[0] == "attribute" || fields[0] == "object" || fields[0] == "component" {
				inData = false
				continue
			}
			for _, fstr := range fields {
				v, err := strconv.ParseFloat(fstr, 32)
				if err != nil {
					return nil, fmt.Errorf("bad data value %q", fstr)
				}
				d.Data = append(d.Data, float32(v))
			}

		case fields[0] == "object" && len(fields) >= 8 && fields[3] == "gridpositions":
			nx, err1 := strconv.Atoi(fields[len(fields)-3])
			ny, err2 := strconv.Atoi(fields[len(fields)-2])
			nz, err3 := strconv.Atoi(fields[len(fields)-1])
			if err1 != nil || err2 != nil || err3 != nil {
				return nil, fmt.Errorf("bad gridpositions counts in %q", line)
			}
			d.NX, d.NY, d.NZ = nx, ny, nz

		case fields[0] == "origin":
			if len(fields) != 4 {
				return nil, fmt.Errorf("bad origin line %q", line)
			}
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("bad origin line %q: %w", line, err)
			}
			d.Origin = v

		case fields[0] == "delta":
			if len(fields) != 4 {
				return nil, fmt.Errorf("bad delta line %q", line)
			}
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("bad delta line %q: %w", line, err)
			}
			if err := applyDelta(d, deltaRow, v); err != nil {
				return nil, err
			}
			deltaRow++

		case fields[0] == "object" && strings.Contains(line, "data follows"):
			inData = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("incomplete DX map: %w", err)
	}
	if deltaRow != 3 {
		return nil, fmt.Errorf("expected 3 delta lines, got %d", deltaRow)
	}
	return d, nil
}

func parseVec3(fields []string) (geometry.Vec3, error) {
	var out [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geometry.Vec3{}, fmt.Errorf("bad number %q", f)
		}
		out[i] = v
	}
	return geometry.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}

// applyDelta validates one delta row: row n may only have a nonzero
// component on axis n.
func applyDelta(d *Density, row int, v geometry.Vec3) error {
	comps := [3]float64{v.X, v.Y, v.Z}
	for axis, c := range comps {
		if axis == row {
			continue
		}
		if math.Abs(c) > 1e-9 {
			return ErrSkewedCell
		}
	}
	switch row {
	case 0:
		d.Delta.X = v.X
	case 1:
		d.Delta.Y = v.Y
	case 2:
		d.Delta.Z = v.Z
	default:
		return fmt.Errorf("too many delta lines")
	}
	return nil
}

// WriteDXFile writes the map to disk in OpenDX format.
func WriteDXFile(path string, d *Density) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()
	return WriteDX(f, d)
}

// WriteDX writes the map in OpenDX format: header, three values per
// line in Z-fastest order, and the closing field object.
func WriteDX(w io.Writer, d *Density) error {
	if err := d.validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "object 1 class gridpositions counts %d %d %d\n", d.NX, d.NY, d.NZ)
	fmt.Fprintf(bw, "origin %g %g %g\n", d.Origin.X, d.Origin.Y, d.Origin.Z)
	fmt.Fprintf(bw, "delta %g 0 0\n", d.Delta.X)
	fmt.Fprintf(bw, "delta 0 %g 0\n", d.Delta.Y)
	fmt.Fprintf(bw, "delta 0 0 %g\n", d.Delta.Z)
	fmt.Fprintf(bw, "object 2 class gridconnections counts %d %d %d\n", d.NX, d.NY, d.NZ)
	fmt.Fprintf(bw, "object 3 class array type double rank 0 items %d data follows\n", len(d.Data))

	for i, v := range d.Data {
		sep := " "
		if i%3 == 2 || i == len(d.Data)-1 {
			sep = "\n"
		}
		if _, err := fmt.Fprintf(bw, "%g%s", v, sep); err != nil {
			return fmt.Errorf("failed to write data: %w", err)
		}
	}
	fmt.Fprintln(bw, `attribute "dep" string "positions"`)
	fmt.Fprintln(bw, `object "regular positions regular connections" class field`)

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}
