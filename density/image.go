package density

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// Axis selects the slicing direction through the map.
type Axis int

const (
	// AxisX slices perpendicular to X: images span (Y, Z).
	AxisX Axis = iota
	// AxisY slices perpendicular to Y: images span (X, Z).
	AxisY
	// AxisZ slices perpendicular to Z: images span (X, Y).
	AxisZ
)

// String returns the axis name.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Slice renders one grid plane as a grayscale image, mapping the map's
// global minimum to black and maximum to white so slices from the same
// map are comparable.
func (d *Density) Slice(axis Axis, index int) (*image.Gray, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	var w, h, limit int
	switch axis {
	case AxisX:
		w, h, limit = d.NY, d.NZ, d.NX
	case AxisY:
		w, h, limit = d.NX, d.NZ, d.NY
	case AxisZ:
		w, h, limit = d.NX, d.NY, d.NZ
	default:
		return nil, fmt.Errorf("bad axis %d", axis)
	}
	if index < 0 || index >= limit {
		return nil, fmt.Errorf("slice index %d out of range [0, %d)", index, limit)
	}

	st := d.Statistics()
	span := st.Max - st.Min
	if span == 0 {
		span = 1
	}

	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v float32
			switch axis {
			case AxisX:
				v = d.At(index, x, y)
			case AxisY:
				v = d.At(x, index, y)
			default:
				v = d.At(x, y, index)
			}
			g := (float64(v) - st.Min) / span * 255
			// Flip vertically so increasing grid axis points up.
			img.SetGray(x, h-1-y, imageGray(g))
		}
	}
	return img, nil
}

func imageGray(v float64) color.Gray {
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return color.Gray{Y: uint8(v + 0.5)}
}

// upscale resamples an image by an integer factor with Catmull-Rom
// interpolation.
func upscale(img image.Image, scale int) image.Image {
	if scale <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// SaveSlicePNG renders a slice, optionally upscaled by an integer
// factor, and writes it as a PNG file.
func (d *Density) SaveSlicePNG(path string, axis Axis, index, scale int) error {
	img, err := d.Slice(axis, index)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, upscale(img, scale)); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// SaveSliceTIFF renders a slice and writes it as an uncompressed TIFF
// file, the format most microscopy tools expect.
func (d *Density) SaveSliceTIFF(path string, axis Axis, index int) error {
	img, err := d.Slice(axis, index)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := tiff.Encode(f, img, nil); err != nil {
		return fmt.Errorf("failed to encode TIFF: %w", err)
	}
	return nil
}

// WriteTIFFStack renders every slice along an axis as its own TIFF
// file, numbered from the given path: "map.tif" becomes "map_000.tif",
// "map_001.tif", and so on.
func (d *Density) WriteTIFFStack(path string, axis Axis) error {
	var n int
	switch axis {
	case AxisX:
		n = d.NX
	case AxisY:
		n = d.NY
	case AxisZ:
		n = d.NZ
	default:
		return fmt.Errorf("unknown axis %v", axis)
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if ext == "" {
		ext = ".tif"
	}
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s_%03d%s", base, i, ext)
		if err := d.SaveSliceTIFF(name, axis, i); err != nil {
			return fmt.Errorf("slice %d: %w", i, err)
		}
	}
	return nil
}
