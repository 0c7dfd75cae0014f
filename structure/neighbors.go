package structure

import (
	"fmt"
	"math"

	"github.com/tsawler/biobox/geometry"
)

// Pair records two point indices within a distance cutoff.
type Pair struct {
	I, J     int
	Distance float64
}

// cellIndex maps a point to its integer grid cell for a given cell
// size and grid origin.
func cellIndex(p, origin geometry.Vec3, size float64) [3]int {
	return [3]int{
		int(math.Floor((p.X - origin.X) / size)),
		int(math.Floor((p.Y - origin.Y) / size)),
		int(math.Floor((p.Z - origin.Z) / size)),
	}
}

// buildCells hashes points into a sparse cell grid.
func buildCells(points []geometry.Vec3, origin geometry.Vec3, size float64) map[[3]int][]int {
	cells := make(map[[3]int][]int)
	for i, p := range points {
		c := cellIndex(p, origin, size)
		cells[c] = append(cells[c], i)
	}
	return cells
}

// NeighborPairs returns all point pairs of the current conformation
// within cutoff of each other, each pair reported once with I < J.
// A cell-list grid keeps the search close to linear for spatially
// sparse structures.
func (s *Structure) NeighborPairs(cutoff float64) ([]Pair, error) {
	if cutoff <= 0 {
		return nil, fmt.Errorf("cutoff must be positive, got %v", cutoff)
	}
	points := s.XYZ()
	if len(points) < 2 {
		return nil, nil
	}

	origin := geometry.NewBBox(points).Min
	cells := buildCells(points, origin, cutoff)

	var pairs []Pair
	for cell, members := range cells {
		// Scan the 27-cell neighborhood; visiting each unordered cell
		// pair once keeps pairs unique.
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					other := [3]int{cell[0] + dx, cell[1] + dy, cell[2] + dz}
					if lessCell(other, cell) {
						continue
					}
					candidates, ok := cells[other]
					if !ok {
						continue
					}
					same := other == cell
					for ii, i := range members {
						start := 0
						if same {
							start = ii + 1
						}
						for _, j := range candidates[start:] {
							if same && j <= i {
								continue
							}
							d := points[i].Distance(points[j])
							if d <= cutoff {
								a, b := i, j
								if b < a {
									a, b = b, a
								}
								pairs = append(pairs, Pair{I: a, J: b, Distance: d})
							}
						}
					}
				}
			}
		}
	}
	return pairs, nil
}

// CrossNeighborPairs returns all pairs (i from a, j from b) within
// cutoff, using the same cell-list scheme.
func CrossNeighborPairs(a, b []geometry.Vec3, cutoff float64) ([]Pair, error) {
	if cutoff <= 0 {
		return nil, fmt.Errorf("cutoff must be positive, got %v", cutoff)
	}
	if len(a) == 0 || len(b) == 0 {
		return nil, nil
	}

	origin := geometry.NewBBox(a).Union(geometry.NewBBox(b)).Min
	cells := buildCells(b, origin, cutoff)

	var pairs []Pair
	for i, p := range a {
		c := cellIndex(p, origin, cutoff)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					candidates := cells[[3]int{c[0] + dx, c[1] + dy, c[2] + dz}]
					for _, j := range candidates {
						d := p.Distance(b[j])
						if d <= cutoff {
							pairs = append(pairs, Pair{I: i, J: j, Distance: d})
						}
					}
				}
			}
		}
	}
	return pairs, nil
}

func lessCell(a, b [3]int) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	if a[1] != b[1] {
		return a[1] < b[1]
	}
	return a[2] < b[2]
}
