package thinning

import (
	"fmt"
	"math"
)

// Axis positions within (z, y, x) ordered triples.
const (
	AxisZ = 0
	AxisY = 1
	AxisX = 2
)

// zyxAxis returns the (z, y, x) axis for the given (x, y, z) point dimension.
func zyxAxis(dim int) int {
	return 2 - dim
}

// GridShape is the number of voxels along each axis in (z, y, x) order.  The linear
// index of voxel (x, y, z) is z * (ny * nx) + y * nx + x.
type GridShape [3]int64

// NumVoxels returns the total number of voxels within the grid.
func (s GridShape) NumVoxels() int64 {
	return s[AxisZ] * s[AxisY] * s[AxisX]
}

// SheetSize returns the number of voxels in one z slice.
func (s GridShape) SheetSize() int64 {
	return s[AxisY] * s[AxisX]
}

// RowSize returns the number of voxels in one row along x.
func (s GridShape) RowSize() int64 {
	return s[AxisX]
}

// Index returns the linear index of the given (x, y, z) coordinate.
func (s GridShape) Index(p Point3d) int64 {
	return int64(p[2])*s.SheetSize() + int64(p[1])*s.RowSize() + int64(p[0])
}

// Coords returns the (x, y, z) coordinate of a linear index.  It is the exact inverse
// of Index for all indices in [0, NumVoxels).
func (s GridShape) Coords(index int64) Point3d {
	sheet := s.SheetSize()
	row := s.RowSize()
	iz := index / sheet
	iy := (index - iz*sheet) / row
	ix := index % row
	return Point3d{int32(ix), int32(iy), int32(iz)}
}

// Contains returns true if the point lies within the grid.
func (s GridShape) Contains(p Point3d) bool {
	for dim := 0; dim < 3; dim++ {
		if p[dim] < 0 || int64(p[dim]) >= s[zyxAxis(dim)] {
			return false
		}
	}
	return true
}

// ContainsIndex returns true if the linear index lies within the grid.
func (s GridShape) ContainsIndex(index int64) bool {
	return index >= 0 && index < s.NumVoxels()
}

// Valid returns an error if any dimension is not positive.
func (s GridShape) Valid() error {
	if s[AxisZ] <= 0 || s[AxisY] <= 0 || s[AxisX] <= 0 {
		return fmt.Errorf("bad grid shape %s", s)
	}
	return nil
}

func (s GridShape) String() string {
	return fmt.Sprintf("%d x %d x %d (z,y,x)", s[AxisZ], s[AxisY], s[AxisX])
}

// Resolution is the voxel size in (z, y, x) order, typically in nanometers.
type Resolution [3]float32

func (r Resolution) String() string {
	return fmt.Sprintf("%gx%gx%g (z,y,x)", r[AxisZ], r[AxisY], r[AxisX])
}

// Ratio is the per-axis (z, y, x) factor between a coarse and a fine grid, i.e., the
// number of fine voxels spanned by one coarse voxel along that axis.  Ratios need not
// be integers.  Arithmetic is kept in float32 so that computed shapes and blocks match
// maps written by earlier tools.
type Ratio [3]float32

// DownsampleRatio returns coarse / fine for each axis.
func DownsampleRatio(fine, coarse Resolution) (Ratio, error) {
	var r Ratio
	for axis := 0; axis < 3; axis++ {
		if fine[axis] <= 0 || coarse[axis] <= 0 {
			return r, fmt.Errorf("resolutions must be positive, got fine %s and coarse %s", fine, coarse)
		}
		r[axis] = coarse[axis] / fine[axis]
	}
	return r, nil
}

// CoarseShape returns ceil(fine / ratio) along each axis.
func (r Ratio) CoarseShape(fine GridShape) GridShape {
	var s GridShape
	for axis := 0; axis < 3; axis++ {
		s[axis] = int64(math.Ceil(float64(float32(fine[axis]) / r[axis])))
	}
	return s
}

// Down returns the coarse coordinate containing the given fine coordinate.
func (r Ratio) Down(p Point3d) Point3d {
	var c Point3d
	for dim := 0; dim < 3; dim++ {
		c[dim] = int32(float32(p[dim]) / r[zyxAxis(dim)])
	}
	return c
}

// Block returns the fine voxel box [min, max) searched for a coarse coordinate's
// representative.  The upper bound is widened by one voxel beyond ceil to tolerate
// rounding of non-integer ratios and is clipped to the fine grid.
func (r Ratio) Block(c Point3d, fine GridShape) (min, max Point3d) {
	for dim := 0; dim < 3; dim++ {
		axis := zyxAxis(dim)
		ratio := r[axis]
		min[dim] = int32(ratio * float32(c[dim]))
		hi := int64(math.Ceil(float64(ratio*float32(c[dim]+1) + 1)))
		if hi > fine[axis] {
			hi = fine[axis]
		}
		max[dim] = int32(hi)
	}
	return
}

func (r Ratio) String() string {
	return fmt.Sprintf("%gx%gx%g (z,y,x)", r[AxisZ], r[AxisY], r[AxisX])
}
