package skeleton

import (
	"fmt"

	"github.com/Rhoana/topological-thinning/thinning"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// MaxPathLength is the most voxels, including the endpoint, walked from an endpoint
// when computing its tangent.
const MaxPathLength = 4

// Tracer walks the skeleton of one label on the coarse grid.  It owns an occupancy mask
// of every skeleton voxel.  Voxels cleared during a walk are restored before the walk
// returns.
type Tracer struct {
	shape     thinning.GridShape
	mask      *roaring64.Bitmap
	endpoints []int64
}

// NewTracer returns a Tracer for a point set on a grid.  Every index must lie within
// the grid.
func NewTracer(shape thinning.GridShape, points PointSet) (*Tracer, error) {
	t := &Tracer{
		shape: shape,
		mask:  roaring64.New(),
	}
	for _, v := range points {
		index := Unsigned(v)
		if !shape.ContainsIndex(index) {
			return nil, fmt.Errorf("skeleton index %d outside grid %s", index, shape)
		}
		t.mask.Add(uint64(index))
		if IsEndpoint(v) {
			t.endpoints = append(t.endpoints, index)
		}
	}
	return t, nil
}

// Endpoints returns the unsigned endpoint indices in point set order.
func (t *Tracer) Endpoints() []int64 {
	return t.endpoints
}

func (t *Tracer) NumEndpoints() int {
	return len(t.endpoints)
}

// Mask returns a copy of the occupancy mask.
func (t *Tracer) Mask() *roaring64.Bitmap {
	return t.mask.Clone()
}

// neighbors returns the number of occupied voxels in the 26-neighborhood of index and,
// if there is exactly one, its index.
func (t *Tracer) neighbors(index int64) (n int, only int64) {
	p := t.shape.Coords(index)
	only = -1
	for dz := int32(-1); dz <= 1; dz++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dx := int32(-1); dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				q := p.Add(thinning.Point3d{dx, dy, dz})
				if !t.shape.Contains(q) {
					continue
				}
				neighbor := t.shape.Index(q)
				if t.mask.Contains(uint64(neighbor)) {
					n++
					only = neighbor
				}
			}
		}
	}
	return
}

// Trace returns the path of voxels from index following unique neighbors.  The walk
// stops at an isolated voxel, at a branch, or after MaxPathLength voxels.  The current
// voxel is cleared from the mask before stepping so it is not counted as a neighbor of
// the next voxel.
func (t *Tracer) Trace(index int64) []int64 {
	path := []int64{index}
	var cleared []int64
	for len(path) < MaxPathLength {
		n, next := t.neighbors(index)
		if n != 1 {
			break
		}
		if t.mask.Contains(uint64(index)) {
			t.mask.Remove(uint64(index))
			cleared = append(cleared, index)
		}
		index = next
		path = append(path, index)
	}
	for _, i := range cleared {
		t.mask.Add(uint64(i))
	}
	return path
}

// EndpointVector returns the unit vector from the end of the traced path toward the
// endpoint, in (x, y, z) coarse grid steps.  An endpoint without neighbors gets the zero
// vector.
func (t *Tracer) EndpointVector(index int64) thinning.Vector3d {
	path := t.Trace(index)
	if len(path) == 1 {
		return thinning.Vector3d{}
	}
	first := t.shape.Coords(path[0]).Vector3d()
	last := t.shape.Coords(path[len(path)-1]).Vector3d()
	return first.Subtract(last).Normalize()
}
