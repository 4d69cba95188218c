package mapping

import (
	"math"
	"sort"

	"github.com/Rhoana/topological-thinning/thinning"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Build computes the correspondence between a fine segmentation at resolution fine and
// the coarse grid at resolution coarse.  Every coarse index occupied by a label receives
// as representative the voxel of that label closest, in Manhattan distance, to the
// center of the coarse cell's fine block.  Ties go to the first voxel in z, y, x scan
// order.  The block is slightly larger than the cell, so the search is local and may in
// rare cases miss a closer voxel elsewhere.
func Build(vol *thinning.Volume, fine, coarse thinning.Resolution) (*Correspondence, error) {
	ratio, err := thinning.DownsampleRatio(fine, coarse)
	if err != nil {
		return nil, err
	}
	maxLabel, err := vol.MaxLabel()
	if err != nil {
		return nil, err
	}
	coarseShape := ratio.CoarseShape(vol.Shape)
	if err := coarseShape.Valid(); err != nil {
		return nil, err
	}

	timedLog := thinning.NewTimeLog()
	sets := downsampleSets(vol, ratio, coarseShape)
	timedLog.Infof("Found %d labels in %s volume downsampled %s to %s", len(sets), vol.Shape, ratio, coarseShape)

	labels := make([]uint64, 0, len(sets))
	for label := range sets {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	c := NewCorrespondence(coarseShape, vol.Shape, int64(maxLabel))
	for _, label := range labels {
		set := sets[label]
		m := make(LabelMap, set.GetCardinality())
		it := set.Iterator()
		for it.HasNext() {
			ci := int64(it.Next())
			fi, err := representative(vol, ratio, coarseShape, label, ci)
			if err != nil {
				return nil, err
			}
			m[ci] = fi
		}
		c.Downsample[label] = set
		c.Maps[label] = m
	}
	timedLog.Infof("Built %s", c)
	return c, nil
}

// downsampleSets returns the coarse indices covered by each nonzero label.
func downsampleSets(vol *thinning.Volume, ratio thinning.Ratio, coarseShape thinning.GridShape) map[uint64]*roaring64.Bitmap {
	sets := make(map[uint64]*roaring64.Bitmap)
	var index int64
	for z := int32(0); int64(z) < vol.Shape[thinning.AxisZ]; z++ {
		for y := int32(0); int64(y) < vol.Shape[thinning.AxisY]; y++ {
			for x := int32(0); int64(x) < vol.Shape[thinning.AxisX]; x, index = x+1, index+1 {
				label := vol.Labels[index]
				if label == 0 {
					continue
				}
				ci := coarseShape.Index(ratio.Down(thinning.Point3d{x, y, z}))
				set, found := sets[label]
				if !found {
					set = roaring64.New()
					sets[label] = set
				}
				set.Add(uint64(ci))
			}
		}
	}
	return sets
}

// representative returns the fine voxel of the label nearest the center of the block
// covered by the coarse index.
func representative(vol *thinning.Volume, ratio thinning.Ratio, coarseShape thinning.GridShape, label uint64, coarse int64) (int64, error) {
	min, max := ratio.Block(coarseShape.Coords(coarse), vol.Shape)
	center := thinning.Point3d{
		(max[0] + min[0]) / 2,
		(max[1] + min[1]) / 2,
		(max[2] + min[2]) / 2,
	}

	closest := int64(math.MaxInt64)
	fine := int64(-1)
	for z := min[2]; z < max[2]; z++ {
		for y := min[1]; y < max[1]; y++ {
			for x := min[0]; x < max[0]; x++ {
				pt := thinning.Point3d{x, y, z}
				index := vol.Shape.Index(pt)
				if vol.Labels[index] != label {
					continue
				}
				if dist := pt.ManhattanDistance(center); dist < closest {
					closest = dist
					fine = index
				}
			}
		}
	}
	if fine < 0 {
		return 0, &InconsistencyError{Label: label, Coarse: coarse, Err: ErrNoRepresentative}
	}
	return fine, nil
}
