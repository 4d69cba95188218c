package mapping

import (
	"math/rand"

	"github.com/Rhoana/topological-thinning/thinning"
)

func init() {
	thinning.SetLogMode(thinning.WarningMode)
}

// uniformVolume returns a volume with every voxel set to label.
func uniformVolume(shape thinning.GridShape, label uint64) *thinning.Volume {
	labels := make([]uint64, shape.NumVoxels())
	for i := range labels {
		labels[i] = label
	}
	return &thinning.Volume{Shape: shape, Labels: labels}
}

// randomVolume returns a volume of labels in [0, numLabels) drawn from a fixed seed.
func randomVolume(shape thinning.GridShape, numLabels int) *thinning.Volume {
	rng := rand.New(rand.NewSource(31))
	labels := make([]uint64, shape.NumVoxels())
	for i := range labels {
		labels[i] = uint64(rng.Intn(numLabels))
	}
	return &thinning.Volume{Shape: shape, Labels: labels}
}
