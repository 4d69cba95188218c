package storage

import (
	"fmt"
	"path"

	"github.com/Rhoana/topological-thinning/thinning"
)

// Stage names used in object keys.  Together with the resolution tag they form the
// names consumed by the rest of the skeletonization pipeline, so they must not change.
const (
	DownsampleStage         = "downsample"
	UpsampleStage           = "upsample"
	DownsampleSkeletonStage = "downsample-skeleton"
	UpsampleSkeletonStage   = "upsample-skeleton"
	EndpointVectorStage     = "endpoint-vectors"

	MapExt      = "bytes"
	PointSetExt = "pts"
	VectorExt   = "vec"

	// DefaultAlgorithm is the skeletonization algorithm prefixed to skeleton keys.
	DefaultAlgorithm = "thinning"
)

// ResolutionTag formats a resolution as XXXxYYYxZZZ with each component a zero-padded
// integer of at least three digits.  Note the x, y, z order.
func ResolutionTag(res thinning.Resolution) string {
	return fmt.Sprintf("%03dx%03dx%03d",
		int64(res[thinning.AxisX]), int64(res[thinning.AxisY]), int64(res[thinning.AxisZ]))
}

// DownsampleMapKey is the key of the coarse-oriented index map.
func DownsampleMapKey(prefix string, res thinning.Resolution) string {
	return path.Join(prefix, fmt.Sprintf("%s-%s.%s", DownsampleStage, ResolutionTag(res), MapExt))
}

// UpsampleMapKey is the key of the fine-oriented index map.
func UpsampleMapKey(prefix string, res thinning.Resolution) string {
	return path.Join(prefix, fmt.Sprintf("%s-%s.%s", UpsampleStage, ResolutionTag(res), MapExt))
}

// SkeletonKey is the key of a skeleton point set for the given stage, e.g.,
// "PREFIX/thinning-080x080x080-downsample-skeleton.pts".
func SkeletonKey(prefix, algorithm string, res thinning.Resolution, stage string) string {
	return path.Join(prefix, fmt.Sprintf("%s-%s-%s.%s", algorithm, ResolutionTag(res), stage, PointSetExt))
}

// EndpointVectorKey is the key of the endpoint vector file.
func EndpointVectorKey(prefix, algorithm string, res thinning.Resolution) string {
	return path.Join(prefix, fmt.Sprintf("%s-%s-%s.%s", algorithm, ResolutionTag(res), EndpointVectorStage, VectorExt))
}
