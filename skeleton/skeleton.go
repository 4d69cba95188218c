package skeleton

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rhoana/topological-thinning/storage"
	"github.com/Rhoana/topological-thinning/thinning"

	"gocloud.dev/blob"
)

var (
	// ErrHeaderMismatch is returned when a point set object and its endpoint vector
	// object have different headers.
	ErrHeaderMismatch = errors.New("skeleton and endpoint vector headers differ")

	// ErrEndpointMismatch is returned when a label has a different number of endpoints
	// in its point set and its endpoint vectors.
	ErrEndpointMismatch = errors.New("skeleton and endpoint vector counts differ")
)

// Skeleton is a label's fine-resolution skeleton with the tangent of each endpoint.
type Skeleton struct {
	Label     uint64
	Joints    []int64
	Endpoints []int64
	Vectors   map[int64]thinning.Vector3d
}

func (s Skeleton) String() string {
	return fmt.Sprintf("label %d: %d joints, %d endpoints", s.Label, len(s.Joints), len(s.Endpoints))
}

// ReadSkeletons joins the upsampled point sets of a prefix with their endpoint vectors.
// It returns the fine grid shape and one skeleton per label in [0, max label).
func ReadSkeletons(ctx context.Context, bucket *blob.Bucket, prefix, algorithm string, res thinning.Resolution) (thinning.GridShape, []Skeleton, error) {
	pkey := storage.SkeletonKey(prefix, algorithm, res, storage.UpsampleSkeletonStage)
	vkey := storage.EndpointVectorKey(prefix, algorithm, res)

	ph, sets, err := ReadPointSets(ctx, bucket, pkey)
	if err != nil {
		return thinning.GridShape{}, nil, err
	}
	vh, vecs, err := ReadEndpointVectors(ctx, bucket, vkey)
	if err != nil {
		return thinning.GridShape{}, nil, err
	}
	if ph != vh {
		return thinning.GridShape{}, nil, fmt.Errorf("%s has %s, %s has %s: %w", pkey, ph, vkey, vh, ErrHeaderMismatch)
	}

	skeletons := make([]Skeleton, len(sets))
	for label, ps := range sets {
		joints, endpoints := ps.Split()
		if len(endpoints) != len(vecs[label]) {
			return thinning.GridShape{}, nil, fmt.Errorf("label %d has %d endpoints in %s and %d in %s: %w",
				label, len(endpoints), pkey, len(vecs[label]), vkey, ErrEndpointMismatch)
		}
		s := Skeleton{
			Label:     uint64(label),
			Joints:    joints,
			Endpoints: endpoints,
			Vectors:   make(map[int64]thinning.Vector3d, len(endpoints)),
		}
		for _, ev := range vecs[label] {
			s.Vectors[ev.Fine] = ev.Vector
		}
		skeletons[label] = s
	}
	return ph.Shape, skeletons, nil
}
