package skeleton

import (
	"context"
	"fmt"

	"github.com/Rhoana/topological-thinning/storage"

	"gocloud.dev/blob"
)

// PointSet is the signed linear indices of one label's skeleton voxels.  A negative value
// is an endpoint at the absolute index.  Since -0 == 0, a voxel at index 0 can never be
// flagged and is never an endpoint.
type PointSet []int64

// maxLabelAlloc caps the labels allocated up front from a header, which may be corrupt.
const maxLabelAlloc = 1 << 16

func labelAlloc(maxLabel int64) int {
	if maxLabel > maxLabelAlloc {
		return maxLabelAlloc
	}
	return int(maxLabel)
}

// IsEndpoint returns true if the signed index flags an endpoint.
func IsEndpoint(v int64) bool {
	return v < 0
}

// Unsigned returns the linear index of a signed point.
func Unsigned(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// NumEndpoints returns the number of flagged endpoints.
func (ps PointSet) NumEndpoints() int {
	var n int
	for _, v := range ps {
		if IsEndpoint(v) {
			n++
		}
	}
	return n
}

// Split returns the unsigned joint and endpoint indices in their original order.
func (ps PointSet) Split() (joints, endpoints []int64) {
	for _, v := range ps {
		if IsEndpoint(v) {
			endpoints = append(endpoints, -v)
		} else {
			joints = append(joints, v)
		}
	}
	return
}

// WritePointSets stores one point set per label in [0, h.MaxLabel).  Missing labels are
// written as empty sets.
func WritePointSets(ctx context.Context, bucket *blob.Bucket, key string, h storage.Header, sets []PointSet) error {
	if int64(len(sets)) > h.MaxLabel {
		return fmt.Errorf("%d point sets exceed max label %d for %s", len(sets), h.MaxLabel, key)
	}
	w, err := storage.CreateObject(ctx, bucket, key)
	if err != nil {
		return err
	}
	if err := writePointSets(w.Writer, h, sets); err != nil {
		w.Abort()
		return err
	}
	return w.Close()
}

func writePointSets(w *storage.Writer, h storage.Header, sets []PointSet) error {
	if err := w.WriteHeader(h); err != nil {
		return err
	}
	for label := int64(0); label < h.MaxLabel; label++ {
		var ps PointSet
		if label < int64(len(sets)) {
			ps = sets[label]
		}
		if err := w.WriteCounted(ps); err != nil {
			return err
		}
	}
	return nil
}

// ReadPointSets loads every label's point set from an object.
func ReadPointSets(ctx context.Context, bucket *blob.Bucket, key string) (storage.Header, []PointSet, error) {
	r, err := storage.OpenObject(ctx, bucket, key)
	if err != nil {
		return storage.Header{}, nil, err
	}
	defer r.Close()

	h, err := r.ReadHeader()
	if err != nil {
		return h, nil, err
	}
	sets := make([]PointSet, 0, labelAlloc(h.MaxLabel))
	for label := int64(0); label < h.MaxLabel; label++ {
		values, err := r.ReadCounted()
		if err != nil {
			return h, nil, err
		}
		sets = append(sets, PointSet(values))
	}
	return h, sets, nil
}
