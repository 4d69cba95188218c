package skeleton

import (
	"context"
	"fmt"

	"github.com/Rhoana/topological-thinning/mapping"
	"github.com/Rhoana/topological-thinning/storage"
	"github.com/Rhoana/topological-thinning/thinning"

	"gocloud.dev/blob"
)

// UpsamplePoints maps each coarse index of a label's point set to its fine index,
// keeping endpoint flags, order and count.
func UpsamplePoints(label uint64, points PointSet, m mapping.LabelMap) (PointSet, error) {
	up := make(PointSet, len(points))
	for i, v := range points {
		coarse := Unsigned(v)
		fine, err := m.Fine(coarse)
		if err != nil {
			return nil, &mapping.InconsistencyError{Label: label, Coarse: coarse, Err: err}
		}
		if IsEndpoint(v) {
			fine = -fine
		}
		up[i] = fine
	}
	return up, nil
}

// EndpointVectors traces each endpoint of a label's coarse point set and returns its
// fine index with its tangent, in point set order.
func EndpointVectors(label uint64, shape thinning.GridShape, points PointSet, m mapping.LabelMap) ([]EndpointVector, error) {
	tracer, err := NewTracer(shape, points)
	if err != nil {
		return nil, fmt.Errorf("label %d: %v", label, err)
	}
	vecs := make([]EndpointVector, 0, tracer.NumEndpoints())
	for _, coarse := range tracer.Endpoints() {
		fine, err := m.Fine(coarse)
		if err != nil {
			return nil, &mapping.InconsistencyError{Label: label, Coarse: coarse, Err: err}
		}
		vecs = append(vecs, EndpointVector{Fine: fine, Vector: tracer.EndpointVector(coarse)})
	}
	return vecs, nil
}

// labelFunc produces the output records of one label from its coarse point set.
type labelFunc func(label uint64, points PointSet, w *storage.Writer) error

// transferLabels streams the coarse skeleton of a prefix label by label into a new
// object headed by the fine grid shape.  The new object is discarded on any error.
func transferLabels(ctx context.Context, bucket *blob.Bucket, inKey, outKey string, src mapping.Source, fn labelFunc) (int64, error) {
	r, err := storage.OpenObject(ctx, bucket, inKey)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	h, err := r.ReadHeader()
	if err != nil {
		return 0, err
	}
	if h.Shape != src.CoarseShape() {
		return 0, fmt.Errorf("skeleton %s has grid %s but correspondence has grid %s", inKey, h.Shape, src.CoarseShape())
	}

	w, err := storage.CreateObject(ctx, bucket, outKey)
	if err != nil {
		return 0, err
	}
	if err := w.WriteHeader(storage.Header{Shape: src.FineShape(), MaxLabel: h.MaxLabel}); err != nil {
		w.Abort()
		return 0, err
	}
	for label := int64(0); label < h.MaxLabel; label++ {
		values, err := r.ReadCounted()
		if err != nil {
			w.Abort()
			return 0, err
		}
		if err := fn(uint64(label), PointSet(values), w.Writer); err != nil {
			w.Abort()
			return 0, err
		}
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return h.MaxLabel, nil
}

// ApplyUpsample writes the fine-resolution skeleton point sets of a prefix from the
// coarse ones.
func ApplyUpsample(ctx context.Context, bucket *blob.Bucket, prefix, algorithm string, res thinning.Resolution, src mapping.Source) error {
	inKey := storage.SkeletonKey(prefix, algorithm, res, storage.DownsampleSkeletonStage)
	outKey := storage.SkeletonKey(prefix, algorithm, res, storage.UpsampleSkeletonStage)

	timedLog := thinning.NewTimeLog()
	var npoints int64
	nlabels, err := transferLabels(ctx, bucket, inKey, outKey, src, func(label uint64, points PointSet, w *storage.Writer) error {
		var up PointSet
		if len(points) != 0 {
			m, err := src.LabelMap(label)
			if err != nil {
				return err
			}
			if up, err = UpsamplePoints(label, points, m); err != nil {
				return err
			}
		}
		npoints += int64(len(up))
		return w.WriteCounted(up)
	})
	if err != nil {
		return fmt.Errorf("unable to upsample %s: %w", inKey, err)
	}
	timedLog.Infof("Upsampled %d skeleton points of %d labels into %s", npoints, nlabels, outKey)
	return nil
}

// FindEndpointVectors writes the fine index and tangent of every endpoint of the coarse
// skeletons of a prefix.
func FindEndpointVectors(ctx context.Context, bucket *blob.Bucket, prefix, algorithm string, res thinning.Resolution, src mapping.Source) error {
	inKey := storage.SkeletonKey(prefix, algorithm, res, storage.DownsampleSkeletonStage)
	outKey := storage.EndpointVectorKey(prefix, algorithm, res)
	shape := src.CoarseShape()

	timedLog := thinning.NewTimeLog()
	var nendpoints int64
	nlabels, err := transferLabels(ctx, bucket, inKey, outKey, src, func(label uint64, points PointSet, w *storage.Writer) error {
		var vecs []EndpointVector
		if points.NumEndpoints() != 0 {
			m, err := src.LabelMap(label)
			if err != nil {
				return err
			}
			if vecs, err = EndpointVectors(label, shape, points, m); err != nil {
				return err
			}
		}
		nendpoints += int64(len(vecs))
		return writeEndpointVectors(w, vecs)
	})
	if err != nil {
		return fmt.Errorf("unable to find endpoint vectors for %s: %w", inKey, err)
	}
	timedLog.Infof("Found %d endpoint vectors of %d labels into %s", nendpoints, nlabels, outKey)
	return nil
}
