package skeleton

import (
	"context"
	"fmt"

	"github.com/Rhoana/topological-thinning/storage"
	"github.com/Rhoana/topological-thinning/thinning"

	"gocloud.dev/blob"
)

// EndpointVector is the fine index of an endpoint with its unit tangent in coarse grid
// steps.
type EndpointVector struct {
	Fine   int64
	Vector thinning.Vector3d
}

// writeEndpointVectors writes a count and then each endpoint as index, vz, vy, vx.
func writeEndpointVectors(w *storage.Writer, vecs []EndpointVector) error {
	if err := w.WriteInt64(int64(len(vecs))); err != nil {
		return err
	}
	for _, ev := range vecs {
		if err := w.WriteInt64(ev.Fine); err != nil {
			return err
		}
		for dim := 2; dim >= 0; dim-- {
			if err := w.WriteFloat64(ev.Vector[dim]); err != nil {
				return err
			}
		}
	}
	return nil
}

func readEndpointVectors(r *storage.Reader) ([]EndpointVector, error) {
	n, err := r.ReadInt64()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("bad endpoint count %d at byte %d", n, r.BytesRead()-8)
	}
	var vecs []EndpointVector
	for i := int64(0); i < n; i++ {
		var ev EndpointVector
		if ev.Fine, err = r.ReadInt64(); err != nil {
			return nil, err
		}
		for dim := 2; dim >= 0; dim-- {
			if ev.Vector[dim], err = r.ReadFloat64(); err != nil {
				return nil, err
			}
		}
		vecs = append(vecs, ev)
	}
	return vecs, nil
}

// WriteEndpointVectors stores the endpoint vectors of each label in [0, h.MaxLabel).
// Missing labels are written without endpoints.
func WriteEndpointVectors(ctx context.Context, bucket *blob.Bucket, key string, h storage.Header, all [][]EndpointVector) error {
	if int64(len(all)) > h.MaxLabel {
		return fmt.Errorf("%d endpoint lists exceed max label %d for %s", len(all), h.MaxLabel, key)
	}
	w, err := storage.CreateObject(ctx, bucket, key)
	if err != nil {
		return err
	}
	if err := w.WriteHeader(h); err != nil {
		w.Abort()
		return err
	}
	for label := int64(0); label < h.MaxLabel; label++ {
		var vecs []EndpointVector
		if label < int64(len(all)) {
			vecs = all[label]
		}
		if err := writeEndpointVectors(w.Writer, vecs); err != nil {
			w.Abort()
			return err
		}
	}
	return w.Close()
}

// ReadEndpointVectors loads every label's endpoint vectors from an object.
func ReadEndpointVectors(ctx context.Context, bucket *blob.Bucket, key string) (storage.Header, [][]EndpointVector, error) {
	r, err := storage.OpenObject(ctx, bucket, key)
	if err != nil {
		return storage.Header{}, nil, err
	}
	defer r.Close()

	h, err := r.ReadHeader()
	if err != nil {
		return h, nil, err
	}
	all := make([][]EndpointVector, 0, labelAlloc(h.MaxLabel))
	for label := int64(0); label < h.MaxLabel; label++ {
		vecs, err := readEndpointVectors(r.Reader)
		if err != nil {
			return h, nil, err
		}
		all = append(all, vecs)
	}
	return h, all, nil
}
