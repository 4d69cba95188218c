package mapping

import (
	"context"
	"fmt"

	"github.com/Rhoana/topological-thinning/storage"
	"github.com/Rhoana/topological-thinning/thinning"

	"gocloud.dev/blob"
)

// WriteMaps stores the correspondence as a downsample map, listing the coarse indices
// of each label, and a parallel upsample map listing the matching fine indices.  Both
// objects list every label in [0, MaxLabel).  On error neither object is committed.
func WriteMaps(ctx context.Context, bucket *blob.Bucket, prefix string, res thinning.Resolution, c *Correspondence) error {
	dkey := storage.DownsampleMapKey(prefix, res)
	ukey := storage.UpsampleMapKey(prefix, res)

	dw, err := storage.CreateObject(ctx, bucket, dkey)
	if err != nil {
		return err
	}
	uw, err := storage.CreateObject(ctx, bucket, ukey)
	if err != nil {
		dw.Abort()
		return err
	}
	if err := writeMaps(dw, uw, c); err != nil {
		dw.Abort()
		uw.Abort()
		return err
	}
	if err := dw.Close(); err != nil {
		uw.Abort()
		return err
	}
	if err := uw.Close(); err != nil {
		return err
	}
	thinning.Infof("Wrote %s and %s for %d labels\n", dkey, ukey, c.MaxLabel)
	return nil
}

func writeMaps(dw, uw *storage.ObjectWriter, c *Correspondence) error {
	if err := dw.WriteHeader(storage.Header{Shape: c.Coarse, MaxLabel: c.MaxLabel}); err != nil {
		return err
	}
	if err := uw.WriteHeader(storage.Header{Shape: c.Fine, MaxLabel: c.MaxLabel}); err != nil {
		return err
	}
	for label := int64(0); label < c.MaxLabel; label++ {
		coarse, fine := c.Elements(uint64(label))
		if err := dw.WriteCounted(coarse); err != nil {
			return err
		}
		if err := uw.WriteCounted(fine); err != nil {
			return err
		}
	}
	return nil
}

// ReadMaps loads the correspondence stored by WriteMaps.  It fails if either map is
// missing or truncated, if the two disagree on max label or on any label's count, or if
// an index lies outside its grid.
func ReadMaps(ctx context.Context, bucket *blob.Bucket, prefix string, res thinning.Resolution) (*Correspondence, error) {
	dkey := storage.DownsampleMapKey(prefix, res)
	ukey := storage.UpsampleMapKey(prefix, res)

	dr, err := storage.OpenObject(ctx, bucket, dkey)
	if err != nil {
		return nil, err
	}
	defer dr.Close()
	ur, err := storage.OpenObject(ctx, bucket, ukey)
	if err != nil {
		return nil, err
	}
	defer ur.Close()

	timedLog := thinning.NewTimeLog()
	dh, err := dr.ReadHeader()
	if err != nil {
		return nil, err
	}
	uh, err := ur.ReadHeader()
	if err != nil {
		return nil, err
	}
	if dh.MaxLabel != uh.MaxLabel {
		return nil, fmt.Errorf("%s has max label %d, %s has %d: %w", dkey, dh.MaxLabel, ukey, uh.MaxLabel, ErrMaxLabelMismatch)
	}

	c := NewCorrespondence(dh.Shape, uh.Shape, dh.MaxLabel)
	for label := int64(0); label < dh.MaxLabel; label++ {
		coarse, err := dr.ReadCounted()
		if err != nil {
			return nil, err
		}
		fine, err := ur.ReadCounted()
		if err != nil {
			return nil, err
		}
		if len(coarse) != len(fine) {
			return nil, fmt.Errorf("label %d has %d elements in %s and %d in %s: %w",
				label, len(coarse), dkey, len(fine), ukey, ErrCountMismatch)
		}
		for i, ci := range coarse {
			if !c.Coarse.ContainsIndex(ci) {
				return nil, fmt.Errorf("label %d has coarse index %d outside grid %s in %s", label, ci, c.Coarse, dkey)
			}
			if fine[i] < 0 {
				thinning.Warningf("Label %d, coarse index %d has no fine representative in %s\n", label, ci, ukey)
				continue
			}
			if !c.Fine.ContainsIndex(fine[i]) {
				return nil, fmt.Errorf("label %d has fine index %d outside grid %s in %s", label, fine[i], c.Fine, ukey)
			}
			c.Set(uint64(label), ci, fine[i])
		}
	}
	timedLog.Infof("Read %s", c)
	return c, nil
}
