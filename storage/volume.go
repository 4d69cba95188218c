package storage

import (
	"context"
	"fmt"

	"github.com/Rhoana/topological-thinning/thinning"

	"github.com/dustin/go-humanize"
	"gocloud.dev/blob"
)

// ReadVolume loads a segmentation volume stored as packed little-endian uint64 labels.
func ReadVolume(ctx context.Context, bucket *blob.Bucket, key string, shape thinning.GridShape, compress thinning.Compression) (*thinning.Volume, error) {
	r, err := OpenObject(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	timedLog := thinning.NewTimeLog()
	vol, err := thinning.ReadVolume(r.Raw(), shape, compress)
	if err != nil {
		return nil, fmt.Errorf("unable to read volume %s: %v", key, err)
	}
	timedLog.Infof("Read %s volume %s (%s stored, %s compression)", shape, key, humanize.Bytes(uint64(r.Raw().Size())), compress)
	return vol, nil
}

// WriteVolume stores a segmentation volume as packed little-endian uint64 labels.
func WriteVolume(ctx context.Context, bucket *blob.Bucket, key string, vol *thinning.Volume, compress thinning.Compression) error {
	w, err := CreateObject(ctx, bucket, key)
	if err != nil {
		return err
	}
	if err := vol.Write(w.bw, compress); err != nil {
		w.Abort()
		return fmt.Errorf("unable to write volume %s: %v", key, err)
	}
	return w.Close()
}
