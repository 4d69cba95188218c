package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rhoana/topological-thinning/thinning"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
)

// ErrNotFound is returned when a requested object does not exist in the bucket.
var ErrNotFound = errors.New("object not found")

// OpenBucket returns a blob.Bucket for the given reference.
// The reference should be of the form:
//
//	gs://<bucketname>
//	s3://<bucketname>?region=<region>
//	file:///<absolute directory>
//	mem://
//	<directory>
//
// A reference without a scheme is a local directory, created if necessary.
func OpenBucket(ctx context.Context, ref string) (*blob.Bucket, error) {
	if ref == "" {
		return nil, fmt.Errorf("no bucket reference given")
	}
	if strings.Contains(ref, "://") {
		bucket, err := blob.OpenBucket(ctx, ref)
		if err != nil {
			thinning.Errorf("Can't open bucket reference @ %q: %v\n", ref, err)
			return nil, err
		}
		return bucket, nil
	}
	dir, err := filepath.Abs(ref)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("can't make directory at %s: %v", dir, err)
	}
	return fileblob.OpenBucket(dir, nil)
}

// ObjectReader streams fixed-width values from a bucket object.
type ObjectReader struct {
	*Reader
	br *blob.Reader
}

// OpenObject returns a reader for the object at key.  A missing object returns an
// error wrapping ErrNotFound.
func OpenObject(ctx context.Context, bucket *blob.Bucket, key string) (*ObjectReader, error) {
	br, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("failed to read %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %v", key, err)
	}
	return &ObjectReader{Reader: NewReader(br, key), br: br}, nil
}

// Raw returns the underlying object stream for readers that do their own decoding.
func (r *ObjectReader) Raw() *blob.Reader {
	return r.br
}

func (r *ObjectReader) Close() error {
	return r.br.Close()
}

// ObjectWriter streams fixed-width values into a bucket object.  The object only
// becomes visible after a successful Close.
type ObjectWriter struct {
	*Writer
	key    string
	bw     *blob.Writer
	cancel context.CancelFunc
}

// CreateObject returns a writer for the object at key.
func CreateObject(ctx context.Context, bucket *blob.Bucket, key string) (*ObjectWriter, error) {
	wctx, cancel := context.WithCancel(ctx)
	bw, err := bucket.NewWriter(wctx, key, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to write %s: %v", key, err)
	}
	return &ObjectWriter{
		Writer: NewWriter(bw, key),
		key:    key,
		bw:     bw,
		cancel: cancel,
	}, nil
}

// Close flushes buffered values and commits the object.
func (w *ObjectWriter) Close() error {
	defer w.cancel()
	if err := w.Flush(); err != nil {
		w.Abort()
		return err
	}
	if err := w.bw.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %v", w.key, err)
	}
	thinning.Debugf("Wrote %d bytes to %s\n", w.BytesWritten(), w.key)
	return nil
}

// Abort discards the object.  Calling Close after Abort returns an error.
func (w *ObjectWriter) Abort() {
	w.cancel()
	w.bw.Close()
}
