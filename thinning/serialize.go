/*
	This file supports compression of segmentation volume data.
*/

package thinning

import (
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is the format of compression for stored volume data.
type Compression uint8

const (
	Uncompressed Compression = iota
	Gzip
	Zstd
	Snappy
	LZ4
)

func (compress Compression) String() string {
	switch compress {
	case Uncompressed:
		return "none"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case Snappy:
		return "snappy"
	case LZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// ParseCompression returns the Compression for a name like "zstd".  An empty
// string is read as no compression.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return Uncompressed, nil
	case "gzip", "gz":
		return Gzip, nil
	case "zstd", "zst":
		return Zstd, nil
	case "snappy", "sz":
		return Snappy, nil
	case "lz4":
		return LZ4, nil
	default:
		return Uncompressed, fmt.Errorf("unknown compression %q", s)
	}
}

// UncompressReader wraps r so reads return uncompressed bytes.  Snappy uses the
// framed stream format.
func UncompressReader(r io.Reader, compress Compression) (io.ReadCloser, error) {
	switch compress {
	case Uncompressed:
		return io.NopCloser(r), nil
	case Gzip:
		return gzip.NewReader(r)
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("illegal compression (%s) during decompression", compress)
	}
}

// CompressWriter wraps w so written bytes are compressed.  The returned writer must
// be closed to flush the compressed stream, which does not close w.
func CompressWriter(w io.Writer, compress Compression) (io.WriteCloser, error) {
	switch compress {
	case Uncompressed:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		return zstd.NewWriter(w)
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case LZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("illegal compression (%s) during compression", compress)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
