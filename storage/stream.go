package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/Rhoana/topological-thinning/thinning"
)

// ErrShortRead is returned when a stream ends before a complete value is read.
var ErrShortRead = errors.New("truncated stream")

// maxAlloc caps the number of values allocated up front when reading a counted
// list so a corrupt count fails on the short read instead of on allocation.
const maxAlloc = 1 << 16

// Header begins every map, point set, and vector file.
type Header struct {
	Shape    thinning.GridShape
	MaxLabel int64
}

func (h Header) String() string {
	return fmt.Sprintf("grid %s, max label %d", h.Shape, h.MaxLabel)
}

// Reader reads native-endian int64 and float64 values.
type Reader struct {
	r     *bufio.Reader
	name  string
	nread int64
	buf   [8]byte
}

// NewReader returns a Reader where name is used in error messages.
func NewReader(r io.Reader, name string) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, thinning.Mega), name: name}
}

func (r *Reader) read8() ([]byte, error) {
	if _, err := io.ReadFull(r.r, r.buf[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("failed to read %s at byte %d: %w", r.name, r.nread, ErrShortRead)
		}
		return nil, fmt.Errorf("failed to read %s: %v", r.name, err)
	}
	r.nread += 8
	return r.buf[:], nil
}

// ReadInt64 reads a single int64.
func (r *Reader) ReadInt64() (int64, error) {
	b, err := r.read8()
	if err != nil {
		return 0, err
	}
	return int64(binary.NativeEndian.Uint64(b)), nil
}

// ReadFloat64 reads a single float64.
func (r *Reader) ReadFloat64() (float64, error) {
	b, err := r.read8()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.NativeEndian.Uint64(b)), nil
}

// ReadInt64s reads n int64 values.
func (r *Reader) ReadInt64s(n int64) ([]int64, error) {
	if n < 0 {
		return nil, fmt.Errorf("bad count %d in %s at byte %d", n, r.name, r.nread-8)
	}
	alloc := n
	if alloc > maxAlloc {
		alloc = maxAlloc
	}
	values := make([]int64, 0, alloc)
	for i := int64(0); i < n; i++ {
		v, err := r.ReadInt64()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// ReadCounted reads a count followed by that many int64 values.
func (r *Reader) ReadCounted() ([]int64, error) {
	n, err := r.ReadInt64()
	if err != nil {
		return nil, err
	}
	return r.ReadInt64s(n)
}

// ReadHeader reads the grid shape (z, y, x) and max label.
func (r *Reader) ReadHeader() (h Header, err error) {
	for axis := 0; axis < 3; axis++ {
		if h.Shape[axis], err = r.ReadInt64(); err != nil {
			return
		}
	}
	if h.MaxLabel, err = r.ReadInt64(); err != nil {
		return
	}
	if h.MaxLabel < 0 {
		err = fmt.Errorf("bad max label %d in %s", h.MaxLabel, r.name)
	}
	return
}

// BytesRead returns the number of bytes consumed so far.
func (r *Reader) BytesRead() int64 {
	return r.nread
}

// Writer writes native-endian int64 and float64 values.
type Writer struct {
	w        *bufio.Writer
	name     string
	nwritten int64
	buf      [8]byte
}

// NewWriter returns a Writer where name is used in error messages.
func NewWriter(w io.Writer, name string) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, thinning.Mega), name: name}
}

func (w *Writer) write8() error {
	if _, err := w.w.Write(w.buf[:]); err != nil {
		return fmt.Errorf("failed to write %s: %v", w.name, err)
	}
	w.nwritten += 8
	return nil
}

// WriteInt64 writes a single int64.
func (w *Writer) WriteInt64(v int64) error {
	binary.NativeEndian.PutUint64(w.buf[:], uint64(v))
	return w.write8()
}

// WriteFloat64 writes a single float64.
func (w *Writer) WriteFloat64(v float64) error {
	binary.NativeEndian.PutUint64(w.buf[:], math.Float64bits(v))
	return w.write8()
}

// WriteInt64s writes the values without a count.
func (w *Writer) WriteInt64s(values []int64) error {
	for _, v := range values {
		if err := w.WriteInt64(v); err != nil {
			return err
		}
	}
	return nil
}

// WriteCounted writes the number of values followed by the values.
func (w *Writer) WriteCounted(values []int64) error {
	if err := w.WriteInt64(int64(len(values))); err != nil {
		return err
	}
	return w.WriteInt64s(values)
}

// WriteHeader writes the grid shape (z, y, x) and max label.
func (w *Writer) WriteHeader(h Header) error {
	for axis := 0; axis < 3; axis++ {
		if err := w.WriteInt64(h.Shape[axis]); err != nil {
			return err
		}
	}
	return w.WriteInt64(h.MaxLabel)
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %v", w.name, err)
	}
	return nil
}

// BytesWritten returns the number of bytes written so far, including buffered bytes.
func (w *Writer) BytesWritten() int64 {
	return w.nwritten
}
