package thinning

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Volume is a dense segmentation in which each voxel of a grid holds a label.  Label 0
// is background.  Labels are stored in linear index order, i.e., x varies fastest.
type Volume struct {
	Shape  GridShape
	Labels []uint64
}

// NewVolume returns a Volume after checking the number of labels matches the shape.
func NewVolume(shape GridShape, labels []uint64) (*Volume, error) {
	if err := shape.Valid(); err != nil {
		return nil, err
	}
	if int64(len(labels)) != shape.NumVoxels() {
		return nil, fmt.Errorf("volume of shape %s needs %d labels, got %d", shape, shape.NumVoxels(), len(labels))
	}
	return &Volume{Shape: shape, Labels: labels}, nil
}

// Label returns the label at the given linear index.
func (v *Volume) Label(index int64) uint64 {
	return v.Labels[index]
}

// LabelAt returns the label at the given (x, y, z) coordinate.
func (v *Volume) LabelAt(p Point3d) uint64 {
	return v.Labels[v.Shape.Index(p)]
}

// MaxLabel returns one more than the largest label in the volume, so valid labels
// are in [0, MaxLabel).
func (v *Volume) MaxLabel() (uint64, error) {
	var max uint64
	for _, label := range v.Labels {
		if label > max {
			max = label
		}
	}
	if max >= math.MaxInt64 {
		return 0, fmt.Errorf("label %d exceeds the representable index range", max)
	}
	return max + 1, nil
}

// ReadVolume reads a packed array of little-endian uint64 labels in z, y, x order.
func ReadVolume(r io.Reader, shape GridShape, compress Compression) (*Volume, error) {
	if err := shape.Valid(); err != nil {
		return nil, err
	}
	ur, err := UncompressReader(r, compress)
	if err != nil {
		return nil, err
	}
	defer ur.Close()

	labels := make([]uint64, shape.NumVoxels())
	if err := binary.Read(bufio.NewReaderSize(ur, 1*Mega), binary.LittleEndian, labels); err != nil {
		return nil, fmt.Errorf("unable to read %d labels for volume %s: %v", len(labels), shape, err)
	}
	return &Volume{Shape: shape, Labels: labels}, nil
}

// Write stores the volume as packed little-endian uint64 with optional compression.
func (v *Volume) Write(w io.Writer, compress Compression) error {
	cw, err := CompressWriter(w, compress)
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(cw, 1*Mega)
	if err := binary.Write(bw, binary.LittleEndian, v.Labels); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return cw.Close()
}
