package mapping

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Rhoana/topological-thinning/thinning"

	"github.com/DmitriyVTitov/size"
	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/dustin/go-humanize"
)

var (
	// ErrNoRepresentative is returned when no fine voxel of a label lies within the block
	// searched for a coarse index of that label.
	ErrNoRepresentative = errors.New("no fine voxel with label in coarse block")

	// ErrMissingCorrespondence is returned when a coarse index has no fine index.
	ErrMissingCorrespondence = errors.New("coarse index has no correspondence")

	// ErrMaxLabelMismatch is returned when paired map files disagree on max label.
	ErrMaxLabelMismatch = errors.New("max label mismatch between map files")

	// ErrCountMismatch is returned when paired map files disagree on a label's count.
	ErrCountMismatch = errors.New("element count mismatch between map files")
)

// InconsistencyError describes a coarse index of a label that could not be resolved
// to a fine index.
type InconsistencyError struct {
	Label  uint64
	Coarse int64
	Err    error
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("label %d, coarse index %d: %v", e.Label, e.Coarse, e.Err)
}

func (e *InconsistencyError) Unwrap() error {
	return e.Err
}

// LabelMap maps coarse indices of one label to their representative fine indices.
type LabelMap map[int64]int64

// Fine returns the fine index for a coarse index.
func (m LabelMap) Fine(coarse int64) (int64, error) {
	fine, found := m[coarse]
	if !found {
		return 0, ErrMissingCorrespondence
	}
	return fine, nil
}

// Source provides coarse to fine maps by label.
type Source interface {
	// CoarseShape returns the grid shape of the downsampled volume.
	CoarseShape() thinning.GridShape

	// FineShape returns the grid shape of the original volume.
	FineShape() thinning.GridShape

	// LabelMap returns the map for a label.  A label without any coarse indices
	// returns an empty map and no error.
	LabelMap(label uint64) (LabelMap, error)
}

// Correspondence holds the downsample sets and coarse to fine maps of every label.
type Correspondence struct {
	Coarse   thinning.GridShape
	Fine     thinning.GridShape
	MaxLabel int64

	// Downsample holds the occupied coarse indices for each label.
	Downsample map[uint64]*roaring64.Bitmap

	// Maps holds the representative fine index for each occupied coarse index.
	Maps map[uint64]LabelMap
}

// NewCorrespondence returns an empty correspondence between two grids.
func NewCorrespondence(coarse, fine thinning.GridShape, maxLabel int64) *Correspondence {
	return &Correspondence{
		Coarse:     coarse,
		Fine:       fine,
		MaxLabel:   maxLabel,
		Downsample: make(map[uint64]*roaring64.Bitmap),
		Maps:       make(map[uint64]LabelMap),
	}
}

func (c *Correspondence) CoarseShape() thinning.GridShape {
	return c.Coarse
}

func (c *Correspondence) FineShape() thinning.GridShape {
	return c.Fine
}

func (c *Correspondence) LabelMap(label uint64) (LabelMap, error) {
	return c.Maps[label], nil
}

// Set records the fine representative of a coarse index for a label.
func (c *Correspondence) Set(label uint64, coarse, fine int64) {
	set, found := c.Downsample[label]
	if !found {
		set = roaring64.New()
		c.Downsample[label] = set
	}
	set.Add(uint64(coarse))
	m, found := c.Maps[label]
	if !found {
		m = make(LabelMap)
		c.Maps[label] = m
	}
	m[coarse] = fine
}

// FineIndex returns the fine index for a coarse index of a label.
func (c *Correspondence) FineIndex(label uint64, coarse int64) (int64, error) {
	fine, err := c.Maps[label].Fine(coarse)
	if err != nil {
		return 0, &InconsistencyError{Label: label, Coarse: coarse, Err: err}
	}
	return fine, nil
}

// Labels returns the labels with at least one coarse index in ascending order.
func (c *Correspondence) Labels() []uint64 {
	labels := make([]uint64, 0, len(c.Downsample))
	for label, set := range c.Downsample {
		if !set.IsEmpty() {
			labels = append(labels, label)
		}
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

// Elements returns the coarse indices of a label in ascending order along with the
// matching fine indices.
func (c *Correspondence) Elements(label uint64) (coarse, fine []int64) {
	set, found := c.Downsample[label]
	if !found {
		return nil, nil
	}
	m := c.Maps[label]
	coarse = make([]int64, 0, set.GetCardinality())
	fine = make([]int64, 0, set.GetCardinality())
	it := set.Iterator()
	for it.HasNext() {
		ci := int64(it.Next())
		coarse = append(coarse, ci)
		fine = append(fine, m[ci])
	}
	return
}

// NumElements returns the total number of coarse indices across all labels.
func (c *Correspondence) NumElements() uint64 {
	var n uint64
	for _, set := range c.Downsample {
		n += set.GetCardinality()
	}
	return n
}

func (c *Correspondence) String() string {
	return fmt.Sprintf("correspondence of %d labels, %d elements, coarse %s, fine %s, ~%s in memory",
		len(c.Maps), c.NumElements(), c.Coarse, c.Fine, humanize.Bytes(uint64(size.Of(c.Maps))))
}
