package mapping

import (
	"errors"
	"testing"

	"github.com/Rhoana/topological-thinning/thinning"
)

func TestBuildUniformCube(t *testing.T) {
	vol := uniformVolume(thinning.GridShape{4, 4, 4}, 1)
	c, err := Build(vol, thinning.Resolution{1, 1, 1}, thinning.Resolution{2, 2, 2})
	if err != nil {
		t.Fatalf("unable to build correspondence: %v\n", err)
	}
	if c.Coarse != (thinning.GridShape{2, 2, 2}) {
		t.Fatalf("expected 2x2x2 coarse grid, got %s\n", c.Coarse)
	}
	if c.MaxLabel != 2 {
		t.Errorf("expected max label 2, got %d\n", c.MaxLabel)
	}
	coarse, fine := c.Elements(1)
	if len(coarse) != 8 {
		t.Fatalf("expected 8 coarse indices, got %d\n", len(coarse))
	}
	for i, ci := range coarse {
		if ci != int64(i) {
			t.Errorf("expected coarse indices in order, got %v\n", coarse)
		}
		cell := c.Coarse.Coords(ci)
		pt := vol.Shape.Coords(fine[i])
		for dim := 0; dim < 3; dim++ {
			if pt[dim]/2 != cell[dim] {
				t.Errorf("fine voxel %s for coarse index %d does not downsample to %s\n", pt, ci, cell)
			}
		}
	}

	// Block centers are exact for a uniform label.
	expected := map[int64]int64{0: 21, 1: 23, 7: 63}
	for ci, fi := range expected {
		got, err := c.FineIndex(1, ci)
		if err != nil {
			t.Fatal(err)
		}
		if got != fi {
			t.Errorf("coarse index %d: expected fine index %d, got %d\n", ci, fi, got)
		}
	}
	if labels := c.Labels(); len(labels) != 1 || labels[0] != 1 {
		t.Errorf("expected only label 1, got %v\n", labels)
	}
}

// Fine indices 20 and 22 are both one voxel from the center of coarse cell 0, and only
// 22 lies in coarse cell 1.
func TestBuildTieBreak(t *testing.T) {
	shape := thinning.GridShape{4, 4, 4}
	vol := &thinning.Volume{Shape: shape, Labels: make([]uint64, shape.NumVoxels())}
	vol.Labels[20] = 1
	vol.Labels[22] = 1
	c, err := Build(vol, thinning.Resolution{1, 1, 1}, thinning.Resolution{2, 2, 2})
	if err != nil {
		t.Fatalf("unable to build correspondence: %v\n", err)
	}
	coarse, fine := c.Elements(1)
	if len(coarse) != 2 || coarse[0] != 0 || coarse[1] != 1 {
		t.Fatalf("expected coarse indices [0 1], got %v\n", coarse)
	}
	if fine[0] != 20 {
		t.Errorf("expected first fine index in scan order (20) for coarse index 0, got %d\n", fine[0])
	}
	if fine[1] != 22 {
		t.Errorf("expected fine index 22 for coarse index 1, got %d\n", fine[1])
	}
}

func TestBuildCoverage(t *testing.T) {
	vol := randomVolume(thinning.GridShape{6, 5, 7}, 4)
	fineRes := thinning.Resolution{1, 1, 1}
	coarseRes := thinning.Resolution{3, 2, 2.5}
	c, err := Build(vol, fineRes, coarseRes)
	if err != nil {
		t.Fatalf("unable to build correspondence: %v\n", err)
	}
	ratio, _ := thinning.DownsampleRatio(fineRes, coarseRes)
	if c.Coarse != ratio.CoarseShape(vol.Shape) {
		t.Errorf("coarse grid %s differs from %s\n", c.Coarse, ratio.CoarseShape(vol.Shape))
	}

	// every labeled voxel's coarse cell is in its label's set
	for i, label := range vol.Labels {
		if label == 0 {
			continue
		}
		ci := c.Coarse.Index(ratio.Down(vol.Shape.Coords(int64(i))))
		if set := c.Downsample[label]; set == nil || !set.Contains(uint64(ci)) {
			t.Fatalf("label %d at fine index %d missing coarse index %d\n", label, i, ci)
		}
	}
	if _, found := c.Downsample[0]; found {
		t.Errorf("background label should not be downsampled\n")
	}

	// every representative carries its label
	for _, label := range c.Labels() {
		coarse, fine := c.Elements(label)
		if len(coarse) == 0 || len(coarse) != len(fine) {
			t.Fatalf("label %d has %d coarse and %d fine indices\n", label, len(coarse), len(fine))
		}
		for i, fi := range fine {
			if vol.Labels[fi] != label {
				t.Errorf("label %d coarse index %d maps to fine index %d with label %d\n",
					label, coarse[i], fi, vol.Labels[fi])
			}
		}
	}
}

func TestBuildBadResolution(t *testing.T) {
	vol := uniformVolume(thinning.GridShape{2, 2, 2}, 1)
	if _, err := Build(vol, thinning.Resolution{1, 0, 1}, thinning.Resolution{2, 2, 2}); err == nil {
		t.Errorf("expected error for zero resolution\n")
	}
}

func TestNoRepresentative(t *testing.T) {
	vol := uniformVolume(thinning.GridShape{4, 4, 4}, 1)
	ratio := thinning.Ratio{2, 2, 2}
	_, err := representative(vol, ratio, thinning.GridShape{2, 2, 2}, 5, 3)
	if !errors.Is(err, ErrNoRepresentative) {
		t.Fatalf("expected no representative error, got %v\n", err)
	}
	var ie *InconsistencyError
	if !errors.As(err, &ie) {
		t.Fatalf("expected inconsistency error, got %T\n", err)
	}
	if ie.Label != 5 || ie.Coarse != 3 {
		t.Errorf("bad inconsistency error: %v\n", ie)
	}
}

func TestMissingCorrespondence(t *testing.T) {
	c := NewCorrespondence(thinning.GridShape{2, 2, 2}, thinning.GridShape{4, 4, 4}, 3)
	c.Set(2, 1, 23)
	if fi, err := c.FineIndex(2, 1); err != nil || fi != 23 {
		t.Errorf("expected fine index 23, got %d, %v\n", fi, err)
	}
	if _, err := c.FineIndex(2, 0); !errors.Is(err, ErrMissingCorrespondence) {
		t.Errorf("expected missing correspondence, got %v\n", err)
	}
	if _, err := c.FineIndex(1, 1); !errors.Is(err, ErrMissingCorrespondence) {
		t.Errorf("expected missing correspondence for absent label, got %v\n", err)
	}
	m, err := c.LabelMap(1)
	if err != nil || len(m) != 0 {
		t.Errorf("expected empty map for absent label, got %v, %v\n", m, err)
	}
	if c.NumElements() != 1 {
		t.Errorf("expected 1 element, got %d\n", c.NumElements())
	}
}
