package skeleton

import (
	"context"
	"errors"
	"testing"

	"github.com/Rhoana/topological-thinning/mapping"
	"github.com/Rhoana/topological-thinning/storage"
	"github.com/Rhoana/topological-thinning/thinning"

	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"
)

var (
	fineRes   = thinning.Resolution{1, 1, 1}
	coarseRes = thinning.Resolution{2, 2, 2}
)

// writeCoarseSkeleton builds and stores the maps for a block of label 1 filling a
// 4 x 4 x 8 volume, then stores a coarse skeleton along x at y = 1, z = 1.
func writeCoarseSkeleton(t *testing.T, ctx context.Context, bucket *blob.Bucket, points PointSet) {
	shape := thinning.GridShape{4, 4, 8}
	labels := make([]uint64, shape.NumVoxels())
	for i := range labels {
		labels[i] = 1
	}
	vol, err := thinning.NewVolume(shape, labels)
	if err != nil {
		t.Fatal(err)
	}
	c, err := mapping.Build(vol, fineRes, coarseRes)
	if err != nil {
		t.Fatal(err)
	}
	if err := mapping.WriteMaps(ctx, bucket, "test", coarseRes, c); err != nil {
		t.Fatal(err)
	}
	key := storage.SkeletonKey("test", storage.DefaultAlgorithm, coarseRes, storage.DownsampleSkeletonStage)
	h := storage.Header{Shape: c.Coarse, MaxLabel: c.MaxLabel}
	if err := WritePointSets(ctx, bucket, key, h, []PointSet{nil, points}); err != nil {
		t.Fatal(err)
	}
}

func TestPipeline(t *testing.T) {
	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	writeCoarseSkeleton(t, ctx, bucket, PointSet{-12, 13, 14, -15})
	c, err := mapping.ReadMaps(ctx, bucket, "test", coarseRes)
	if err != nil {
		t.Fatal(err)
	}
	if err := ApplyUpsample(ctx, bucket, "test", storage.DefaultAlgorithm, coarseRes, c); err != nil {
		t.Fatalf("unable to upsample: %v\n", err)
	}
	if err := FindEndpointVectors(ctx, bucket, "test", storage.DefaultAlgorithm, coarseRes, c); err != nil {
		t.Fatalf("unable to find endpoint vectors: %v\n", err)
	}

	key := storage.SkeletonKey("test", storage.DefaultAlgorithm, coarseRes, storage.UpsampleSkeletonStage)
	h, sets, err := ReadPointSets(ctx, bucket, key)
	if err != nil {
		t.Fatal(err)
	}
	if h.Shape != (thinning.GridShape{4, 4, 8}) || h.MaxLabel != 2 {
		t.Errorf("bad upsampled header: %s\n", h)
	}
	expected := PointSet{-121, 123, 125, -127}
	if len(sets) != 2 || len(sets[0]) != 0 || len(sets[1]) != len(expected) {
		t.Fatalf("bad upsampled point sets: %v\n", sets)
	}
	for i := range expected {
		if sets[1][i] != expected[i] {
			t.Errorf("expected %v, got %v\n", expected, sets[1])
			break
		}
	}

	shape, skeletons, err := ReadSkeletons(ctx, bucket, "test", storage.DefaultAlgorithm, coarseRes)
	if err != nil {
		t.Fatalf("unable to read skeletons: %v\n", err)
	}
	if shape != h.Shape || len(skeletons) != 2 {
		t.Fatalf("expected 2 skeletons on %s, got %d on %s\n", h.Shape, len(skeletons), shape)
	}
	s := skeletons[1]
	if len(s.Joints) != 2 || s.Joints[0] != 123 || s.Joints[1] != 125 {
		t.Errorf("bad joints: %s\n", s)
	}
	if len(s.Endpoints) != 2 || s.Endpoints[0] != 121 || s.Endpoints[1] != 127 {
		t.Errorf("bad endpoints: %s\n", s)
	}
	if v := s.Vectors[121]; !vectorsEqual(v, thinning.Vector3d{-1, 0, 0}) {
		t.Errorf("expected (-1,0,0) at endpoint 121, got %s\n", v)
	}
	if v := s.Vectors[127]; !vectorsEqual(v, thinning.Vector3d{1, 0, 0}) {
		t.Errorf("expected (1,0,0) at endpoint 127, got %s\n", v)
	}
}

func TestPipelineMissingMap(t *testing.T) {
	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	writeCoarseSkeleton(t, ctx, bucket, PointSet{-12, 13})
	c, err := mapping.ReadMaps(ctx, bucket, "test", coarseRes)
	if err != nil {
		t.Fatal(err)
	}
	delete(c.Maps[1], 13)

	err = ApplyUpsample(ctx, bucket, "test", storage.DefaultAlgorithm, coarseRes, c)
	if !errors.Is(err, mapping.ErrMissingCorrespondence) {
		t.Fatalf("expected missing correspondence, got %v\n", err)
	}
	key := storage.SkeletonKey("test", storage.DefaultAlgorithm, coarseRes, storage.UpsampleSkeletonStage)
	if exists, _ := bucket.Exists(ctx, key); exists {
		t.Errorf("upsampled skeleton should not be written after failure\n")
	}

	delete(c.Maps[1], 12)
	err = FindEndpointVectors(ctx, bucket, "test", storage.DefaultAlgorithm, coarseRes, c)
	if !errors.Is(err, mapping.ErrMissingCorrespondence) {
		t.Errorf("expected missing correspondence for endpoint vectors, got %v\n", err)
	}
}

func TestReadSkeletonsMismatch(t *testing.T) {
	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	pkey := storage.SkeletonKey("test", storage.DefaultAlgorithm, coarseRes, storage.UpsampleSkeletonStage)
	vkey := storage.EndpointVectorKey("test", storage.DefaultAlgorithm, coarseRes)
	h := storage.Header{Shape: thinning.GridShape{4, 4, 8}, MaxLabel: 2}
	if err := WritePointSets(ctx, bucket, pkey, h, []PointSet{nil, {-121, 123}}); err != nil {
		t.Fatal(err)
	}
	vecs := [][]EndpointVector{nil, {{121, thinning.Vector3d{1, 0, 0}}, {123, thinning.Vector3d{0, 1, 0}}}}
	if err := WriteEndpointVectors(ctx, bucket, vkey, h, vecs); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadSkeletons(ctx, bucket, "test", storage.DefaultAlgorithm, coarseRes); !errors.Is(err, ErrEndpointMismatch) {
		t.Errorf("expected endpoint mismatch, got %v\n", err)
	}

	h.MaxLabel = 3
	if err := WriteEndpointVectors(ctx, bucket, vkey, h, vecs[:1]); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadSkeletons(ctx, bucket, "test", storage.DefaultAlgorithm, coarseRes); !errors.Is(err, ErrHeaderMismatch) {
		t.Errorf("expected header mismatch, got %v\n", err)
	}
}

func TestHugeMaxLabel(t *testing.T) {
	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	pkey := storage.SkeletonKey("test", storage.DefaultAlgorithm, coarseRes, storage.UpsampleSkeletonStage)
	vkey := storage.EndpointVectorKey("test", storage.DefaultAlgorithm, coarseRes)
	h := storage.Header{Shape: thinning.GridShape{2, 2, 2}, MaxLabel: 1 << 60}
	for _, key := range []string{pkey, vkey} {
		w, err := storage.CreateObject(ctx, bucket, key)
		if err != nil {
			t.Fatal(err)
		}
		if err := w.WriteHeader(h); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
		if attrs, err := bucket.Attributes(ctx, key); err != nil || attrs.Size != 32 {
			t.Fatalf("expected 32-byte header only in %s: %v, %v\n", key, attrs, err)
		}
	}

	if _, _, err := ReadPointSets(ctx, bucket, pkey); !errors.Is(err, storage.ErrShortRead) {
		t.Errorf("expected short read of point sets, got %v\n", err)
	}
	if _, _, err := ReadEndpointVectors(ctx, bucket, vkey); !errors.Is(err, storage.ErrShortRead) {
		t.Errorf("expected short read of endpoint vectors, got %v\n", err)
	}
	if _, _, err := ReadSkeletons(ctx, bucket, "test", storage.DefaultAlgorithm, coarseRes); !errors.Is(err, storage.ErrShortRead) {
		t.Errorf("expected short read of skeletons, got %v\n", err)
	}
}
