package main

import (
	"context"
	"fmt"

	"github.com/Rhoana/topological-thinning/config"
	"github.com/Rhoana/topological-thinning/mapping"
	"github.com/Rhoana/topological-thinning/skeleton"
	"github.com/Rhoana/topological-thinning/storage"
	"github.com/Rhoana/topological-thinning/storage/badger"
	"github.com/Rhoana/topological-thinning/thinning"

	"gocloud.dev/blob"
)

type command func(ctx context.Context, cfg *config.Config, prefix string) error

var commands = map[string]command{
	"downsample": downsample,
	"index":      index,
	"vectors":    vectors,
	"upsample":   upsample,
	"show":       show,
}

func about(cfg *config.Config) error {
	fmt.Printf("Configuration %s: %s\n", cfg.Location(), cfg)
	for _, prefix := range cfg.Prefixes() {
		d := cfg.Dataset[prefix]
		fmt.Printf("  %-16s grid %s @ %s nm, downsample %s nm, segmentation %s/%s\n",
			prefix, d.GridSize, d.Resolution, d.Downsample, d.SegmentationRoot, d.Segmentation)
	}
	return nil
}

// openSkeletons returns the bucket of skeleton and map objects with the dataset of a prefix.
func openSkeletons(ctx context.Context, cfg *config.Config, prefix string) (*blob.Bucket, config.Dataset, error) {
	d, err := cfg.GetDataset(prefix)
	if err != nil {
		return nil, d, err
	}
	bucket, err := storage.OpenBucket(ctx, cfg.Skeletons.Root)
	if err != nil {
		return nil, d, err
	}
	return bucket, d, nil
}

func openIndexDB(cfg *config.Config) (*badger.DB, error) {
	if cfg.Index.Path == "" {
		return nil, fmt.Errorf("no [index] path given in config %s", cfg.Location())
	}
	return badger.Open(cfg.Index.Path, cfg.Index.Badger)
}

// openSource returns the correspondence of a prefix from the index or the map files.
// The returned function releases any resources held by the source.
func openSource(ctx context.Context, cfg *config.Config, bucket *blob.Bucket, prefix string, res thinning.Resolution) (mapping.Source, func(), error) {
	if !*useIndex {
		c, err := mapping.ReadMaps(ctx, bucket, prefix, res)
		if err != nil {
			return nil, nil, err
		}
		return c, func() {}, nil
	}
	db, err := openIndexDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	idx, err := mapping.OpenIndex(db, prefix, res, cfg.Index.CacheMB*thinning.Mega)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return idx, func() {
		thinning.Infof("Index cache hit rate for %s: %.3f\n", prefix, idx.CacheHitRate())
		db.Close()
	}, nil
}

func downsample(ctx context.Context, cfg *config.Config, prefix string) error {
	bucket, d, err := openSkeletons(ctx, cfg, prefix)
	if err != nil {
		return err
	}
	defer bucket.Close()

	compress, err := d.Compress()
	if err != nil {
		return err
	}
	segBucket, err := storage.OpenBucket(ctx, d.SegmentationRoot)
	if err != nil {
		return err
	}
	defer segBucket.Close()
	vol, err := storage.ReadVolume(ctx, segBucket, d.Segmentation, d.GridSize, compress)
	if err != nil {
		return err
	}
	c, err := mapping.Build(vol, d.Resolution, d.Downsample)
	if err != nil {
		return err
	}
	return mapping.WriteMaps(ctx, bucket, prefix, d.Downsample, c)
}

func index(ctx context.Context, cfg *config.Config, prefix string) error {
	bucket, d, err := openSkeletons(ctx, cfg, prefix)
	if err != nil {
		return err
	}
	defer bucket.Close()

	c, err := mapping.ReadMaps(ctx, bucket, prefix, d.Downsample)
	if err != nil {
		return err
	}
	db, err := openIndexDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return mapping.BuildIndex(db, prefix, d.Downsample, c)
}

func vectors(ctx context.Context, cfg *config.Config, prefix string) error {
	bucket, d, err := openSkeletons(ctx, cfg, prefix)
	if err != nil {
		return err
	}
	defer bucket.Close()

	src, release, err := openSource(ctx, cfg, bucket, prefix, d.Downsample)
	if err != nil {
		return err
	}
	defer release()
	return skeleton.FindEndpointVectors(ctx, bucket, prefix, cfg.Skeletons.Algorithm, d.Downsample, src)
}

func upsample(ctx context.Context, cfg *config.Config, prefix string) error {
	bucket, d, err := openSkeletons(ctx, cfg, prefix)
	if err != nil {
		return err
	}
	defer bucket.Close()

	src, release, err := openSource(ctx, cfg, bucket, prefix, d.Downsample)
	if err != nil {
		return err
	}
	defer release()
	return skeleton.ApplyUpsample(ctx, bucket, prefix, cfg.Skeletons.Algorithm, d.Downsample, src)
}

func show(ctx context.Context, cfg *config.Config, prefix string) error {
	bucket, d, err := openSkeletons(ctx, cfg, prefix)
	if err != nil {
		return err
	}
	defer bucket.Close()

	shape, skeletons, err := skeleton.ReadSkeletons(ctx, bucket, prefix, cfg.Skeletons.Algorithm, d.Downsample)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d labels on grid %s\n", prefix, len(skeletons), shape)
	for _, s := range skeletons {
		if len(s.Joints) == 0 && len(s.Endpoints) == 0 {
			continue
		}
		fmt.Printf("  %s\n", s)
		for _, endpoint := range s.Endpoints {
			fmt.Printf("    endpoint %s -> %s\n", shape.Coords(endpoint), s.Vectors[endpoint])
		}
	}
	return nil
}
