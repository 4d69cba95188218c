// Package config loads the TOML configuration of the skeleton resolution tools.
package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Rhoana/topological-thinning/storage"
	"github.com/Rhoana/topological-thinning/storage/badger"
	"github.com/Rhoana/topological-thinning/thinning"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultRoot is the directory holding skeleton and map objects when none is configured.
	DefaultRoot = "skeletons"

	// DefaultCacheMB is the size of the label map cache used with an index.
	DefaultCacheMB = 64
)

// DefaultDownsample is the coarse resolution in nm (z, y, x) used when a dataset
// gives none.
var DefaultDownsample = thinning.Resolution{80, 80, 80}

// Config is the decoded configuration file.
type Config struct {
	Logging   thinning.LogConfig
	Skeletons SkeletonConfig
	Index     IndexConfig
	Dataset   map[string]Dataset

	location string
}

// SkeletonConfig locates skeleton and map objects.
type SkeletonConfig struct {
	// Root is a bucket URL or a directory.
	Root      string
	Algorithm string
}

// IndexConfig sets up an optional badger index of correspondences.
type IndexConfig struct {
	Path    string
	CacheMB int `toml:"cache_mb"`
	Badger  badger.Options
}

// Dataset describes the fine segmentation of one prefix.
type Dataset struct {
	Resolution       thinning.Resolution
	GridSize         thinning.GridShape `toml:"grid_size"`
	Segmentation     string
	SegmentationRoot string `toml:"segmentation_root"`
	Compression      string
	Downsample       thinning.Resolution
}

// Load decodes a TOML configuration file, fills in defaults, and converts relative
// paths to absolute paths against the file's directory.
func Load(filename string) (*Config, error) {
	if filename == "" {
		return nil, fmt.Errorf("no TOML configuration file provided")
	}
	var c Config
	if _, err := toml.DecodeFile(filename, &c); err != nil {
		return nil, fmt.Errorf("could not decode TOML config: %v", err)
	}
	c.location = filename
	c.setDefaults()
	if err := c.convertPathsToAbsolute(filename); err != nil {
		return nil, fmt.Errorf("could not convert relative paths to absolute paths in TOML config: %v", err)
	}
	thinning.Infof("Loaded config %s: %s\n", filename, &c)
	return &c, nil
}

func (c *Config) setDefaults() {
	if c.Skeletons.Root == "" {
		c.Skeletons.Root = DefaultRoot
	}
	if c.Skeletons.Algorithm == "" {
		c.Skeletons.Algorithm = storage.DefaultAlgorithm
	}
	if c.Index.CacheMB == 0 {
		c.Index.CacheMB = DefaultCacheMB
	}
	for prefix, d := range c.Dataset {
		if d.Downsample == (thinning.Resolution{}) {
			d.Downsample = DefaultDownsample
			c.Dataset[prefix] = d
		}
	}
}

// isURL returns true for bucket references like gs://bucket that are not local paths.
func isURL(ref string) bool {
	return strings.Contains(ref, "://")
}

// Some settings in the TOML can be given as relative paths.
// This function converts them in-place to absolute paths,
// assuming the given paths were relative to the TOML file's own directory.
func (c *Config) convertPathsToAbsolute(configPath string) error {
	var err error

	configDir := filepath.Dir(configPath)

	// [logging].logfile
	if c.Logging.Logfile != "" {
		c.Logging.Logfile, err = thinning.ConvertToAbsolute(c.Logging.Logfile, configDir)
		if err != nil {
			return fmt.Errorf("error converting logfile setting to absolute path")
		}
	}

	// [skeletons].root
	if !isURL(c.Skeletons.Root) {
		c.Skeletons.Root, err = thinning.ConvertToAbsolute(c.Skeletons.Root, configDir)
		if err != nil {
			return fmt.Errorf("error converting skeletons root to absolute path")
		}
	}

	// [index].path
	if c.Index.Path != "" {
		c.Index.Path, err = thinning.ConvertToAbsolute(c.Index.Path, configDir)
		if err != nil {
			return fmt.Errorf("error converting index path to absolute path")
		}
	}

	// [dataset.foobar].segmentation_root
	for prefix, d := range c.Dataset {
		if d.SegmentationRoot == "" || isURL(d.SegmentationRoot) {
			continue
		}
		d.SegmentationRoot, err = thinning.ConvertToAbsolute(d.SegmentationRoot, configDir)
		if err != nil {
			return fmt.Errorf("error converting dataset.%s.segmentation_root to absolute path: %q", prefix, d.SegmentationRoot)
		}
		c.Dataset[prefix] = d
	}
	return nil
}

// Location returns the file the configuration was loaded from.
func (c *Config) Location() string {
	return c.location
}

// Prefixes returns the configured dataset prefixes in sorted order.
func (c *Config) Prefixes() []string {
	prefixes := make([]string, 0, len(c.Dataset))
	for prefix := range c.Dataset {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	return prefixes
}

// GetDataset returns the validated dataset for a prefix.
func (c *Config) GetDataset(prefix string) (Dataset, error) {
	d, found := c.Dataset[prefix]
	if !found {
		return d, fmt.Errorf("no dataset %q in config %s", prefix, c.location)
	}
	if err := d.Validate(); err != nil {
		return d, fmt.Errorf("dataset %q: %v", prefix, err)
	}
	return d, nil
}

func (c *Config) String() string {
	return fmt.Sprintf("skeletons @ %s (%s), index %q, %d datasets",
		c.Skeletons.Root, c.Skeletons.Algorithm, c.Index.Path, len(c.Dataset))
}

// Validate returns an error if the dataset cannot be used to build correspondences.
func (d Dataset) Validate() error {
	for axis := 0; axis < 3; axis++ {
		if d.Resolution[axis] <= 0 {
			return fmt.Errorf("resolution must be positive, got %s", d.Resolution)
		}
		if d.Downsample[axis] <= 0 {
			return fmt.Errorf("downsample resolution must be positive, got %s", d.Downsample)
		}
	}
	if err := d.GridSize.Valid(); err != nil {
		return err
	}
	if _, err := thinning.ParseCompression(d.Compression); err != nil {
		return err
	}
	return nil
}

// Compress returns the compression of the segmentation object.
func (d Dataset) Compress() (thinning.Compression, error) {
	return thinning.ParseCompression(d.Compression)
}
