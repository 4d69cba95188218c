/*
Command skelres bridges skeletons of a segmentation between a coarse grid, on which
skeletons are cheaply extracted, and the original fine grid.

Each dataset prefix is described in the TOML configuration by its resolution, grid size
and segmentation object.  A typical run for prefix SNEMI3D is

	skelres -config=config.toml downsample SNEMI3D
	(thin the coarse volume into thinning-080x080x080-downsample-skeleton.pts)
	skelres -config=config.toml vectors SNEMI3D
	skelres -config=config.toml upsample SNEMI3D
	skelres -config=config.toml show SNEMI3D

The downsample command writes the paired map objects downsample-XXXxYYYxZZZ.bytes and
upsample-XXXxYYYxZZZ.bytes.  The index command loads those maps into a badger database so
that, with -index, later commands look up each label's map without reading both files.

Any error stops the run.  Objects being written at that time are discarded and must be
regenerated by running the command again.
*/
package main
