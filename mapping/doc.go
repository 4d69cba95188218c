/*
	Package mapping builds, stores and loads the per-label correspondence between voxels of
	a coarse (downsampled) grid and a fine (original) grid.

	Each label owns a downsample set, the coarse indices its fine voxels fall into, and for
	each of those a single representative fine index: the voxel of that label nearest the
	center of the coarse cell's block.  Correspondences are written as a pair of parallel
	map files, one listing coarse indices and one listing the matching fine indices, and may
	also be ingested into a badger index for random access by label.
*/
package mapping
