/*
	Package thinning provides types, constants and functions that have no other dependencies
	and can be used by all packages of the skeleton resolution tools: grid geometry, points and
	vectors, segmentation volumes, compression of volume data, and logging.

	Axis conventions follow the binary files written by the skeletonization pipeline.  Grid
	shapes, resolutions and downsample ratios are ordered (z, y, x) while points and vectors
	are ordered (x, y, z).
*/
package thinning
