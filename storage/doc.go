/*
	Package storage reads and writes the objects shared with the skeletonization pipeline.

	Objects live in a gocloud blob.Bucket, which may be a local directory, an in-memory
	bucket, or a cloud bucket.  Map, point set and vector objects are streams of
	native-endian int64 and float64 values that begin with a Header of the grid shape
	(z, y, x) and max label.  Object keys follow fixed templates, e.g.,

		PREFIX/downsample-080x080x080.bytes
		PREFIX/thinning-080x080x080-upsample-skeleton.pts

	where the resolution tag lists x, y, z.
*/
package storage
