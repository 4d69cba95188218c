/*
	Package skeleton traces endpoints of coarse skeletons and transfers skeleton point sets
	from a coarse grid to the fine grid through a label correspondence.

	A skeleton point set lists the linear indices of one label's skeleton voxels.  Endpoints
	are flagged by negating their index.  Point sets of all labels are stored in a single
	object following a header of grid shape and max label, and the endpoint vectors derived
	from them are stored in a parallel object of (fine index, vz, vy, vx) records.
*/
package skeleton
