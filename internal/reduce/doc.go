// Package reduce collapses a 2D point cloud into a smaller set of
// representative points.
//
// Each round picks an anchor among the points not yet consumed, groups
// every remaining point whose Euclidean distance to the anchor is
// strictly below the threshold, and replaces the group with its
// centroid. Rounds repeat until every input point has been consumed.
//
// Key types: Arena (the working set, with per-point alive flags),
// AnchorSelector (the anchor policy), Reducer (the round driver).
//
// The package has no I/O. Point sources and sinks live in
// internal/generate, internal/pointio and internal/render.
package reduce
