// Package samples enumerates the working set of images a batch run covers.
//
// List walks the samples directory recursively, keeps files matching the
// image extension allow-list, and assigns stable 0-based ids in path-sorted
// order. Re-running against an unchanged tree yields an identical list,
// which the browser relies on when it pre-renders placeholders keyed by id.
// Resolve supports the static-image endpoint by finding a file by base name
// anywhere under the root.
package samples
