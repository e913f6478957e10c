// Package snapshot writes a loaded session back out as a static data tree
// (data/projects/context.json plus one directory per project) that the
// static data source can serve. Documents are written in parallel under an
// exclusive lock on the output directory.
package snapshot
