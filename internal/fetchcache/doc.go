// Package fetchcache keeps the last good payload for every fetched resource in
// a SQLite database and serves it when the upstream is unreachable.
package fetchcache
