// Package graph defines the in-memory entity graph (projects, episodes,
// sequences, shots, assets, edits) and the tolerant decoders that turn upstream
// payloads into it.
//
// Upstream data comes from two shapes: the static export tree and the Kitsu
// API. Decoders accept both, coerce loosely typed numbers, and report
// structural problems with services.ErrMalformedData.
package graph
