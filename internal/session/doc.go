// Package session runs the aggregation pipeline for a project and owns the
// resulting entity graph together with the playback state.
//
// A Store builds one Session per InitWithProject call. Stages (project, shots,
// assets, sequences, casting, edit) run in order and fail independently: a
// failed stage leaves its part of the graph empty and is reported, while later
// stages still run. Starting a new session cancels the previous run; results
// that arrive for an older run are discarded instead of overwriting newer data.
//
// Warnings logged while a session is built are kept on the session and can be
// read back through Diagnostics.
package session
