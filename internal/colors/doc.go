// Package colors holds the RGBA color type, hex conversion, and the
// deterministic index-based palette assignment used for sequences, asset
// types, and team members.
package colors
