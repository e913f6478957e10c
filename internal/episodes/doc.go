// Package episodes scopes sequences, shots, and edits to a single episode.
package episodes
