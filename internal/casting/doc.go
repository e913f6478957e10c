// Package casting builds the bidirectional shot/asset relation from casting
// links.
package casting
