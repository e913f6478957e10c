// Package timeline maps frame numbers to the shot and sequence under the
// playhead and holds the runtime playback state.
package timeline
