package timeline

import (
	"math"
	"sort"

	"github.com/satishgoda/watchtower/internal/graph"
)

// CoerceFrame converts a loosely typed frame number into an int.
func CoerceFrame(value any) (int, error) {
	return graph.ParseFrame(value)
}

// Locate returns the last shot whose StartFrame is at or before frame. shots
// must be sorted by StartFrame. ok is false when frame precedes every shot.
func Locate(shots []graph.Shot, frame int) (graph.Shot, bool) {
	i := sort.Search(len(shots), func(i int) bool {
		return shots[i].StartFrame > frame
	})
	if i == 0 {
		return graph.Shot{}, false
	}
	return shots[i-1], true
}

// LocateSequence returns the sequence of the shot under frame.
func LocateSequence(shots []graph.Shot, sequences []graph.Sequence, frame int) (graph.Sequence, bool) {
	shot, ok := Locate(shots, frame)
	if !ok {
		return graph.Sequence{}, false
	}
	return graph.FindSequence(sequences, shot.SequenceID)
}

// FrameToSeconds converts a timeline frame into a media time for an edit that
// starts at frameOffset. Frames before the offset map to zero.
func FrameToSeconds(frame, frameOffset int, fps float64) float64 {
	if fps <= 0 {
		fps = graph.DefaultFPS
	}
	seconds := float64(frame-frameOffset) / fps
	if seconds < 0 {
		return 0
	}
	return seconds
}

// SecondsToFrame converts a media time back into a timeline frame.
func SecondsToFrame(seconds float64, frameOffset int, fps float64) int {
	if fps <= 0 {
		fps = graph.DefaultFPS
	}
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	return int(math.Floor(seconds*fps)) + frameOffset
}
