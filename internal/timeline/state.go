package timeline

// RuntimeState is the playback and selection state of a loaded session.
// CurrentShot and CurrentSequence are derived from CurrentFrame on read and
// are not stored here.
type RuntimeState struct {
	IsPlaying       bool     `json:"isPlaying"`
	CurrentFrame    int      `json:"currentFrame"`
	VisibleFrames   [2]int   `json:"timelineVisibleFrames"`
	SelectedAssets  []string `json:"selectedAssets"`
	ActiveEpisodeID string   `json:"activeEpisodeId"`
}

// NewRuntimeState returns the initial state for an episode scope.
func NewRuntimeState(episodeID string) RuntimeState {
	return RuntimeState{
		VisibleFrames:   [2]int{0, 1},
		SelectedAssets:  []string{},
		ActiveEpisodeID: episodeID,
	}
}

// NormalizeRange orders a visible frame window so lo <= hi.
func NormalizeRange(lo, hi int) [2]int {
	if lo > hi {
		lo, hi = hi, lo
	}
	return [2]int{lo, hi}
}
