package session

import (
	"slices"
	"sync"

	"github.com/satishgoda/watchtower/internal/graph"
	"github.com/satishgoda/watchtower/internal/logging"
	"github.com/satishgoda/watchtower/internal/timeline"
)

// Session owns the entity graph and runtime state of one loaded project.
// Stages replace whole fields under the write lock; slices handed to readers
// are never modified afterwards.
type Session struct {
	id        string
	token     uint64
	projectID string
	episodeID string
	recorder  *logging.Recorder

	mu          sync.RWMutex
	project     graph.Project
	sequences   []graph.Sequence
	shots       []graph.Shot
	assets      []graph.Asset
	edits       []graph.Edit
	edit        graph.Edit
	hasEdit     bool
	totalFrames int
	frameOffset int
	player      graph.PlayerOptions
	state       timeline.RuntimeState
}

func newSession(id string, token uint64, projectID, episodeID string, recorder *logging.Recorder) *Session {
	return &Session{
		id:          id,
		token:       token,
		projectID:   projectID,
		episodeID:   episodeID,
		recorder:    recorder,
		project:     graph.Project{ID: projectID, FPS: graph.DefaultFPS},
		sequences:   []graph.Sequence{},
		shots:       []graph.Shot{},
		assets:      []graph.Asset{},
		totalFrames: 1,
		state:       timeline.NewRuntimeState(episodeID),
	}
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// ProjectID returns the project this session was built for.
func (s *Session) ProjectID() string { return s.projectID }

// EpisodeID returns the episode scope, or "" for the whole project.
func (s *Session) EpisodeID() string { return s.episodeID }

func (s *Session) Project() graph.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.project
}

func (s *Session) Sequences() []graph.Sequence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sequences
}

// Shots returns the shots sorted by StartFrame.
func (s *Session) Shots() []graph.Shot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shots
}

func (s *Session) Assets() []graph.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assets
}

// Edits returns every edit the project offers.
func (s *Session) Edits() []graph.Edit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edits
}

// Edit returns the edit selected for the episode scope.
func (s *Session) Edit() (graph.Edit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edit, s.hasEdit
}

func (s *Session) TotalFrames() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalFrames
}

func (s *Session) FrameOffset() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frameOffset
}

func (s *Session) PlayerOptions() graph.PlayerOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.player
}

// State returns a copy of the runtime state.
func (s *Session) State() timeline.RuntimeState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.state
	state.SelectedAssets = slices.Clone(s.state.SelectedAssets)
	return state
}

// Diagnostics returns warnings and errors logged while building the session.
func (s *Session) Diagnostics() []logging.Diagnostic {
	if s.recorder == nil {
		return nil
	}
	return s.recorder.Entries()
}

// CurrentShot returns the shot under the playhead.
func (s *Session) CurrentShot() (graph.Shot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return timeline.Locate(s.shots, s.state.CurrentFrame)
}

// CurrentSequence returns the sequence of the shot under the playhead.
func (s *Session) CurrentSequence() (graph.Sequence, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return timeline.LocateSequence(s.shots, s.sequences, s.state.CurrentFrame)
}

// SetCurrentFrame moves the playhead. The value may be any numeric kind or a
// numeric string; anything else is rejected and the playhead stays put.
func (s *Session) SetCurrentFrame(value any) error {
	frame, err := timeline.CoerceFrame(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.state.CurrentFrame = frame
	s.mu.Unlock()
	return nil
}

func (s *Session) Play() {
	s.mu.Lock()
	s.state.IsPlaying = true
	s.mu.Unlock()
}

func (s *Session) Pause() {
	s.mu.Lock()
	s.state.IsPlaying = false
	s.mu.Unlock()
}

// TogglePlay flips playback and returns the new playing state.
func (s *Session) TogglePlay() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsPlaying = !s.state.IsPlaying
	return s.state.IsPlaying
}

// SetVisibleFrames sets the visible timeline window, swapping bounds if needed.
func (s *Session) SetVisibleFrames(lo, hi int) {
	s.mu.Lock()
	s.state.VisibleFrames = timeline.NormalizeRange(lo, hi)
	s.mu.Unlock()
}

// SelectAssets replaces the asset selection. Unknown and repeated ids are
// dropped; the accepted ids are returned.
func (s *Session) SelectAssets(ids []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	known := make(map[string]struct{}, len(s.assets))
	for _, asset := range s.assets {
		known[asset.ID] = struct{}{}
	}
	selected := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			continue
		}
		if slices.Contains(selected, id) {
			continue
		}
		selected = append(selected, id)
	}
	s.state.SelectedAssets = selected
	return slices.Clone(selected)
}

// SelectAssetsForCurrentShot selects the assets cast in the shot under the
// playhead. With no shot under the playhead the selection is cleared.
func (s *Session) SelectAssetsForCurrentShot() []string {
	shot, ok := s.CurrentShot()
	if !ok {
		return s.SelectAssets(nil)
	}
	return s.SelectAssets(shot.AssetIDs)
}

// SelectedAssets resolves the selection to assets, in selection order.
func (s *Session) SelectedAssets() []graph.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]graph.Asset, 0, len(s.state.SelectedAssets))
	for _, id := range s.state.SelectedAssets {
		if asset, ok := graph.FindAsset(s.assets, id); ok {
			out = append(out, asset)
		}
	}
	return out
}

// FrameToSeconds converts a timeline frame to media time in the selected edit.
func (s *Session) FrameToSeconds(frame int) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return timeline.FrameToSeconds(frame, s.frameOffset, s.project.FPS)
}

// AssetsForShot returns the assets cast in a shot.
func (s *Session) AssetsForShot(shotID string) []graph.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	shot, ok := graph.FindShot(s.shots, shotID)
	if !ok {
		return nil
	}
	out := make([]graph.Asset, 0, len(shot.AssetIDs))
	for _, id := range shot.AssetIDs {
		if asset, ok := graph.FindAsset(s.assets, id); ok {
			out = append(out, asset)
		}
	}
	return out
}

// ShotsForAsset returns the shots an asset is cast in, in timeline order.
func (s *Session) ShotsForAsset(assetID string) []graph.Shot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := graph.FindAsset(s.assets, assetID)
	if !ok {
		return nil
	}
	out := make([]graph.Shot, 0, len(asset.ShotIDs))
	for _, shot := range s.shots {
		if slices.Contains(asset.ShotIDs, shot.ID) {
			out = append(out, shot)
		}
	}
	return out
}

func (s *Session) setProject(project graph.Project) {
	s.mu.Lock()
	s.project = project
	s.mu.Unlock()
}

func (s *Session) setShots(shots []graph.Shot) {
	s.mu.Lock()
	s.shots = shots
	s.mu.Unlock()
}

func (s *Session) setAssets(assets []graph.Asset) {
	s.mu.Lock()
	s.assets = assets
	s.mu.Unlock()
}

func (s *Session) setSequences(sequences []graph.Sequence) {
	s.mu.Lock()
	s.sequences = sequences
	s.mu.Unlock()
}

func (s *Session) setCasting(shots []graph.Shot, assets []graph.Asset) {
	s.mu.Lock()
	s.shots = shots
	s.assets = assets
	s.mu.Unlock()
}

func (s *Session) setEdits(edits []graph.Edit, selected graph.Edit, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits = edits
	if !ok {
		return
	}
	s.edit = selected
	s.hasEdit = true
	s.totalFrames = max(selected.TotalFrames, 1)
	s.frameOffset = selected.FrameOffset
	s.player = graph.NewPlayerOptions(selected)
}
