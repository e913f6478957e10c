package graph

import "github.com/satishgoda/watchtower/internal/colors"

// DefaultFPS is used when neither the project nor a shot declares a frame rate.
const DefaultFPS = 24.0

// DefaultSourceType is the media type assumed for an edit without one.
const DefaultSourceType = "video/mp4"

// Task is a unit of work attached to a shot or asset.
type Task struct {
	ID           string   `json:"id"`
	TaskStatusID string   `json:"task_status_id"`
	TaskTypeID   string   `json:"task_type_id"`
	Assignees    []string `json:"assignees"`
}

// AssetType is a category of asset (character, prop, set).
type AssetType struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Color colors.Color `json:"color"`
}

// TaskType is a department or step such as layout or lighting.
type TaskType struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Color    colors.Color `json:"color"`
	ForShots bool         `json:"for_shots"`
}

// TaskStatus is a workflow state such as todo or review.
type TaskStatus struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Color colors.Color `json:"color"`
}

// ProcessedUser is a team member ready for display.
type ProcessedUser struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	ProfilePicture string       `json:"profilePicture"`
	Color          colors.Color `json:"color"`
}

// Episode groups sequences and scopes filtering.
type Episode struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	SequenceIDs []string `json:"sequences"`
}

// Sequence is a run of shots. Color is assigned at fetch time.
type Sequence struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Color colors.Color `json:"color"`
}

// Shot is anchored on the timeline by StartFrame.
type Shot struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	SequenceID      string  `json:"sequence_id"`
	StartFrame      int     `json:"startFrame"`
	DurationSeconds float64 `json:"durationSeconds"`
	FPS             float64 `json:"fps"`
	ThumbnailURL    string  `json:"thumbnailUrl"`
	Tasks           []Task  `json:"tasks"`
	// AssetIDs is filled in by casting cross-referencing.
	AssetIDs []string `json:"asset_ids"`
}

// Asset is a reusable element (character, prop) cast into shots.
type Asset struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	AssetTypeID  string `json:"asset_type_id"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Tasks        []Task `json:"tasks"`
	// ShotIDs is filled in by casting cross-referencing.
	ShotIDs []string `json:"shot_ids"`
}

// Edit is the playback reference backing the timeline. EpisodeID is empty for
// non-episodic projects.
type Edit struct {
	ID          string `json:"id"`
	TotalFrames int    `json:"totalFrames"`
	FrameOffset int    `json:"frameOffset"`
	SourceName  string `json:"sourceName"`
	SourceType  string `json:"sourceType"`
	EpisodeID   string `json:"episodeId"`
}

// PlayerSource is a single media source for the video player.
type PlayerSource struct {
	Src  string `json:"src"`
	Type string `json:"type"`
}

// PlayerOptions configures the video player for the selected edit.
type PlayerOptions struct {
	Autoplay bool           `json:"autoplay"`
	Controls bool           `json:"controls"`
	Preload  string         `json:"preload"`
	Sources  []PlayerSource `json:"sources"`
}

// NewPlayerOptions builds the player configuration for an edit.
func NewPlayerOptions(edit Edit) PlayerOptions {
	return PlayerOptions{
		Autoplay: false,
		Controls: true,
		Preload:  "auto",
		Sources:  []PlayerSource{{Src: edit.SourceName, Type: edit.SourceType}},
	}
}

// Project holds the project-level metadata and the lists scoped to it.
type Project struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Ratio        Ratio           `json:"ratio"`
	Resolution   string          `json:"resolution"`
	FPS          float64         `json:"fps"`
	ThumbnailURL string          `json:"thumbnailUrl"`
	AssetTypes   []AssetType     `json:"asset_types"`
	TaskTypes    []TaskType      `json:"task_types"`
	TaskStatuses []TaskStatus    `json:"task_statuses"`
	Team         []ProcessedUser `json:"team"`
	Episodes     []Episode       `json:"episodes"`
}

// Episodic reports whether the project is split into episodes.
func (p Project) Episodic() bool {
	return len(p.Episodes) > 0
}

// EpisodeListItem is the summary of an episode shown in the project picker.
type EpisodeListItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProjectListItem is the summary of a project shown in the project picker.
type ProjectListItem struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	ThumbnailURL string            `json:"thumbnailUrl"`
	Episodes     []EpisodeListItem `json:"episodes"`
}
