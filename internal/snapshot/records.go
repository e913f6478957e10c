package snapshot

import (
	"strings"

	"github.com/satishgoda/watchtower/internal/casting"
	"github.com/satishgoda/watchtower/internal/dataurls"
	"github.com/satishgoda/watchtower/internal/graph"
)

// The record types below mirror the static layout read by the graph decoders.

type typeRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color,omitempty"`
	ForShots *bool  `json:"for_shots,omitempty"`
}

type userRecord struct {
	ID           string  `json:"id"`
	FullName     string  `json:"full_name"`
	HasAvatar    bool    `json:"has_avatar"`
	ThumbnailURL *string `json:"thumbnailUrl"`
}

type episodeRecord struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Sequences []string `json:"sequences"`
}

type projectRecord struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Ratio        string          `json:"ratio,omitempty"`
	Resolution   string          `json:"resolution,omitempty"`
	FPS          float64         `json:"fps"`
	ThumbnailURL *string         `json:"thumbnailUrl"`
	AssetTypes   []typeRecord    `json:"asset_types"`
	TaskTypes    []typeRecord    `json:"task_types"`
	TaskStatuses []typeRecord    `json:"task_statuses"`
	Team         []userRecord    `json:"team"`
	Episodes     []episodeRecord `json:"episodes"`
}

type contextRecord struct {
	AssetTypes   []typeRecord            `json:"asset_types"`
	TaskTypes    []typeRecord            `json:"task_types"`
	TaskStatuses []typeRecord            `json:"task_status"`
	Users        []userRecord            `json:"users"`
	Projects     []graph.ProjectListItem `json:"projects"`
}

type sequenceRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type shotRecord struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	SequenceID      string       `json:"sequence_id"`
	StartFrame      int          `json:"startFrame"`
	DurationSeconds float64      `json:"durationSeconds"`
	FPS             float64      `json:"fps"`
	ThumbnailURL    *string      `json:"thumbnailUrl"`
	Tasks           []graph.Task `json:"tasks"`
}

type assetRecord struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	AssetTypeID  string       `json:"asset_type_id"`
	ThumbnailURL *string      `json:"thumbnailUrl"`
	Tasks        []graph.Task `json:"tasks"`
}

type editRecord struct {
	ID          string `json:"id"`
	TotalFrames int    `json:"totalFrames"`
	FrameOffset int    `json:"frameOffset"`
	SourceName  string `json:"sourceName"`
	SourceType  string `json:"sourceType"`
	EpisodeID   string `json:"episodeId,omitempty"`
}

// media converts a resolved URL back to the stored form. Placeholders become
// null so they resolve to the placeholder again on load.
type media struct {
	resolver dataurls.Resolver
}

func (m media) stored(resolved string) *string {
	if resolved == "" || resolved == m.resolver.PlaceholderAsset() || resolved == m.resolver.PlaceholderUser() {
		return nil
	}
	out := resolved
	if base := m.resolver.BasePath(); strings.HasPrefix(resolved, base) {
		out = strings.TrimPrefix(resolved, base)
	}
	return &out
}

func (m media) source(resolved string) string {
	if base := m.resolver.BasePath(); strings.HasPrefix(resolved, base) {
		return strings.TrimPrefix(resolved, base)
	}
	return resolved
}

func typeRecords[T any](items []T, convert func(T) typeRecord) []typeRecord {
	out := make([]typeRecord, 0, len(items))
	for _, item := range items {
		out = append(out, convert(item))
	}
	return out
}

func buildProject(project graph.Project, m media) projectRecord {
	record := projectRecord{
		ID:           project.ID,
		Name:         project.Name,
		Ratio:        string(project.Ratio),
		Resolution:   project.Resolution,
		FPS:          project.FPS,
		ThumbnailURL: m.stored(project.ThumbnailURL),
		AssetTypes: typeRecords(project.AssetTypes, func(t graph.AssetType) typeRecord {
			return typeRecord{ID: t.ID, Name: t.Name}
		}),
		TaskTypes: typeRecords(project.TaskTypes, func(t graph.TaskType) typeRecord {
			forShots := t.ForShots
			return typeRecord{ID: t.ID, Name: t.Name, Color: t.Color.Hex(), ForShots: &forShots}
		}),
		TaskStatuses: typeRecords(project.TaskStatuses, func(t graph.TaskStatus) typeRecord {
			return typeRecord{ID: t.ID, Name: t.Name, Color: t.Color.Hex()}
		}),
		Team:     make([]userRecord, 0, len(project.Team)),
		Episodes: make([]episodeRecord, 0, len(project.Episodes)),
	}
	for _, user := range project.Team {
		thumb := m.stored(user.ProfilePicture)
		record.Team = append(record.Team, userRecord{
			ID:           user.ID,
			FullName:     user.Name,
			HasAvatar:    thumb != nil,
			ThumbnailURL: thumb,
		})
	}
	for _, ep := range project.Episodes {
		seqs := append([]string{}, ep.SequenceIDs...)
		record.Episodes = append(record.Episodes, episodeRecord{ID: ep.ID, Name: ep.Name, Sequences: seqs})
	}
	return record
}

func buildContext(record projectRecord, projects []graph.ProjectListItem, m media) contextRecord {
	if projects == nil {
		episodes := make([]graph.EpisodeListItem, 0, len(record.Episodes))
		for _, ep := range record.Episodes {
			episodes = append(episodes, graph.EpisodeListItem{ID: ep.ID, Name: ep.Name})
		}
		item := graph.ProjectListItem{ID: record.ID, Name: record.Name, Episodes: episodes}
		if record.ThumbnailURL != nil {
			item.ThumbnailURL = *record.ThumbnailURL
		}
		projects = []graph.ProjectListItem{item}
	} else {
		listed := make([]graph.ProjectListItem, 0, len(projects))
		for _, item := range projects {
			if thumb := m.stored(item.ThumbnailURL); thumb != nil {
				item.ThumbnailURL = *thumb
			} else {
				item.ThumbnailURL = ""
			}
			listed = append(listed, item)
		}
		projects = listed
	}
	return contextRecord{
		AssetTypes:   record.AssetTypes,
		TaskTypes:    record.TaskTypes,
		TaskStatuses: record.TaskStatuses,
		Users:        record.Team,
		Projects:     projects,
	}
}

func buildShots(shots []graph.Shot, m media) []shotRecord {
	out := make([]shotRecord, 0, len(shots))
	for _, shot := range shots {
		out = append(out, shotRecord{
			ID:              shot.ID,
			Name:            shot.Name,
			SequenceID:      shot.SequenceID,
			StartFrame:      shot.StartFrame,
			DurationSeconds: shot.DurationSeconds,
			FPS:             shot.FPS,
			ThumbnailURL:    m.stored(shot.ThumbnailURL),
			Tasks:           shot.Tasks,
		})
	}
	return out
}

func buildAssets(assets []graph.Asset, m media) []assetRecord {
	out := make([]assetRecord, 0, len(assets))
	for _, asset := range assets {
		out = append(out, assetRecord{
			ID:           asset.ID,
			Name:         asset.Name,
			AssetTypeID:  asset.AssetTypeID,
			ThumbnailURL: m.stored(asset.ThumbnailURL),
			Tasks:        asset.Tasks,
		})
	}
	return out
}

// buildCasting derives links from the shot side of the graph, in timeline order.
func buildCasting(shots []graph.Shot) []casting.Link {
	out := make([]casting.Link, 0, len(shots))
	for _, shot := range shots {
		if len(shot.AssetIDs) == 0 {
			continue
		}
		out = append(out, casting.Link{ShotID: shot.ID, AssetIDs: append([]string{}, shot.AssetIDs...)})
	}
	return out
}

func buildSequences(sequences []graph.Sequence) []sequenceRecord {
	out := make([]sequenceRecord, 0, len(sequences))
	for _, seq := range sequences {
		out = append(out, sequenceRecord{ID: seq.ID, Name: seq.Name})
	}
	return out
}

func buildEdits(edits []graph.Edit, m media) []editRecord {
	out := make([]editRecord, 0, len(edits))
	for _, edit := range edits {
		out = append(out, editRecord{
			ID:          edit.ID,
			TotalFrames: edit.TotalFrames,
			FrameOffset: edit.FrameOffset,
			SourceName:  m.source(edit.SourceName),
			SourceType:  edit.SourceType,
			EpisodeID:   edit.EpisodeID,
		})
	}
	return out
}
