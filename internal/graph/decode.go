package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/satishgoda/watchtower/internal/services"
)

// AssetTypeRecord is an asset type as sent upstream.
type AssetTypeRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskTypeRecord is a task type as sent upstream. Color is a hex string.
type TaskTypeRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	ForShots bool   `json:"for_shots"`
}

// TaskStatusRecord is a task status as sent upstream. Color is a hex string.
type TaskStatusRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// UserRecord is a person as sent upstream.
type UserRecord struct {
	ID           string  `json:"id"`
	FullName     string  `json:"full_name"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	HasAvatar    bool    `json:"has_avatar"`
	ThumbnailURL *string `json:"thumbnailUrl"`
}

// DisplayName returns the full name, falling back to first/last name and id.
func (u UserRecord) DisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.ID
}

// SequenceRecord is a sequence as sent upstream. Upstream colors are ignored.
type SequenceRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Canceled bool   `json:"canceled"`
}

// EpisodeRecord is an episode as sent upstream. Sequences may be ids or objects.
type EpisodeRecord struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Sequences []Ref[SequenceRecord] `json:"sequences"`
}

// Episode converts the record into an Episode with an ordered id list.
func (e EpisodeRecord) Episode() Episode {
	ids := make([]string, 0, len(e.Sequences))
	for _, ref := range e.Sequences {
		if ref.ID == "" {
			continue
		}
		ids = append(ids, ref.ID)
	}
	return Episode{ID: e.ID, Name: e.Name, SequenceIDs: ids}
}

// ProjectRecord is the project detail payload.
type ProjectRecord struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	Ratio        Ratio                   `json:"ratio"`
	Resolution   string                  `json:"resolution"`
	FPS          FlexFloat               `json:"fps"`
	ThumbnailURL *string                 `json:"thumbnailUrl"`
	AssetTypes   []Ref[AssetTypeRecord]  `json:"asset_types"`
	TaskTypes    []Ref[TaskTypeRecord]   `json:"task_types"`
	TaskStatuses []Ref[TaskStatusRecord] `json:"task_statuses"`
	Team         []Ref[UserRecord]       `json:"team"`
	Episodes     []EpisodeRecord         `json:"episodes"`
}

// EffectiveFPS returns the declared fps or DefaultFPS.
func (p ProjectRecord) EffectiveFPS() float64 {
	if p.FPS > 0 {
		return float64(p.FPS)
	}
	return DefaultFPS
}

// NeedsContext reports whether the global lists are needed: a type or status
// list that is empty (meaning every context entry) or any list holding id-only
// references. An empty team stays empty and needs nothing.
func (p ProjectRecord) NeedsContext() bool {
	if len(p.AssetTypes) == 0 || len(p.TaskTypes) == 0 || len(p.TaskStatuses) == 0 {
		return true
	}
	return NeedsLookup(p.AssetTypes) || NeedsLookup(p.TaskTypes) ||
		NeedsLookup(p.TaskStatuses) || NeedsLookup(p.Team)
}

// ContextRecord is the global lookup payload used to resolve id-only references.
type ContextRecord struct {
	AssetTypes   []AssetTypeRecord  `json:"asset_types"`
	TaskTypes    []TaskTypeRecord   `json:"task_types"`
	TaskStatuses []TaskStatusRecord `json:"task_status"`
	Users        []UserRecord       `json:"users"`
	Projects     []ProjectListItem  `json:"projects"`
}

// ShotRecord is a shot as sent upstream, either in the static layout or as a
// Kitsu record carrying a frame range under data.
type ShotRecord struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	SequenceID      string     `json:"sequence_id"`
	StartFrame      *FlexInt   `json:"startFrame"`
	DurationSeconds *FlexFloat `json:"durationSeconds"`
	FPS             *FlexFloat `json:"fps"`
	ThumbnailURL    *string    `json:"thumbnailUrl"`
	PreviewFileID   string     `json:"preview_file_id"`
	Canceled        bool       `json:"canceled"`
	Tasks           []Task     `json:"tasks"`
	Data            *struct {
		FrameIn  *FlexInt `json:"frame_in"`
		FrameOut *FlexInt `json:"frame_out"`
	} `json:"data"`
}

// Placed reports whether the record carries enough to anchor it on the timeline.
func (r ShotRecord) Placed() bool {
	return r.StartFrame != nil || (r.Data != nil && r.Data.FrameIn != nil)
}

// Shot converts the record. An explicit startFrame wins over data.frame_in; an
// explicit durationSeconds wins over (frame_out - frame_in) / fps. The
// thumbnail URL is left for the caller to resolve.
func (r ShotRecord) Shot(projectFPS float64) Shot {
	fps := projectFPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	if r.FPS != nil && *r.FPS > 0 {
		fps = float64(*r.FPS)
	}
	shot := Shot{
		ID:         r.ID,
		Name:       r.Name,
		SequenceID: r.SequenceID,
		FPS:        fps,
		Tasks:      r.Tasks,
		AssetIDs:   []string{},
	}
	switch {
	case r.StartFrame != nil:
		shot.StartFrame = int(*r.StartFrame)
	case r.Data != nil && r.Data.FrameIn != nil:
		shot.StartFrame = int(*r.Data.FrameIn)
	}
	switch {
	case r.DurationSeconds != nil:
		shot.DurationSeconds = float64(*r.DurationSeconds)
	case r.Data != nil && r.Data.FrameIn != nil && r.Data.FrameOut != nil:
		shot.DurationSeconds = float64(*r.Data.FrameOut-*r.Data.FrameIn) / fps
	}
	return shot
}

// AssetRecord is an asset as sent upstream.
type AssetRecord struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	AssetTypeID   string  `json:"asset_type_id"`
	EntityTypeID  string  `json:"entity_type_id"`
	ThumbnailURL  *string `json:"thumbnailUrl"`
	PreviewFileID string  `json:"preview_file_id"`
	Canceled      bool    `json:"canceled"`
	Tasks         []Task  `json:"tasks"`
}

// Asset converts the record. Kitsu names the type field entity_type_id.
func (r AssetRecord) Asset() Asset {
	typeID := r.AssetTypeID
	if typeID == "" {
		typeID = r.EntityTypeID
	}
	return Asset{
		ID:          r.ID,
		Name:        r.Name,
		AssetTypeID: typeID,
		Tasks:       r.Tasks,
		ShotIDs:     []string{},
	}
}

// EditRecord is an edit as sent upstream.
type EditRecord struct {
	ID          string  `json:"id"`
	TotalFrames FlexInt `json:"totalFrames"`
	FrameOffset FlexInt `json:"frameOffset"`
	SourceName  string  `json:"sourceName"`
	SourceType  string  `json:"sourceType"`
	EpisodeID   *string `json:"episodeId"`
}

// Edit converts the record, defaulting SourceType and the episode sentinel.
func (r EditRecord) Edit() Edit {
	edit := Edit{
		ID:          r.ID,
		TotalFrames: int(r.TotalFrames),
		FrameOffset: int(r.FrameOffset),
		SourceName:  r.SourceName,
		SourceType:  strings.TrimSpace(r.SourceType),
	}
	if edit.SourceType == "" {
		edit.SourceType = DefaultSourceType
	}
	if r.EpisodeID != nil {
		edit.EpisodeID = *r.EpisodeID
	}
	return edit
}

// DecodeProject parses the project detail payload.
func DecodeProject(data []byte) (ProjectRecord, error) {
	var record ProjectRecord
	if err := decode(data, "project", &record); err != nil {
		return ProjectRecord{}, err
	}
	if strings.TrimSpace(record.ID) == "" {
		return ProjectRecord{}, malformed("project", "project payload has no id", nil)
	}
	return record, nil
}

// DecodeContext parses the global context payload.
func DecodeContext(data []byte) (ContextRecord, error) {
	var record ContextRecord
	if err := decode(data, "context", &record); err != nil {
		return ContextRecord{}, err
	}
	return record, nil
}

// DecodeSequences parses a sequence list. Canceled sequences are dropped.
func DecodeSequences(data []byte) ([]SequenceRecord, error) {
	var records []SequenceRecord
	if err := decodeList(data, "sequences", &records); err != nil {
		return nil, err
	}
	out := records[:0]
	for i, record := range records {
		if record.ID == "" {
			return nil, malformed("sequences", fmt.Sprintf("sequence %d has no id", i), nil)
		}
		if record.Canceled {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

// DecodeShots parses a shot list. Canceled shots are dropped.
func DecodeShots(data []byte) ([]ShotRecord, error) {
	var records []ShotRecord
	if err := decodeList(data, "shots", &records); err != nil {
		return nil, err
	}
	out := records[:0]
	for i, record := range records {
		if record.ID == "" {
			return nil, malformed("shots", fmt.Sprintf("shot %d has no id", i), nil)
		}
		if record.Canceled {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

// DecodeAssets parses an asset list. Canceled assets are dropped.
func DecodeAssets(data []byte) ([]AssetRecord, error) {
	var records []AssetRecord
	if err := decodeList(data, "assets", &records); err != nil {
		return nil, err
	}
	out := records[:0]
	for i, record := range records {
		if record.ID == "" {
			return nil, malformed("assets", fmt.Sprintf("asset %d has no id", i), nil)
		}
		if record.Canceled {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

// DecodeEdits parses the edit payload. A single edit object is accepted as a
// one-element list.
func DecodeEdits(data []byte) ([]EditRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("{")) {
		var record EditRecord
		if err := decode(trimmed, "edits", &record); err != nil {
			return nil, err
		}
		return []EditRecord{record}, nil
	}
	var records []EditRecord
	if err := decodeList(data, "edits", &records); err != nil {
		return nil, err
	}
	return records, nil
}

func decode(data []byte, resource string, target any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return malformed(resource, "empty payload", nil)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return malformed(resource, "decode payload", err)
	}
	return nil
}

func decodeList(data []byte, resource string, target any) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if !bytes.HasPrefix(trimmed, []byte("[")) {
		return malformed(resource, "expected a JSON array", nil)
	}
	return decode(trimmed, resource, target)
}

func malformed(resource, message string, err error) error {
	return services.Wrap(services.ErrMalformedData, resource, "decode", message, err)
}
