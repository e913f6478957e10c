package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// SampleProjectID is the project written by SampleFixture.
const SampleProjectID = "p1"

// Fixture holds the JSON documents of one project in the static layout. Nil
// fields are not written, which lets tests simulate missing resources.
type Fixture struct {
	ProjectID string
	Context   any
	Project   any
	Sequences any
	Shots     any
	Assets    any
	Casting   any
	Edits     any
	// Raw overrides a resource file with literal bytes (for malformed data).
	Raw map[string]string
}

// SampleFixture returns a small episodic project:
//
//	episodes: E1 = {S1, S3}, E2 = {S2}
//	shots:    sh1 (S1, frame 0), sh2 (S2, frame 24), sh3 (S3, frame 48); stored unsorted
//	casting:  sh1 -> a1 a2, sh2 -> a2, sh3 -> a1 a3
//	edits:    E1 (72 frames), E2 (24 frames, offset 100, webm)
//
// The team is given as bare ids so the context resource is exercised.
func SampleFixture() Fixture {
	return Fixture{
		ProjectID: SampleProjectID,
		Context: map[string]any{
			"asset_types": []any{
				map[string]any{"id": "at1", "name": "Character"},
				map[string]any{"id": "at2", "name": "Prop"},
				map[string]any{"id": "at3", "name": "Set"},
			},
			"task_types": []any{
				map[string]any{"id": "tt1", "name": "Layout", "color": "#ff0000", "for_shots": true},
				map[string]any{"id": "tt2", "name": "Modeling", "color": "#00ff00", "for_shots": false},
			},
			"task_status": []any{
				map[string]any{"id": "ts1", "name": "Todo", "color": "#0000ff"},
				map[string]any{"id": "ts2", "name": "Done", "color": "#ffffff"},
			},
			"users": []any{
				map[string]any{"id": "u1", "full_name": "Ada Lovelace", "has_avatar": true, "thumbnailUrl": "img/u1.png"},
				map[string]any{"id": "u2", "full_name": "Grace Hopper", "has_avatar": false},
			},
			"projects": []any{
				map[string]any{
					"id": "p1", "name": "Sprite Fright", "thumbnailUrl": "img/p1.png",
					"episodes": []any{
						map[string]any{"id": "E1", "name": "Pilot"},
						map[string]any{"id": "E2", "name": "Finale"},
					},
				},
				map[string]any{"id": "p2", "name": "Charge", "thumbnailUrl": nil, "episodes": []any{}},
			},
		},
		Project: map[string]any{
			"id":            "p1",
			"name":          "Sprite Fright",
			"ratio":         "2.39",
			"resolution":    "2048x858",
			"fps":           24,
			"thumbnailUrl":  "img/p1.png",
			"asset_types":   []any{"at2", "at1"},
			"task_types":    []any{"tt1"},
			"task_statuses": []any{map[string]any{"id": "ts9", "name": "Review", "color": "#ffa500"}},
			"team":          []any{"u2", "u1", "ghost"},
			"episodes": []any{
				map[string]any{"id": "E1", "name": "Pilot", "sequences": []any{"S1", "S3"}},
				map[string]any{"id": "E2", "name": "Finale", "sequences": []any{map[string]any{"id": "S2"}}},
			},
		},
		Sequences: []any{
			map[string]any{"id": "S1", "name": "Arrival"},
			map[string]any{"id": "S2", "name": "Chase"},
			map[string]any{"id": "S3", "name": "Campfire"},
		},
		Shots: []any{
			map[string]any{"id": "sh3", "name": "030", "sequence_id": "S3", "startFrame": 48, "durationSeconds": 1, "thumbnailUrl": nil},
			map[string]any{"id": "sh1", "name": "010", "sequence_id": "S1", "startFrame": 0, "durationSeconds": 1, "thumbnailUrl": "img/sh1.png"},
			map[string]any{"id": "sh2", "name": "020", "sequence_id": "S2", "startFrame": "24", "durationSeconds": 1, "thumbnailUrl": "img/sh2.png"},
		},
		Assets: []any{
			map[string]any{"id": "a1", "name": "Ellie", "asset_type_id": "at1", "thumbnailUrl": "img/a1.png"},
			map[string]any{"id": "a2", "name": "Rex", "asset_type_id": "at1", "thumbnailUrl": nil},
			map[string]any{"id": "a3", "name": "Bike", "asset_type_id": "at2", "thumbnailUrl": nil},
		},
		Casting: []any{
			map[string]any{"shot_id": "sh1", "asset_ids": []any{"a1", "a2"}},
			map[string]any{"shot_id": "sh2", "asset_ids": []any{"a2"}},
			map[string]any{"shot_id": "sh3", "asset_ids": []any{"a1", "a3"}},
		},
		Edits: []any{
			map[string]any{"id": "ed1", "totalFrames": 72, "frameOffset": 0, "sourceName": "media/e1.mp4", "episodeId": "E1"},
			map[string]any{"id": "ed2", "totalFrames": 24, "frameOffset": 100, "sourceName": "media/e2.webm", "sourceType": "video/webm", "episodeId": "E2"},
		},
	}
}

// WriteStaticTree writes fixture into root using the static export layout.
func WriteStaticTree(t testing.TB, root string, fixture Fixture) {
	t.Helper()

	projectDir := filepath.Join(root, "data", "projects", fixture.ProjectID)
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", projectDir, err)
	}
	docs := map[string]any{
		filepath.Join(root, "data", "projects", "context.json"): fixture.Context,
		filepath.Join(projectDir, "project.json"):               fixture.Project,
		filepath.Join(projectDir, "sequences.json"):             fixture.Sequences,
		filepath.Join(projectDir, "shots.json"):                 fixture.Shots,
		filepath.Join(projectDir, "assets.json"):                fixture.Assets,
		filepath.Join(projectDir, "casting.json"):               fixture.Casting,
		filepath.Join(projectDir, "edits.json"):                 fixture.Edits,
	}
	for path, doc := range docs {
		if doc == nil {
			continue
		}
		WriteJSON(t, path, doc)
	}
	for name, raw := range fixture.Raw {
		path := filepath.Join(projectDir, name+".json")
		if name == "context" {
			path = filepath.Join(root, "data", "projects", "context.json")
		}
		if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

// WriteJSON encodes value into path, creating parent directories.
func WriteJSON(t testing.TB, path string, value any) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ServeStaticTree serves root over HTTP and closes the server on cleanup.
func ServeStaticTree(t testing.TB, root string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.FileServer(http.Dir(root)))
	t.Cleanup(server.Close)
	return server
}
