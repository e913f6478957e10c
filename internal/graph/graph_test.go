package graph_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/satishgoda/watchtower/internal/graph"
	"github.com/satishgoda/watchtower/internal/services"
)

func TestParseFrameCoercion(t *testing.T) {
	cases := []struct {
		in   any
		want int
	}{
		{42, 42},
		{int64(7), 7},
		{uint16(3), 3},
		{42.9, 42},
		{float32(-1.5), -1},
		{json.Number("120"), 120},
		{"42", 42},
		{"  42  ", 42},
		{"42px", 42},
		{"-3", -3},
		{"17.8", 17},
	}
	for _, tc := range cases {
		got, err := graph.ParseFrame(tc.in)
		if err != nil {
			t.Fatalf("ParseFrame(%#v) returned error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseFrame(%#v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseFrameRejectsNonNumeric(t *testing.T) {
	for _, in := range []any{"abc", "", nil, true, []int{1}} {
		_, err := graph.ParseFrame(in)
		if err == nil {
			t.Fatalf("expected error for %#v", in)
		}
		if !errors.Is(err, services.ErrMalformedData) {
			t.Fatalf("expected malformed data for %#v, got %v", in, err)
		}
	}
}

func TestSortShotsIsStable(t *testing.T) {
	shots := []graph.Shot{
		{ID: "c", StartFrame: 48},
		{ID: "a", StartFrame: 0},
		{ID: "b1", StartFrame: 24},
		{ID: "b2", StartFrame: 24},
	}
	graph.SortShots(shots)
	want := []string{"a", "b1", "b2", "c"}
	for i, id := range want {
		if shots[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, shots[i].ID, id)
		}
	}
	if !graph.ShotsSorted(shots) {
		t.Fatal("expected shots to be sorted")
	}
}

func TestDecodeProjectWithEmbeddedAndIDRefs(t *testing.T) {
	payload := []byte(`{
		"id": "p1",
		"name": "Sprite Fright",
		"ratio": 1.85,
		"resolution": "2048x858",
		"fps": "25",
		"thumbnailUrl": null,
		"asset_types": [{"id": "at1", "name": "Character"}, "at2"],
		"task_types": ["tt1"],
		"task_statuses": [],
		"team": ["u1", {"id": "u2", "full_name": "Ellie"}],
		"episodes": [
			{"id": "E1", "name": "Pilot", "sequences": ["S1", {"id": "S3", "name": "Forest"}]}
		]
	}`)
	record, err := graph.DecodeProject(payload)
	if err != nil {
		t.Fatalf("DecodeProject: %v", err)
	}
	if record.EffectiveFPS() != 25 {
		t.Fatalf("fps = %v, want 25", record.EffectiveFPS())
	}
	if record.Ratio != "1.85" {
		t.Fatalf("ratio = %q", record.Ratio)
	}
	if !record.NeedsContext() {
		t.Fatal("expected id-only refs to require context")
	}
	if !record.AssetTypes[0].Resolved() || record.AssetTypes[1].Resolved() {
		t.Fatalf("unexpected ref resolution: %+v", record.AssetTypes)
	}
	ep := record.Episodes[0].Episode()
	if len(ep.SequenceIDs) != 2 || ep.SequenceIDs[0] != "S1" || ep.SequenceIDs[1] != "S3" {
		t.Fatalf("episode sequences = %v", ep.SequenceIDs)
	}
}

func TestDecodeProjectWithoutIDIsMalformed(t *testing.T) {
	_, err := graph.DecodeProject([]byte(`{"name": "nameless"}`))
	if !errors.Is(err, services.ErrMalformedData) {
		t.Fatalf("expected malformed data, got %v", err)
	}
}

func TestProjectDefaultsFPS(t *testing.T) {
	record, err := graph.DecodeProject([]byte(`{"id": "p1"}`))
	if err != nil {
		t.Fatalf("DecodeProject: %v", err)
	}
	if record.EffectiveFPS() != graph.DefaultFPS {
		t.Fatalf("fps = %v, want default", record.EffectiveFPS())
	}
	if !record.NeedsContext() {
		t.Fatal("empty type lists select the whole context and need it")
	}
}

func TestResolveRefsKeepsListOrder(t *testing.T) {
	var refs []graph.Ref[graph.UserRecord]
	if err := json.Unmarshal([]byte(`["u3", "missing", "u1"]`), &refs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	pool := []graph.UserRecord{{ID: "u1"}, {ID: "u2"}, {ID: "u3"}}
	got, missing := graph.ResolveRefs(refs, pool, func(u graph.UserRecord) string { return u.ID })
	if len(got) != 2 || got[0].ID != "u3" || got[1].ID != "u1" {
		t.Fatalf("resolved = %+v", got)
	}
	if len(missing) != 1 || missing[0] != "missing" {
		t.Fatalf("missing = %v", missing)
	}
}

func TestFilterRefsKeepsPoolOrder(t *testing.T) {
	var refs []graph.Ref[graph.TaskTypeRecord]
	if err := json.Unmarshal([]byte(`["t3", "t1", "nope"]`), &refs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	pool := []graph.TaskTypeRecord{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}}
	got, missing := graph.FilterRefs(refs, pool, func(t graph.TaskTypeRecord) string { return t.ID })
	if len(got) != 2 || got[0].ID != "t1" || got[1].ID != "t3" {
		t.Fatalf("filtered = %+v", got)
	}
	if len(missing) != 1 || missing[0] != "nope" {
		t.Fatalf("missing = %v", missing)
	}
}

func TestFilterRefsEmptyListSelectsPool(t *testing.T) {
	pool := []graph.TaskTypeRecord{{ID: "t1"}, {ID: "t2"}}
	got, missing := graph.FilterRefs(nil, pool, func(t graph.TaskTypeRecord) string { return t.ID })
	if len(got) != 2 || got[0].ID != "t1" || got[1].ID != "t2" || missing != nil {
		t.Fatalf("filtered = %+v missing = %v", got, missing)
	}
	got[0].ID = "changed"
	if pool[0].ID != "t1" {
		t.Fatal("result shares storage with the pool")
	}
}

func TestNullRefsDecodeAsMisses(t *testing.T) {
	record, err := graph.DecodeProject([]byte(`{
		"id": "p1",
		"name": "Nulls",
		"asset_types": [null, "at1"],
		"task_types": [{"id": "tt1", "name": "Layout"}],
		"task_statuses": [{"id": "ts1", "name": "Todo"}],
		"team": ["u1", null],
		"episodes": [{"id": "E1", "name": "Pilot", "sequences": [null, "S1"]}]
	}`))
	if err != nil {
		t.Fatalf("DecodeProject: %v", err)
	}
	if !record.AssetTypes[0].Empty() || record.AssetTypes[1].Empty() {
		t.Fatalf("asset type refs = %+v", record.AssetTypes)
	}

	users, missing := graph.ResolveRefs(record.Team, []graph.UserRecord{{ID: "u1"}}, func(u graph.UserRecord) string { return u.ID })
	if len(users) != 1 || users[0].ID != "u1" {
		t.Fatalf("team = %+v", users)
	}
	if len(missing) != 1 {
		t.Fatalf("expected the null member reported missing, got %v", missing)
	}

	types, missing := graph.FilterRefs(record.AssetTypes, []graph.AssetTypeRecord{{ID: "at1"}, {ID: "at2"}}, func(a graph.AssetTypeRecord) string { return a.ID })
	if len(types) != 1 || types[0].ID != "at1" || len(missing) != 1 {
		t.Fatalf("asset types = %+v missing = %v", types, missing)
	}

	if ep := record.Episodes[0].Episode(); len(ep.SequenceIDs) != 1 || ep.SequenceIDs[0] != "S1" {
		t.Fatalf("episode sequences = %v", ep.SequenceIDs)
	}

	embeddedOnly := []graph.Ref[graph.TaskTypeRecord]{{}}
	if graph.NeedsLookup(embeddedOnly) {
		t.Fatal("a null element alone should not need a lookup")
	}
}

func TestRefRejectsNumbers(t *testing.T) {
	var ref graph.Ref[graph.UserRecord]
	if err := json.Unmarshal([]byte(`12`), &ref); err == nil {
		t.Fatal("expected error for numeric ref")
	}
}

func TestDecodeShotsStaticAndKitsu(t *testing.T) {
	payload := []byte(`[
		{"id": "s1", "name": "010", "sequence_id": "S1", "startFrame": "48", "durationSeconds": 2, "thumbnailUrl": "img/s1.png"},
		{"id": "s2", "name": "020", "sequence_id": "S1", "preview_file_id": "pf2", "data": {"frame_in": 100, "frame_out": "150"}},
		{"id": "s3", "name": "030", "canceled": true, "startFrame": 0}
	]`)
	records, err := graph.DecodeShots(payload)
	if err != nil {
		t.Fatalf("DecodeShots: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected canceled shot dropped, got %d records", len(records))
	}
	static := records[0].Shot(24)
	if static.StartFrame != 48 || static.DurationSeconds != 2 || static.FPS != 24 {
		t.Fatalf("static shot = %+v", static)
	}
	if static.AssetIDs == nil || len(static.AssetIDs) != 0 {
		t.Fatalf("expected empty non-nil asset ids, got %#v", static.AssetIDs)
	}
	kitsu := records[1].Shot(25)
	if kitsu.StartFrame != 100 {
		t.Fatalf("kitsu start = %d", kitsu.StartFrame)
	}
	if kitsu.DurationSeconds != 2 {
		t.Fatalf("kitsu duration = %v, want 2", kitsu.DurationSeconds)
	}
	if records[1].PreviewFileID != "pf2" {
		t.Fatalf("preview id = %q", records[1].PreviewFileID)
	}
}

func TestDecodeShotsRejectsNonArray(t *testing.T) {
	_, err := graph.DecodeShots([]byte(`{"id": "s1"}`))
	if !errors.Is(err, services.ErrMalformedData) {
		t.Fatalf("expected malformed data, got %v", err)
	}
	_, err = graph.DecodeShots([]byte(`[{"name": "no id"}]`))
	if !errors.Is(err, services.ErrMalformedData) {
		t.Fatalf("expected malformed data for missing id, got %v", err)
	}
}

func TestDecodeAssetsDropsCanceled(t *testing.T) {
	records, err := graph.DecodeAssets([]byte(`[
		{"id": "a1", "name": "Ellie", "entity_type_id": "at1"},
		{"id": "a2", "name": "Rex", "canceled": true}
	]`))
	if err != nil {
		t.Fatalf("DecodeAssets: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one asset, got %d", len(records))
	}
	asset := records[0].Asset()
	if asset.AssetTypeID != "at1" {
		t.Fatalf("asset type = %q", asset.AssetTypeID)
	}
}

func TestDecodeEditsAcceptsSingleObject(t *testing.T) {
	records, err := graph.DecodeEdits([]byte(`{"totalFrames": 1200, "frameOffset": "10", "sourceName": "edit.mp4"}`))
	if err != nil {
		t.Fatalf("DecodeEdits: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one edit, got %d", len(records))
	}
	edit := records[0].Edit()
	if edit.TotalFrames != 1200 || edit.FrameOffset != 10 {
		t.Fatalf("edit = %+v", edit)
	}
	if edit.SourceType != graph.DefaultSourceType {
		t.Fatalf("source type = %q", edit.SourceType)
	}
	if edit.EpisodeID != "" {
		t.Fatalf("expected empty episode sentinel, got %q", edit.EpisodeID)
	}
}

func TestPlayerOptions(t *testing.T) {
	opts := graph.NewPlayerOptions(graph.Edit{SourceName: "a.mp4", SourceType: "video/webm"})
	if opts.Autoplay || !opts.Controls || opts.Preload != "auto" {
		t.Fatalf("unexpected player defaults: %+v", opts)
	}
	if len(opts.Sources) != 1 || opts.Sources[0].Src != "a.mp4" || opts.Sources[0].Type != "video/webm" {
		t.Fatalf("sources = %+v", opts.Sources)
	}
}

func TestMatchAssetsFoldsCase(t *testing.T) {
	assets := []graph.Asset{{ID: "1", Name: "Ellie"}, {ID: "2", Name: "STRASSE"}, {ID: "3", Name: "Rex"}}
	got := graph.MatchAssets(assets, "ELL")
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("match = %+v", got)
	}
	if len(graph.MatchAssets(assets, "  ")) != 3 {
		t.Fatal("blank query should match all")
	}
	if len(graph.MatchAssets(assets, "strasse")) != 1 {
		t.Fatal("expected case-insensitive match")
	}
}

func TestUserDisplayName(t *testing.T) {
	if (graph.UserRecord{ID: "u", FirstName: "Ada", LastName: "L"}).DisplayName() != "Ada L" {
		t.Fatal("expected first/last fallback")
	}
	if (graph.UserRecord{ID: "u"}).DisplayName() != "u" {
		t.Fatal("expected id fallback")
	}
}
