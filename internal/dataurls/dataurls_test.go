package dataurls_test

import (
	"errors"
	"testing"

	"github.com/satishgoda/watchtower/internal/dataurls"
	"github.com/satishgoda/watchtower/internal/services"
)

func strPtr(s string) *string { return &s }

func TestStaticPaths(t *testing.T) {
	r := dataurls.New("static", "watchtower")
	cases := map[dataurls.Resource]string{
		dataurls.ResourceContext:   "/watchtower/data/projects/context.json",
		dataurls.ResourceProjects:  "/watchtower/data/projects/context.json",
		dataurls.ResourceProject:   "/watchtower/data/projects/p1/project.json",
		dataurls.ResourceShots:     "/watchtower/data/projects/p1/shots.json",
		dataurls.ResourceCasting:   "/watchtower/data/projects/p1/casting.json",
		dataurls.ResourceEdits:     "/watchtower/data/projects/p1/edits.json",
		dataurls.ResourceSequences: "/watchtower/data/projects/p1/sequences.json",
	}
	for resource, want := range cases {
		got, err := r.Path(resource, "p1")
		if err != nil {
			t.Fatalf("Path(%s): %v", resource, err)
		}
		if got != want {
			t.Fatalf("Path(%s) = %q, want %q", resource, got, want)
		}
	}
}

func TestAPIPaths(t *testing.T) {
	r := dataurls.New("api", "/")
	cases := map[dataurls.Resource]string{
		dataurls.ResourceContext: "/api/data/user/context",
		dataurls.ResourceProject: "/api/data/projects/p1",
		dataurls.ResourceShots:   "/api/data/shots/with-tasks?project_id=p1",
		dataurls.ResourceAssets:  "/api/data/assets/with-tasks?project_id=p1",
		dataurls.ResourceCasting: "/api/data/projects/p1/casting",
	}
	for resource, want := range cases {
		got, err := r.Path(resource, "p1")
		if err != nil {
			t.Fatalf("Path(%s): %v", resource, err)
		}
		if got != want {
			t.Fatalf("Path(%s) = %q, want %q", resource, got, want)
		}
	}
}

func TestPathRequiresProjectID(t *testing.T) {
	_, err := dataurls.New("static", "/").Path(dataurls.ResourceShots, " ")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := dataurls.New("static", "/").Path(dataurls.Resource("bogus"), "p1"); err == nil {
		t.Fatal("expected error for unknown resource")
	}
}

func TestThumbnailPolicy(t *testing.T) {
	static := dataurls.New("static", "/wt/")
	if got := static.Thumbnail(nil, ""); got != "/wt/static/img/placeholder-asset.png" {
		t.Fatalf("static placeholder = %q", got)
	}
	if got := static.Thumbnail(strPtr("img/a.png"), "pf"); got != "/wt/img/a.png" {
		t.Fatalf("static thumbnail = %q", got)
	}

	api := dataurls.New("api", "/")
	if got := api.Thumbnail(nil, "pf1"); got != "/api/pictures/thumbnails/preview-files/pf1.png" {
		t.Fatalf("api thumbnail = %q", got)
	}
	if got := api.Thumbnail(nil, ""); got != "/static/img/placeholder-asset.png" {
		t.Fatalf("api placeholder = %q", got)
	}
}

func TestAvatarPolicy(t *testing.T) {
	r := dataurls.New("static", "/")
	if got := r.Avatar("u1", false, strPtr("img/u1.png")); got != "/static/img/placeholder-user.png" {
		t.Fatalf("avatar without flag = %q", got)
	}
	if got := r.Avatar("u1", true, strPtr("img/u1.png")); got != "/img/u1.png" {
		t.Fatalf("avatar = %q", got)
	}
	if got := r.Avatar("u1", true, strPtr("https://cdn.example.com/u1.png")); got != "https://cdn.example.com/u1.png" {
		t.Fatalf("absolute avatar = %q", got)
	}
}

func TestStaticFile(t *testing.T) {
	got, err := dataurls.StaticFile(dataurls.ResourceAssets, "p1")
	if err != nil {
		t.Fatalf("StaticFile: %v", err)
	}
	if got != "data/projects/p1/assets.json" {
		t.Fatalf("StaticFile = %q", got)
	}
}
