package dataurls

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/satishgoda/watchtower/internal/config"
	"github.com/satishgoda/watchtower/internal/services"
)

// Resource names a kind of upstream payload.
type Resource string

const (
	ResourceContext   Resource = "context"
	ResourceProjects  Resource = "projects"
	ResourceProject   Resource = "project"
	ResourceSequences Resource = "sequences"
	ResourceShots     Resource = "shots"
	ResourceAssets    Resource = "assets"
	ResourceCasting   Resource = "casting"
	ResourceEdits     Resource = "edits"
)

// ProjectResources lists the per-project payloads in pipeline order.
var ProjectResources = []Resource{
	ResourceProject,
	ResourceShots,
	ResourceAssets,
	ResourceSequences,
	ResourceCasting,
	ResourceEdits,
}

// ProjectScoped reports whether the resource needs a project id.
func (r Resource) ProjectScoped() bool {
	switch r {
	case ResourceContext, ResourceProjects:
		return false
	default:
		return true
	}
}

// Valid reports whether r is a known resource.
func (r Resource) Valid() bool {
	switch r {
	case ResourceContext, ResourceProjects, ResourceProject, ResourceSequences,
		ResourceShots, ResourceAssets, ResourceCasting, ResourceEdits:
		return true
	}
	return false
}

const (
	placeholderAsset = "static/img/placeholder-asset.png"
	placeholderUser  = "static/img/placeholder-user.png"
)

// Resolver maps resources and media references to URLs for one data mode.
type Resolver struct {
	static   bool
	basePath string
}

// New builds a resolver. basePath is the prefix the dashboard is served
// under; it is normalised to start and end with a slash.
func New(mode, basePath string) Resolver {
	return Resolver{
		static:   !strings.EqualFold(strings.TrimSpace(mode), config.ModeAPI),
		basePath: normalizeBasePath(basePath),
	}
}

// FromConfig builds a resolver from the data source section.
func FromConfig(cfg *config.Config) Resolver {
	if cfg == nil {
		return New(config.ModeStatic, "/")
	}
	return New(cfg.DataSource.Mode, cfg.DataSource.BasePath)
}

// Static reports whether URLs target the static export tree.
func (r Resolver) Static() bool { return r.static }

// BasePath returns the normalised base path.
func (r Resolver) BasePath() string { return r.basePath }

// StaticFile returns the path of a resource inside a static export tree,
// relative to its root.
func StaticFile(resource Resource, projectID string) (string, error) {
	if err := checkRequest(resource, projectID); err != nil {
		return "", err
	}
	switch resource {
	case ResourceContext, ResourceProjects:
		return "data/projects/context.json", nil
	default:
		return path.Join("data/projects", url.PathEscape(projectID), string(resource)+".json"), nil
	}
}

// Path returns the request path (with query) for a resource, relative to the
// data source base URL.
func (r Resolver) Path(resource Resource, projectID string) (string, error) {
	if r.static {
		file, err := StaticFile(resource, projectID)
		if err != nil {
			return "", err
		}
		return r.basePath + file, nil
	}
	if err := checkRequest(resource, projectID); err != nil {
		return "", err
	}
	escaped := url.PathEscape(projectID)
	query := url.Values{"project_id": {projectID}}.Encode()
	switch resource {
	case ResourceContext, ResourceProjects:
		return "/api/data/user/context", nil
	case ResourceProject:
		return "/api/data/projects/" + escaped, nil
	case ResourceSequences:
		return "/api/data/sequences?" + query, nil
	case ResourceShots:
		return "/api/data/shots/with-tasks?" + query, nil
	case ResourceAssets:
		return "/api/data/assets/with-tasks?" + query, nil
	case ResourceCasting:
		return "/api/data/projects/" + escaped + "/casting", nil
	case ResourceEdits:
		return "/api/data/projects/" + escaped + "/edits", nil
	}
	return "", services.Wrap(services.ErrConfiguration, "", "resolve url", fmt.Sprintf("unknown resource %q", resource), nil)
}

// Thumbnail resolves a shot or asset thumbnail. In static mode the stored path
// is prefixed with the base path; in API mode a preview file id wins. Anything
// unresolvable gets the asset placeholder.
func (r Resolver) Thumbnail(stored *string, previewFileID string) string {
	previewFileID = strings.TrimSpace(previewFileID)
	if !r.static && previewFileID != "" {
		return "/api/pictures/thumbnails/preview-files/" + url.PathEscape(previewFileID) + ".png"
	}
	if stored != nil && strings.TrimSpace(*stored) != "" {
		return r.media(*stored)
	}
	return r.PlaceholderAsset()
}

// Avatar resolves a team member's profile picture.
func (r Resolver) Avatar(userID string, hasAvatar bool, stored *string) string {
	if !hasAvatar {
		return r.PlaceholderUser()
	}
	if stored != nil && strings.TrimSpace(*stored) != "" {
		return r.media(*stored)
	}
	if !r.static && strings.TrimSpace(userID) != "" {
		return "/api/pictures/thumbnails/persons/" + url.PathEscape(userID) + ".png"
	}
	return r.PlaceholderUser()
}

// EditSource returns the default edit media location for a project.
func (r Resolver) EditSource(projectID string) string {
	return r.basePath + path.Join("data/projects", url.PathEscape(projectID), "edit.mp4")
}

// PlaceholderAsset is the image used for shots and assets without a thumbnail.
func (r Resolver) PlaceholderAsset() string { return r.basePath + placeholderAsset }

// PlaceholderUser is the image used for users without an avatar.
func (r Resolver) PlaceholderUser() string { return r.basePath + placeholderUser }

func (r Resolver) media(stored string) string {
	stored = strings.TrimSpace(stored)
	if u, err := url.Parse(stored); err == nil && u.IsAbs() {
		return stored
	}
	if !r.static && strings.HasPrefix(stored, "/") {
		return stored
	}
	return r.basePath + strings.TrimLeft(stored, "/")
}

func checkRequest(resource Resource, projectID string) error {
	if !resource.Valid() {
		return services.Wrap(services.ErrConfiguration, "", "resolve url", fmt.Sprintf("unknown resource %q", resource), nil)
	}
	if resource.ProjectScoped() && strings.TrimSpace(projectID) == "" {
		return services.Wrap(services.ErrConfiguration, string(resource), "resolve url", "project id required", nil)
	}
	return nil
}

func normalizeBasePath(basePath string) string {
	trimmed := strings.Trim(strings.TrimSpace(basePath), "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed + "/"
}
