package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/satishgoda/watchtower/internal/config"
	"github.com/satishgoda/watchtower/internal/dataurls"
	"github.com/satishgoda/watchtower/internal/services"
)

// Dir reads resources from a local static export tree.
type Dir struct {
	root string
}

var (
	_ Fetcher = (*Dir)(nil)
	_ Locator = (*Dir)(nil)
)

// NewDir returns a fetcher rooted at an existing directory.
func NewDir(root string) (*Dir, error) {
	expanded, err := config.ExpandPath(root)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "open data dir", "", err)
	}
	info, err := os.Stat(expanded)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "open data dir", expanded, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrConfiguration, "", "open data dir", fmt.Sprintf("%s is not a directory", expanded), nil)
	}
	return &Dir{root: expanded}, nil
}

// Root returns the absolute tree root.
func (d *Dir) Root() string { return d.root }

// Location returns the file path for a request.
func (d *Dir) Location(req Request) (string, error) {
	rel, err := dataurls.StaticFile(req.Resource, req.ProjectID)
	if err != nil {
		return "", err
	}
	return filepath.Join(d.root, filepath.FromSlash(rel)), nil
}

// Fetch reads the payload for req from disk.
func (d *Dir) Fetch(ctx context.Context, req Request) ([]byte, error) {
	stage := string(req.Resource)
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrSuperseded, stage, "read file", "", err)
	}
	path, err := d.Location(req)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrTransport, stage, "read file", path+" not found", err)
		}
		return nil, services.Wrap(services.ErrTransport, stage, "read file", path, err)
	}
	if !json.Valid(data) {
		return nil, services.Wrap(services.ErrMalformedData, stage, "read file", path+" is not valid JSON", nil)
	}
	return data, nil
}
