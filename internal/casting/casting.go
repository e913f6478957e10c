package casting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/satishgoda/watchtower/internal/graph"
	"github.com/satishgoda/watchtower/internal/services"
)

// Link lists the assets cast in one shot.
type Link struct {
	ShotID   string   `json:"shot_id"`
	AssetIDs []string `json:"asset_ids"`
}

// CrossReference fills shot.AssetIDs and asset.ShotIDs from links and returns
// new slices; the inputs are not modified.
//
// A shot takes the asset ids of the first link naming it; later links for the
// same shot are ignored. An asset collects, in link order, every linked shot
// id whose asset list contains it, without duplicates.
func CrossReference(shots []graph.Shot, assets []graph.Asset, links []Link) ([]graph.Shot, []graph.Asset) {
	byShot := make(map[string][]string, len(links))
	byAsset := make(map[string][]string)
	seenPair := make(map[[2]string]struct{})
	for _, link := range links {
		if _, ok := byShot[link.ShotID]; !ok {
			byShot[link.ShotID] = dedupe(link.AssetIDs)
		}
		for _, assetID := range link.AssetIDs {
			key := [2]string{assetID, link.ShotID}
			if _, ok := seenPair[key]; ok {
				continue
			}
			seenPair[key] = struct{}{}
			byAsset[assetID] = append(byAsset[assetID], link.ShotID)
		}
	}

	outShots := make([]graph.Shot, len(shots))
	for i, shot := range shots {
		ids := byShot[shot.ID]
		shot.AssetIDs = append(make([]string, 0, len(ids)), ids...)
		outShots[i] = shot
	}
	outAssets := make([]graph.Asset, len(assets))
	for i, asset := range assets {
		ids := byAsset[asset.ID]
		asset.ShotIDs = append(make([]string, 0, len(ids)), ids...)
		outAssets[i] = asset
	}
	return outShots, outAssets
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Decode parses a casting payload. Two shapes are accepted: a list of
// {shot_id, asset_ids} links, or an object keyed by shot id whose values list
// {asset_id} entries (the tracker's per-sequence casting form). Object key
// order is preserved.
func Decode(data []byte) ([]Link, error) {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return nil, malformed("empty payload", nil)
	case bytes.Equal(trimmed, []byte("null")):
		return nil, nil
	case trimmed[0] == '[':
		var links []Link
		if err := json.Unmarshal(trimmed, &links); err != nil {
			return nil, malformed("decode casting list", err)
		}
		for i, link := range links {
			if link.ShotID == "" {
				return nil, malformed(fmt.Sprintf("casting link %d has no shot_id", i), nil)
			}
		}
		return links, nil
	case trimmed[0] == '{':
		return decodeKeyed(trimmed)
	default:
		return nil, malformed("expected a JSON array or object", nil)
	}
}

type castEntry struct {
	AssetID string `json:"asset_id"`
	ID      string `json:"id"`
}

func decodeKeyed(data []byte) ([]Link, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, malformed("decode casting object", err)
	}
	var links []Link
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed("decode casting object", err)
		}
		shotID, ok := tok.(string)
		if !ok {
			return nil, malformed("casting key is not a string", nil)
		}
		var entries []castEntry
		if err := dec.Decode(&entries); err != nil {
			return nil, malformed(fmt.Sprintf("decode casting for shot %s", shotID), err)
		}
		link := Link{ShotID: shotID, AssetIDs: make([]string, 0, len(entries))}
		for _, entry := range entries {
			id := entry.AssetID
			if id == "" {
				id = entry.ID
			}
			if id != "" {
				link.AssetIDs = append(link.AssetIDs, id)
			}
		}
		links = append(links, link)
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, malformed("decode casting object", err)
	}
	return links, nil
}

func malformed(message string, err error) error {
	return services.Wrap(services.ErrMalformedData, "casting", "decode", message, err)
}
