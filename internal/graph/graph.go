package graph

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// SortShots orders shots ascending by StartFrame. Equal start frames keep
// their arrival order.
func SortShots(shots []Shot) {
	sort.SliceStable(shots, func(i, j int) bool {
		return shots[i].StartFrame < shots[j].StartFrame
	})
}

// ShotsSorted reports whether shots are in timeline order.
func ShotsSorted(shots []Shot) bool {
	return sort.SliceIsSorted(shots, func(i, j int) bool {
		return shots[i].StartFrame < shots[j].StartFrame
	})
}

// FindShot returns the first shot with id.
func FindShot(shots []Shot, id string) (Shot, bool) {
	for _, shot := range shots {
		if shot.ID == id {
			return shot, true
		}
	}
	return Shot{}, false
}

// FindAsset returns the first asset with id.
func FindAsset(assets []Asset, id string) (Asset, bool) {
	for _, asset := range assets {
		if asset.ID == id {
			return asset, true
		}
	}
	return Asset{}, false
}

// FindSequence returns the first sequence with id.
func FindSequence(sequences []Sequence, id string) (Sequence, bool) {
	for _, seq := range sequences {
		if seq.ID == id {
			return seq, true
		}
	}
	return Sequence{}, false
}

// FindEpisode returns the first episode with id.
func FindEpisode(episodes []Episode, id string) (Episode, bool) {
	for _, ep := range episodes {
		if ep.ID == id {
			return ep, true
		}
	}
	return Episode{}, false
}

// MatchName reports whether query occurs in name, ignoring case. A blank query
// matches everything.
func MatchName(name, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	folder := cases.Fold()
	return strings.Contains(folder.String(name), folder.String(query))
}

// MatchAssets returns the assets whose name matches query, in input order.
func MatchAssets(assets []Asset, query string) []Asset {
	out := make([]Asset, 0, len(assets))
	for _, asset := range assets {
		if MatchName(asset.Name, query) {
			out = append(out, asset)
		}
	}
	return out
}
