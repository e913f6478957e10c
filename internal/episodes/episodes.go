package episodes

import "github.com/satishgoda/watchtower/internal/graph"

// SequenceIDs returns the ordered sequence ids of the episode. An unknown
// episode yields an empty list, so anything filtered by it is empty too.
func SequenceIDs(eps []graph.Episode, episodeID string) []string {
	ep, ok := graph.FindEpisode(eps, episodeID)
	if !ok {
		return []string{}
	}
	return append([]string{}, ep.SequenceIDs...)
}

// FilterSequences keeps the sequences that belong to the episode, preserving
// input order. A blank episodeID disables filtering.
func FilterSequences(sequences []graph.Sequence, eps []graph.Episode, episodeID string) []graph.Sequence {
	if episodeID == "" {
		return sequences
	}
	members := memberSet(eps, episodeID)
	out := make([]graph.Sequence, 0, len(sequences))
	for _, seq := range sequences {
		if _, ok := members[seq.ID]; ok {
			out = append(out, seq)
		}
	}
	return out
}

// FilterShots keeps the shots whose sequence belongs to the episode,
// preserving input order. A blank episodeID disables filtering.
func FilterShots(shots []graph.Shot, eps []graph.Episode, episodeID string) []graph.Shot {
	if episodeID == "" {
		return shots
	}
	members := memberSet(eps, episodeID)
	out := make([]graph.Shot, 0, len(shots))
	for _, shot := range shots {
		if _, ok := members[shot.SequenceID]; ok {
			out = append(out, shot)
		}
	}
	return out
}

// SelectEdit picks the edit for episodeID: the matching edit when an episode
// is given, otherwise the first edit. ok is false when nothing matches.
func SelectEdit(edits []graph.Edit, episodeID string) (graph.Edit, bool) {
	if len(edits) == 0 {
		return graph.Edit{}, false
	}
	if episodeID == "" {
		return edits[0], true
	}
	for _, edit := range edits {
		if edit.EpisodeID == episodeID {
			return edit, true
		}
	}
	return graph.Edit{}, false
}

func memberSet(eps []graph.Episode, episodeID string) map[string]struct{} {
	ids := SequenceIDs(eps, episodeID)
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
