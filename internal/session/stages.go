package session

import (
	"context"
	"log/slog"

	"github.com/satishgoda/watchtower/internal/casting"
	"github.com/satishgoda/watchtower/internal/colors"
	"github.com/satishgoda/watchtower/internal/dataurls"
	"github.com/satishgoda/watchtower/internal/episodes"
	"github.com/satishgoda/watchtower/internal/fetch"
	"github.com/satishgoda/watchtower/internal/graph"
	"github.com/satishgoda/watchtower/internal/logging"
)

// stage fetches and derives a result without touching the session. The
// returned apply func publishes it and is only called while the run is
// still current.
type stage struct {
	name   string
	impact string
	run    func(ctx context.Context, logger *slog.Logger) (apply func(), err error)
}

type pipeline struct {
	session   *Session
	fetcher   fetch.Fetcher
	palette   colors.Palette
	resolver  dataurls.Resolver
	projectID string
	episodeID string
}

func (p *pipeline) stages() []stage {
	return []stage{
		{name: StageProject, impact: "project metadata, team, and type lists unavailable", run: p.loadProject},
		{name: StageShots, impact: "timeline shows no shots", run: p.loadShots},
		{name: StageAssets, impact: "asset list is empty", run: p.loadAssets},
		{name: StageSequences, impact: "timeline shows no sequences", run: p.loadSequences},
		{name: StageCasting, impact: "shot and asset casting links unavailable", run: p.loadCasting},
		{name: StageEdit, impact: "playback uses default frame range", run: p.loadEdit},
	}
}

func (p *pipeline) fetch(ctx context.Context, resource fetch.Resource) ([]byte, error) {
	return p.fetcher.Fetch(ctx, fetch.Request{Resource: resource, ProjectID: p.projectID})
}

func (p *pipeline) loadProject(ctx context.Context, logger *slog.Logger) (func(), error) {
	body, err := p.fetch(ctx, fetch.ResourceProject)
	if err != nil {
		return nil, err
	}
	record, err := graph.DecodeProject(body)
	if err != nil {
		return nil, err
	}

	var lookup graph.ContextRecord
	if record.NeedsContext() {
		lookup = p.loadContext(ctx, logger)
	}

	project := graph.Project{
		ID:           record.ID,
		Name:         record.Name,
		Ratio:        record.Ratio,
		Resolution:   record.Resolution,
		FPS:          record.EffectiveFPS(),
		ThumbnailURL: p.resolver.Thumbnail(record.ThumbnailURL, ""),
		AssetTypes:   []graph.AssetType{},
		TaskTypes:    []graph.TaskType{},
		TaskStatuses: []graph.TaskStatus{},
		Team:         []graph.ProcessedUser{},
		Episodes:     make([]graph.Episode, 0, len(record.Episodes)),
	}

	assetTypes, missing := graph.FilterRefs(record.AssetTypes, lookup.AssetTypes, func(r graph.AssetTypeRecord) string { return r.ID })
	p.logMissing(logger, "asset_types", missing)
	typeColors := p.assetTypeColors(lookup.AssetTypes, assetTypes)
	for _, r := range assetTypes {
		project.AssetTypes = append(project.AssetTypes, graph.AssetType{ID: r.ID, Name: r.Name, Color: typeColors[r.ID]})
	}

	taskTypes, missing := graph.FilterRefs(record.TaskTypes, lookup.TaskTypes, func(r graph.TaskTypeRecord) string { return r.ID })
	p.logMissing(logger, "task_types", missing)
	for i, r := range taskTypes {
		project.TaskTypes = append(project.TaskTypes, graph.TaskType{
			ID:       r.ID,
			Name:     r.Name,
			Color:    p.upstreamColor(logger, "task_type", r.ID, r.Color, i),
			ForShots: r.ForShots,
		})
	}

	statuses, missing := graph.FilterRefs(record.TaskStatuses, lookup.TaskStatuses, func(r graph.TaskStatusRecord) string { return r.ID })
	p.logMissing(logger, "task_statuses", missing)
	for i, r := range statuses {
		project.TaskStatuses = append(project.TaskStatuses, graph.TaskStatus{
			ID:    r.ID,
			Name:  r.Name,
			Color: p.upstreamColor(logger, "task_status", r.ID, r.Color, i),
		})
	}

	users, missing := graph.ResolveRefs(record.Team, lookup.Users, func(r graph.UserRecord) string { return r.ID })
	p.logMissing(logger, "team", missing)
	for _, u := range users {
		project.Team = append(project.Team, graph.ProcessedUser{
			ID:             u.ID,
			Name:           u.DisplayName(),
			ProfilePicture: p.resolver.Avatar(u.ID, u.HasAvatar, u.ThumbnailURL),
		})
	}
	colors.Assign(project.Team, p.palette, func(u *graph.ProcessedUser, c colors.Color) { u.Color = c })

	for _, ep := range record.Episodes {
		project.Episodes = append(project.Episodes, ep.Episode())
	}
	if p.episodeID != "" {
		if _, ok := graph.FindEpisode(project.Episodes, p.episodeID); !ok {
			logger.Warn("episode not found in project",
				logging.String(logging.FieldEventType, "lookup_miss"),
				logging.String(logging.FieldEpisodeID, p.episodeID),
				logging.String(logging.FieldErrorHint, "pick one of the project's episodes"),
				logging.String(logging.FieldImpact, "episode-scoped shots and sequences will be empty"),
			)
		}
	}

	return func() { p.session.setProject(project) }, nil
}

// loadContext fetches the global lookup lists. A failure only degrades id-only
// references, so it is logged rather than failing the project stage.
func (p *pipeline) loadContext(ctx context.Context, logger *slog.Logger) graph.ContextRecord {
	body, err := p.fetch(ctx, fetch.ResourceContext)
	if err == nil {
		var record graph.ContextRecord
		if record, err = graph.DecodeContext(body); err == nil {
			return record
		}
	}
	logging.WarnWithContext(logger, "context lookup unavailable", "context_unavailable",
		logging.String(logging.FieldResource, string(fetch.ResourceContext)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check that context.json or /api/data/user/context is served"),
		logging.String(logging.FieldImpact, "team and type lists given as ids will be empty"),
	)
	return graph.ContextRecord{}
}

// assetTypeColors colors asset types by their position in the global context
// list, so a type keeps its color across projects. Types the context does not
// know continue the sequence in project order.
func (p *pipeline) assetTypeColors(global, scoped []graph.AssetTypeRecord) map[string]colors.Color {
	out := make(map[string]colors.Color, len(global)+len(scoped))
	for i, r := range global {
		if _, ok := out[r.ID]; !ok {
			out[r.ID] = p.palette.At(i)
		}
	}
	next := len(global)
	for _, r := range scoped {
		if _, ok := out[r.ID]; !ok {
			out[r.ID] = p.palette.At(next)
			next++
		}
	}
	return out
}

func (p *pipeline) logMissing(logger *slog.Logger, list string, missing []string) {
	if len(missing) == 0 {
		return
	}
	logger.Debug("unresolved references skipped",
		logging.String(logging.FieldEventType, "lookup_miss"),
		logging.String("list", list),
		logging.Any("ids", missing),
	)
}

func (p *pipeline) upstreamColor(logger *slog.Logger, kind, id, hex string, index int) colors.Color {
	c, err := colors.ParseHex(hex)
	if err == nil {
		return c
	}
	logging.WarnWithContext(logger, "invalid upstream color replaced", "color_fallback",
		logging.String("kind", kind),
		logging.String("id", id),
		logging.String("color", hex),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "fix the color in the tracker settings"),
		logging.String(logging.FieldImpact, "item is drawn with a palette color"),
	)
	return p.palette.At(index)
}

func (p *pipeline) loadShots(ctx context.Context, logger *slog.Logger) (func(), error) {
	body, err := p.fetch(ctx, fetch.ResourceShots)
	if err != nil {
		return nil, err
	}
	records, err := graph.DecodeShots(body)
	if err != nil {
		return nil, err
	}
	project := p.session.Project()
	shots := make([]graph.Shot, 0, len(records))
	skipped := 0
	for _, record := range records {
		if !record.Placed() {
			skipped++
			continue
		}
		shot := record.Shot(project.FPS)
		shot.ThumbnailURL = p.resolver.Thumbnail(record.ThumbnailURL, record.PreviewFileID)
		shots = append(shots, shot)
	}
	if skipped > 0 {
		logging.WarnWithContext(logger, "shots without a start frame skipped", "shot_unplaced",
			logging.Int("count", skipped),
			logging.String(logging.FieldErrorHint, "set frame_in on the shots in the tracker"),
			logging.String(logging.FieldImpact, "those shots are missing from the timeline"),
		)
	}
	shots = episodes.FilterShots(shots, project.Episodes, p.episodeID)
	graph.SortShots(shots)
	return func() { p.session.setShots(shots) }, nil
}

func (p *pipeline) loadAssets(ctx context.Context, _ *slog.Logger) (func(), error) {
	body, err := p.fetch(ctx, fetch.ResourceAssets)
	if err != nil {
		return nil, err
	}
	records, err := graph.DecodeAssets(body)
	if err != nil {
		return nil, err
	}
	assets := make([]graph.Asset, 0, len(records))
	for _, record := range records {
		asset := record.Asset()
		asset.ThumbnailURL = p.resolver.Thumbnail(record.ThumbnailURL, record.PreviewFileID)
		assets = append(assets, asset)
	}
	return func() { p.session.setAssets(assets) }, nil
}

func (p *pipeline) loadSequences(ctx context.Context, _ *slog.Logger) (func(), error) {
	body, err := p.fetch(ctx, fetch.ResourceSequences)
	if err != nil {
		return nil, err
	}
	records, err := graph.DecodeSequences(body)
	if err != nil {
		return nil, err
	}
	sequences := make([]graph.Sequence, 0, len(records))
	for _, record := range records {
		sequences = append(sequences, graph.Sequence{ID: record.ID, Name: record.Name})
	}
	sequences = episodes.FilterSequences(sequences, p.session.Project().Episodes, p.episodeID)
	colors.Assign(sequences, p.palette, func(s *graph.Sequence, c colors.Color) { s.Color = c })
	return func() { p.session.setSequences(sequences) }, nil
}

func (p *pipeline) loadCasting(ctx context.Context, _ *slog.Logger) (func(), error) {
	body, err := p.fetch(ctx, fetch.ResourceCasting)
	if err != nil {
		return nil, err
	}
	links, err := casting.Decode(body)
	if err != nil {
		return nil, err
	}
	shots, assets := casting.CrossReference(p.session.Shots(), p.session.Assets(), links)
	return func() { p.session.setCasting(shots, assets) }, nil
}

func (p *pipeline) loadEdit(ctx context.Context, logger *slog.Logger) (func(), error) {
	body, err := p.fetch(ctx, fetch.ResourceEdits)
	if err != nil {
		return nil, err
	}
	records, err := graph.DecodeEdits(body)
	if err != nil {
		return nil, err
	}
	edits := make([]graph.Edit, 0, len(records))
	for _, record := range records {
		edit := record.Edit()
		if edit.SourceName == "" {
			edit.SourceName = p.resolver.EditSource(p.projectID)
		}
		edits = append(edits, edit)
	}
	selected, ok := episodes.SelectEdit(edits, p.episodeID)
	if !ok {
		logger.Warn("no edit for episode",
			logging.String(logging.FieldEventType, "lookup_miss"),
			logging.Int("edits", len(edits)),
			logging.String(logging.FieldErrorHint, "export an edit for this episode"),
			logging.String(logging.FieldImpact, "playback uses default frame range"),
		)
	}
	return func() { p.session.setEdits(edits, selected, ok) }, nil
}
