package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/satishgoda/watchtower/internal/colors"
	"github.com/satishgoda/watchtower/internal/dataurls"
	"github.com/satishgoda/watchtower/internal/fetch"
	"github.com/satishgoda/watchtower/internal/graph"
	"github.com/satishgoda/watchtower/internal/logging"
	"github.com/satishgoda/watchtower/internal/services"
)

// Store holds the current session and builds new ones. Only the most recent
// InitWithProject call may publish results; older runs are canceled and their
// remaining stages recorded as superseded.
type Store struct {
	fetcher  fetch.Fetcher
	palette  colors.Palette
	resolver dataurls.Resolver
	logger   *slog.Logger

	mu      sync.Mutex
	current *Session
	token   uint64
	cancel  context.CancelFunc
}

// Option configures a Store.
type Option func(*Store)

// WithPalette sets the colors used for index-based assignment.
func WithPalette(palette colors.Palette) Option {
	return func(s *Store) {
		if len(palette) > 0 {
			s.palette = palette
		}
	}
}

// WithResolver sets the URL policy used for thumbnails and avatars.
func WithResolver(resolver dataurls.Resolver) Option {
	return func(s *Store) {
		s.resolver = resolver
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a store fetching through fetcher.
func NewStore(fetcher fetch.Fetcher, opts ...Option) *Store {
	s := &Store{
		fetcher:  fetcher,
		palette:  colors.DefaultPalette(),
		resolver: dataurls.New("static", "/"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "session")
	return s
}

// Current returns the most recently created session, or nil.
func (s *Store) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Store) isCurrent(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token == token
}

// InitWithProject discards the current session and builds a new one for
// projectID, scoped to episodeID when it is not blank. Stages run in order and
// fail independently; their outcomes are in the returned report. The only
// error is for a blank project id.
func (s *Store) InitWithProject(ctx context.Context, projectID, episodeID string) (*Report, error) {
	projectID = strings.TrimSpace(projectID)
	episodeID = strings.TrimSpace(episodeID)
	if projectID == "" {
		return nil, services.Wrap(services.ErrConfiguration, "", "init project", "project id required", nil)
	}

	recorder := logging.NewRecorder(slog.LevelWarn, 0)
	sessionID := uuid.NewString()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.token++
	token := s.token
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	sess := newSession(sessionID, token, projectID, episodeID, recorder)
	s.current = sess
	s.mu.Unlock()
	defer cancel()

	runCtx = services.WithProjectID(runCtx, projectID)
	runCtx = services.WithEpisodeID(runCtx, episodeID)
	runCtx = services.WithSessionID(runCtx, sessionID)
	logger := logging.WithContext(runCtx, logging.TeeLogger(s.logger, recorder))

	logger.Info("session started",
		logging.String(logging.FieldEventType, "session_start"),
		logging.Int("stages", len(StageNames)),
	)

	p := &pipeline{
		session:   sess,
		fetcher:   s.fetcher,
		palette:   s.palette,
		resolver:  s.resolver,
		projectID: projectID,
		episodeID: episodeID,
	}
	report := &Report{
		SessionID: sessionID,
		ProjectID: projectID,
		EpisodeID: episodeID,
		Started:   time.Now(),
	}
	for _, st := range p.stages() {
		if !s.isCurrent(token) || runCtx.Err() != nil {
			report.Stages = append(report.Stages, supersededResult(st.name))
			continue
		}
		report.Stages = append(report.Stages, s.runStage(runCtx, logger, token, st))
	}
	report.Finished = time.Now()

	failed := len(report.Failed())
	logger.Info("session finished",
		logging.String(logging.FieldEventType, "session_complete"),
		logging.Int("failed_stages", failed),
		logging.Bool("superseded", report.Superseded()),
		logging.Duration("elapsed", report.Finished.Sub(report.Started)),
	)
	return report, nil
}

func supersededResult(name string) StageResult {
	err := services.Wrap(services.ErrSuperseded, name, "run stage", "a newer session replaced this one", nil)
	return StageResult{
		Stage:     name,
		Status:    StatusSuperseded,
		Err:       err,
		Error:     err.Error(),
		ErrorKind: services.Classify(err),
	}
}

func (s *Store) runStage(ctx context.Context, logger *slog.Logger, token uint64, st stage) StageResult {
	ctx = services.WithStage(ctx, st.name)
	stageLogger := logger.With(logging.String(logging.FieldStage, st.name))
	stageLogger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))

	start := time.Now()
	apply, err := st.run(ctx, stageLogger)
	elapsed := time.Since(start)

	if err == nil && !s.isCurrent(token) {
		err = services.Wrap(services.ErrSuperseded, st.name, "apply result", "a newer session replaced this one", nil)
	}
	if err != nil && (errors.Is(err, services.ErrSuperseded) || !s.isCurrent(token)) {
		stageLogger.Debug("stage result discarded",
			logging.String(logging.FieldEventType, "stage_superseded"),
			logging.Error(err),
		)
		res := supersededResult(st.name)
		res.Duration = elapsed
		return res
	}
	if err != nil {
		kind := services.Classify(err)
		logging.ErrorWithContext(stageLogger, "stage failed", "stage_failure",
			logging.String(logging.FieldErrorKind, kind),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, stageHint(kind)),
			logging.String(logging.FieldImpact, st.impact),
			logging.Duration("elapsed", elapsed),
		)
		return StageResult{
			Stage:     st.name,
			Status:    StatusFailed,
			Err:       err,
			Error:     err.Error(),
			ErrorKind: kind,
			Duration:  elapsed,
		}
	}

	apply()
	stageLogger.Debug("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", elapsed),
	)
	return StageResult{Stage: st.name, Status: StatusOK, Duration: elapsed}
}

func stageHint(kind string) string {
	switch kind {
	case "malformed_data":
		return "inspect the upstream payload for missing or mistyped fields"
	case "configuration":
		return "check data_source settings in the config file"
	default:
		return "check data_source.base_url and that the provider is reachable"
	}
}

// FetchProjectList returns the projects (with their episodes) offered by the
// data source, for the project picker.
func (s *Store) FetchProjectList(ctx context.Context) ([]graph.ProjectListItem, error) {
	body, err := s.fetcher.Fetch(ctx, fetch.Request{Resource: fetch.ResourceProjects})
	if err != nil {
		return nil, err
	}
	record, err := graph.DecodeContext(body)
	if err != nil {
		return nil, err
	}
	items := make([]graph.ProjectListItem, 0, len(record.Projects))
	for _, item := range record.Projects {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		if item.ThumbnailURL == "" {
			item.ThumbnailURL = s.resolver.PlaceholderAsset()
		} else {
			thumb := item.ThumbnailURL
			item.ThumbnailURL = s.resolver.Thumbnail(&thumb, "")
		}
		if item.Episodes == nil {
			item.Episodes = []graph.EpisodeListItem{}
		}
		items = append(items, item)
	}
	return items, nil
}
