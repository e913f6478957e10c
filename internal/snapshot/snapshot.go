package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/satishgoda/watchtower/internal/dataurls"
	"github.com/satishgoda/watchtower/internal/fetch"
	"github.com/satishgoda/watchtower/internal/fileutil"
	"github.com/satishgoda/watchtower/internal/graph"
	"github.com/satishgoda/watchtower/internal/logging"
	"github.com/satishgoda/watchtower/internal/services"
	"github.com/satishgoda/watchtower/internal/session"
)

// LockFile is the flock target in the output directory. It is left in place.
const LockFile = ".watchtower-export.lock"

// File describes one written document.
type File struct {
	Path   string `json:"path"`
	Bytes  int64  `json:"bytes"`
	SHA256 string `json:"sha256"`
}

// Result lists what an export wrote, relative to Dir, sorted by path.
type Result struct {
	Dir       string        `json:"dir"`
	ProjectID string        `json:"project_id"`
	Files     []File        `json:"files"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Writer exports sessions as static data trees.
type Writer struct {
	dir      string
	resolver dataurls.Resolver
	workers  int
	logger   *slog.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithResolver sets the URL policy the session was built with, so resolved
// thumbnails can be turned back into stored paths.
func WithResolver(resolver dataurls.Resolver) Option {
	return func(w *Writer) { w.resolver = resolver }
}

// WithWorkers caps concurrent file writes.
func WithWorkers(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.workers = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWriter returns a writer targeting dir.
func NewWriter(dir string, opts ...Option) (*Writer, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "", "export", "output directory required", nil)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "export", "resolve output directory", err)
	}
	w := &Writer{
		dir:      abs,
		resolver: dataurls.New("static", "/"),
		workers:  runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.NewComponentLogger(w.logger, "snapshot")
	return w, nil
}

// Dir returns the absolute output directory.
func (w *Writer) Dir() string { return w.dir }

// Write exports the session's graph in the static layout. projects fills the
// shared context document; when nil it lists only the exported project. The
// export covers the session's scope: an episode-scoped session writes only
// that episode's sequences and shots.
func (w *Writer) Write(ctx context.Context, sess *session.Session, projects []graph.ProjectListItem) (*Result, error) {
	if sess == nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "export", "no session loaded", nil)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "export", "create output directory", err)
	}

	lock := flock.New(filepath.Join(w.dir, LockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "export", "acquire export lock", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "", "export", "another export is writing to "+w.dir, nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			w.logger.Warn("failed to release export lock", logging.Error(err))
		}
	}()

	start := time.Now()
	docs, err := w.documents(sess, projects)
	if err != nil {
		return nil, err
	}

	var (
		mu    sync.Mutex
		files = make([]File, 0, len(docs))
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for rel, doc := range docs {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			file, err := w.writeDoc(rel, doc)
			if err != nil {
				return err
			}
			mu.Lock()
			files = append(files, file)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	result := &Result{Dir: w.dir, ProjectID: sess.ProjectID(), Files: files, Elapsed: time.Since(start)}
	w.logger.Info("snapshot written",
		logging.String(logging.FieldEventType, "snapshot_written"),
		logging.String(logging.FieldProjectID, sess.ProjectID()),
		logging.String("dir", w.dir),
		logging.Int("files", len(files)),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func (w *Writer) documents(sess *session.Session, projects []graph.ProjectListItem) (map[string]any, error) {
	m := media{resolver: w.resolver}
	project := buildProject(sess.Project(), m)
	docs := map[string]any{
		string(fetch.ResourceProject):   project,
		string(fetch.ResourceSequences): buildSequences(sess.Sequences()),
		string(fetch.ResourceShots):     buildShots(sess.Shots(), m),
		string(fetch.ResourceAssets):    buildAssets(sess.Assets(), m),
		string(fetch.ResourceCasting):   buildCasting(sess.Shots()),
		string(fetch.ResourceEdits):     buildEdits(sess.Edits(), m),
		string(fetch.ResourceContext):   buildContext(project, projects, m),
	}
	out := make(map[string]any, len(docs))
	for name, doc := range docs {
		rel, err := dataurls.StaticFile(dataurls.Resource(name), sess.ProjectID())
		if err != nil {
			return nil, err
		}
		out[filepath.FromSlash(rel)] = doc
	}
	return out, nil
}

func (w *Writer) writeDoc(rel string, doc any) (File, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return File{}, fmt.Errorf("encode %s: %w", rel, err)
	}
	data = append(data, '\n')
	sum, err := fileutil.WriteVerified(filepath.Join(w.dir, rel), data, 0o644)
	if err != nil {
		return File{}, fmt.Errorf("write %s: %w", rel, err)
	}
	w.logger.Debug("snapshot file written", logging.String("path", rel), logging.Int("bytes", len(data)))
	return File{Path: filepath.ToSlash(rel), Bytes: int64(len(data)), SHA256: sum}, nil
}
