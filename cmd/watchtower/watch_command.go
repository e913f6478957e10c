package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/satishgoda/watchtower/internal/logging"
	"github.com/satishgoda/watchtower/internal/session"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var episode string

	cmd := &cobra.Command{
		Use:   "watch <project>",
		Short: "Reload a project whenever its local data tree changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root := strings.TrimSpace(cfg.DataSource.DataDir)
			if root == "" {
				return fmt.Errorf("watch needs data_source.data_dir pointing at a local static tree")
			}
			store, err := ctx.newStore()
			if err != nil {
				return err
			}
			logger := logging.NewComponentLogger(ctx.log(), "watch")

			runCtx, stop := signal.NotifyContext(commandContextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Close()
			if err := addTree(watcher, root); err != nil {
				return fmt.Errorf("watch %s: %w", root, err)
			}

			r := &reloader{
				store:     store,
				projectID: args[0],
				episodeID: episode,
				out:       cmd.OutOrStdout(),
				json:      ctx.jsonOutput(),
			}
			r.trigger(runCtx)
			logger.Info("watching data tree",
				logging.String(logging.FieldEventType, "watch_start"),
				logging.String("root", root),
				logging.Int("debounce_ms", cfg.Watch.DebounceMillis),
			)

			debounce := time.Duration(cfg.Watch.DebounceMillis) * time.Millisecond
			err = watchLoop(runCtx, watcher.Events, watcher.Errors, debounce,
				func(event fsnotify.Event) {
					if event.Has(fsnotify.Create) {
						if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
							if addErr := addTree(watcher, event.Name); addErr != nil {
								logger.Warn("failed to watch new directory", logging.String("path", event.Name), logging.Error(addErr))
							}
						}
					}
				},
				func() { r.trigger(runCtx) },
				func(err error) {
					logging.WarnWithContext(logger, "watcher error", "watch_error",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "check the data directory is still readable"),
					)
				},
			)
			r.wait()
			return err
		},
	}
	cmd.Flags().StringVarP(&episode, "episode", "e", "", "Scope to an episode id")
	return cmd
}

// watchLoop coalesces relevant events into one onChange call per quiet period
// of length debounce. It returns nil when ctx ends or the event channel closes.
func watchLoop(
	ctx context.Context,
	events <-chan fsnotify.Event,
	errs <-chan error,
	debounce time.Duration,
	onEvent func(fsnotify.Event),
	onChange func(),
	onError func(error),
) error {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if onEvent != nil {
				onEvent(event)
			}
			if !relevantEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			onChange()
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}

func relevantEvent(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// addTree watches root and every directory below it; fsnotify is not recursive.
func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}

// reloader runs InitWithProject in the background. A reload started while an
// older one is still running supersedes it.
type reloader struct {
	store     *session.Store
	projectID string
	episodeID string
	out       io.Writer
	json      bool

	mu sync.Mutex
	wg sync.WaitGroup
}

func (r *reloader) trigger(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		report, err := r.store.InitWithProject(ctx, r.projectID, r.episodeID)
		r.print(report, err)
	}()
}

func (r *reloader) wait() { r.wg.Wait() }

func (r *reloader) print(report *session.Report, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		fmt.Fprintf(r.out, "reload failed: %v\n", err)
		return
	}
	if report.Superseded() {
		return
	}
	if r.json {
		_ = writeJSONTo(r.out, report)
		return
	}
	fmt.Fprintln(r.out, reloadSummary(report, r.store.Current()))
}

func reloadSummary(report *session.Report, sess *session.Session) string {
	stamp := report.Finished.Format("15:04:05")
	if sess == nil || sess.ID() != report.SessionID {
		return fmt.Sprintf("[%s] reloaded %s", stamp, report.ProjectID)
	}
	line := fmt.Sprintf("[%s] reloaded %s: %d shots, %d assets, %d sequences",
		stamp, report.ProjectID, len(sess.Shots()), len(sess.Assets()), len(sess.Sequences()))
	if failed := report.Failed(); len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, res := range failed {
			names = append(names, res.Stage)
		}
		line += fmt.Sprintf(" (failed: %s)", strings.Join(names, ", "))
	}
	return line
}
