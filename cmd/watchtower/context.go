package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/satishgoda/watchtower/internal/colors"
	"github.com/satishgoda/watchtower/internal/config"
	"github.com/satishgoda/watchtower/internal/dataurls"
	"github.com/satishgoda/watchtower/internal/fetch"
	"github.com/satishgoda/watchtower/internal/fetchcache"
	"github.com/satishgoda/watchtower/internal/logging"
	"github.com/satishgoda/watchtower/internal/session"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	cache *fetchcache.Store
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.config)
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

// newStore builds the fetch chain for the loaded config: a directory or HTTP
// fetcher, optionally behind the response cache.
func (c *commandContext) newStore() (*session.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.log()

	fetcher, err := fetch.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Cache.Enabled {
		if c.cache == nil {
			store, err := fetchcache.Open(cfg)
			if err != nil {
				return nil, fmt.Errorf("open response cache: %w", err)
			}
			c.cache = store
		}
		maxAge := time.Duration(cfg.Cache.MaxAgeHours) * time.Hour
		fetcher = fetchcache.Wrap(fetcher, c.cache, maxAge, logger)
	}

	palette, err := colors.ParsePalette(cfg.Palette.Colors)
	if err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}
	return session.NewStore(fetcher,
		session.WithPalette(palette),
		session.WithResolver(dataurls.FromConfig(cfg)),
		session.WithLogger(logger),
	), nil
}

// loadSession runs the pipeline and reports failed stages on stderr. Partial
// results are still returned.
func (c *commandContext) loadSession(cmd *cobra.Command, projectID, episodeID string) (*session.Session, *session.Report, error) {
	store, err := c.newStore()
	if err != nil {
		return nil, nil, err
	}
	report, err := store.InitWithProject(commandContextOrBackground(cmd), projectID, episodeID)
	if err != nil {
		return nil, nil, err
	}
	if !c.jsonOutput() {
		writeStageFailures(cmd.ErrOrStderr(), report)
	}
	return store.Current(), report, nil
}

func (c *commandContext) close() error {
	if c.cache == nil {
		return nil
	}
	err := c.cache.Close()
	c.cache = nil
	return err
}

func writeStageFailures(w io.Writer, report *session.Report) {
	for _, res := range report.Failed() {
		fmt.Fprintf(w, "warning: %s stage failed (%s): %s\n", res.Stage, res.ErrorKind, res.Error)
	}
}

func commandContextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
