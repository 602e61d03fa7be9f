package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"autoposter/internal/apistatus"
	"autoposter/internal/auth"
	"autoposter/internal/config"
	"autoposter/internal/form"
	"autoposter/internal/generation"
	"autoposter/internal/history"
	"autoposter/internal/logging"
	"autoposter/internal/notifications"
	"autoposter/internal/present"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
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
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// session holds the collaborators one generation-capable command needs.
type session struct {
	cfg       *config.Config
	logger    *slog.Logger
	tokens    auth.TokenSource
	status    *apistatus.Service
	notifier  notifications.Service
	store     *history.Store
	invoker   *generation.Invoker
	presenter *present.Presenter
}

// openSession wires the generation client, history store, notifier, and
// presenter around logger. A history store that cannot be opened is logged
// and skipped so generation still works.
func (c *commandContext) openSession(logger *slog.Logger) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &session{
		cfg:      cfg,
		logger:   logger,
		tokens:   auth.FromConfig(cfg),
		status:   apistatus.NewService(),
		notifier: notifications.NewService(cfg),
	}

	store, err := history.Open(cfg)
	if err != nil {
		logger.Warn("history unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not be recorded"),
		)
	} else {
		s.store = store
	}

	client := generation.NewClient(cfg, s.tokens,
		generation.WithReporter(s.status),
		generation.WithLogger(logger),
	)
	invokerOpts := []generation.InvokerOption{
		generation.WithNotifier(s.notifier),
		generation.WithInvokerLogger(logger),
	}
	if s.store != nil {
		invokerOpts = append(invokerOpts, generation.WithRecorder(s.store))
	}
	s.invoker = generation.NewInvoker(client, invokerOpts...)
	s.presenter = present.New(cfg,
		present.WithClipboard(present.SystemClipboard{}),
		present.WithNotifier(s.notifier),
		present.WithLogger(logger),
	)
	return s, nil
}

func (s *session) Close() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn("failed to close history", logging.Error(err))
	}
}

func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

// commandLogger logs to the console unless stdout carries machine-readable
// output, in which case only the log file receives lines.
func (c *commandContext) commandLogger(jsonOutput bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if jsonOutput {
		return logging.NewFileLogger(cfg, nil)
	}
	return logging.NewFromConfig(cfg)
}

func formDefaults(cfg *config.Config) form.Defaults {
	if cfg == nil {
		return form.DefaultValues()
	}
	return form.Defaults{
		Country:        cfg.Wizard.DefaultCountry,
		Language:       cfg.Wizard.DefaultLanguage,
		ArticleType:    cfg.Wizard.DefaultArticleType,
		ResearchMethod: cfg.Wizard.DefaultResearchMethod,
	}
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
