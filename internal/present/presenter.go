package present

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"autoposter/internal/config"
	"autoposter/internal/generation"
	"autoposter/internal/logging"
	"autoposter/internal/notifications"
)

// Presenter runs the result actions over the current artifact.
type Presenter struct {
	clipboard   Clipboard
	publisher   Publisher
	notifier    notifications.Service
	logger      *slog.Logger
	downloadDir string
}

// Option customizes a Presenter.
type Option func(*Presenter)

// WithClipboard replaces the system clipboard.
func WithClipboard(c Clipboard) Option {
	return func(p *Presenter) {
		if c != nil {
			p.clipboard = c
		}
	}
}

// WithPublisher replaces the configured publisher.
func WithPublisher(pub Publisher) Option {
	return func(p *Presenter) {
		if pub != nil {
			p.publisher = pub
		}
	}
}

// WithNotifier publishes publish events.
func WithNotifier(n notifications.Service) Option {
	return func(p *Presenter) {
		if n != nil {
			p.notifier = n
		}
	}
}

// WithLogger sets the presenter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Presenter) {
		p.logger = logging.NewComponentLogger(logger, "present")
	}
}

// WithDownloadDir overrides where downloads are written.
func WithDownloadDir(dir string) Option {
	return func(p *Presenter) {
		p.downloadDir = dir
	}
}

// New builds a Presenter from configuration.
func New(cfg *config.Config, opts ...Option) *Presenter {
	p := &Presenter{
		clipboard: SystemClipboard{},
		publisher: NewPublisher(cfg),
		notifier:  notifications.NewService(nil),
		logger:    logging.NewNop(),
	}
	if cfg != nil {
		p.downloadDir = cfg.Paths.DownloadDir
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

const noArtifact = "Generate an article first"

// Copy places the raw article content on the clipboard.
func (p *Presenter) Copy(artifact *generation.Artifact) Feedback {
	if artifact == nil || artifact.Empty() {
		return warning(noArtifact, nil)
	}
	if err := p.clipboard.WriteAll(artifact.Content); err != nil {
		p.logger.Warn("clipboard copy failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "use download instead"),
		)
		return failure("Clipboard unavailable: "+err.Error(), err)
	}
	p.logger.Info("article copied", logging.Int("bytes", len(artifact.Content)))
	return success("Copied article content to clipboard", "")
}

// Download writes the article into the download directory.
func (p *Presenter) Download(artifact *generation.Artifact, format Format) Feedback {
	if artifact == nil || artifact.Empty() {
		return warning(noArtifact, nil)
	}
	if p.downloadDir == "" {
		err := errors.New("download_dir is not configured")
		return failure("Download failed: "+err.Error(), err)
	}
	path, err := WriteFile(p.downloadDir, *artifact, format)
	if err != nil {
		p.logger.Warn("download failed", logging.Error(err), logging.String("dir", p.downloadDir))
		return failure("Download failed: "+err.Error(), err)
	}
	p.logger.Info("article downloaded", logging.String("path", path), logging.String("format", string(format)))
	return success("Saved "+path, path)
}

// Publish hands the article to the publishing collaborator. An unconfigured
// site yields a warning naming the missing setting.
func (p *Presenter) Publish(ctx context.Context, artifact *generation.Artifact) Feedback {
	if artifact == nil || artifact.Empty() {
		return warning(noArtifact, nil)
	}
	receipt, err := p.publisher.Publish(ctx, *artifact)
	switch {
	case errors.Is(err, ErrPublishUnavailable):
		p.logger.Warn("publish unavailable",
			logging.String(logging.FieldEventType, "publish_unavailable"),
			logging.String(logging.FieldErrorHint, "set [publish] site_name in config.toml"),
		)
		p.notify(ctx, notifications.EventPublishUnavailable, notifications.Payload{
			"title":  artifact.Title,
			"reason": "no site configured",
		})
		return warning("Publishing is not configured: set [publish] site_name in config.toml", err)
	case err != nil:
		p.logger.Error("publish failed", logging.Error(err), logging.String("title", artifact.Title))
		return failure("Publish failed: "+err.Error(), err)
	}
	p.logger.Info("publish requested",
		logging.String("site", receipt.Site),
		logging.String("location", receipt.Location),
	)
	p.notify(ctx, notifications.EventPublishRequested, notifications.Payload{
		"title": artifact.Title,
		"site":  receipt.Site,
	})
	return success(fmt.Sprintf("Queued for %s: %s", receipt.Site, receipt.Location), receipt.Location)
}

func (p *Presenter) notify(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := p.notifier.Publish(context.WithoutCancel(ctx), event, payload); err != nil {
		p.logger.Debug("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}
