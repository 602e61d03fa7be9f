package present

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"autoposter/internal/config"
	"autoposter/internal/generation"
	"autoposter/internal/services"
	"autoposter/internal/textutil"
)

// ErrPublishUnavailable reports that no publishing site is configured.
var ErrPublishUnavailable = services.Wrap(services.ErrConfiguration, "present", "publish",
	"no publishing site is configured; set [publish] site_name", nil)

// Receipt describes a completed hand-off.
type Receipt struct {
	Site     string
	Location string
}

// Publisher hands an artifact to the external site collaborator.
type Publisher interface {
	Publish(ctx context.Context, artifact generation.Artifact) (Receipt, error)
}

// NewPublisher returns the outbox publisher when a site is configured and a
// publisher that always reports ErrPublishUnavailable otherwise.
func NewPublisher(cfg *config.Config) Publisher {
	if cfg == nil || !cfg.PublishConfigured() {
		return unavailablePublisher{}
	}
	return &OutboxPublisher{
		Dir:      cfg.Publish.OutboxDir,
		SiteID:   strings.TrimSpace(cfg.Publish.SiteID),
		SiteName: strings.TrimSpace(cfg.Publish.SiteName),
		Status:   cfg.Publish.PostStatus,
		Now:      time.Now,
	}
}

type unavailablePublisher struct{}

func (unavailablePublisher) Publish(context.Context, generation.Artifact) (Receipt, error) {
	return Receipt{}, ErrPublishUnavailable
}

// PostRequest is the WordPress-style post body written to the outbox.
type PostRequest struct {
	SiteID          string   `json:"site_id,omitempty"`
	SiteName        string   `json:"site_name"`
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Status          string   `json:"status"`
	Categories      []string `json:"categories"`
	Tags            []string `json:"tags"`
	Excerpt         string   `json:"excerpt,omitempty"`
	MetaDescription string   `json:"meta_description,omitempty"`
	SEOScore        int      `json:"seo_score"`
	RequestedAt     string   `json:"requested_at"`
}

// OutboxPublisher writes one PostRequest file per publish into Dir, where
// the site integration picks it up.
type OutboxPublisher struct {
	Dir      string
	SiteID   string
	SiteName string
	Status   string
	Now      func() time.Time
}

// Publish writes the post request. Existing files are never replaced.
func (p *OutboxPublisher) Publish(ctx context.Context, artifact generation.Artifact) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	if strings.TrimSpace(p.Dir) == "" {
		return Receipt{}, services.Wrap(services.ErrConfiguration, "present", "publish", "publish outbox_dir is empty", nil)
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	status := strings.TrimSpace(p.Status)
	if status == "" {
		status = "draft"
	}
	stamp := now().UTC()
	post := PostRequest{
		SiteID:          p.SiteID,
		SiteName:        p.SiteName,
		Title:           artifact.Title,
		Content:         artifact.Content,
		Status:          status,
		Categories:      []string{},
		Tags:            append([]string{}, artifact.MetaKeywords...),
		Excerpt:         artifact.MetaDescription,
		MetaDescription: artifact.MetaDescription,
		SEOScore:        artifact.SEOScore,
		RequestedAt:     stamp.Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(post, "", "  ")
	if err != nil {
		return Receipt{}, fmt.Errorf("encode post request: %w", err)
	}
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return Receipt{}, fmt.Errorf("create outbox: %w", err)
	}
	base := stamp.Format("20060102T150405Z") + "-" + textutil.Slug(artifact.Title)
	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		name := base + ".json"
		if attempt > 1 {
			name = fmt.Sprintf("%s-%d.json", base, attempt)
		}
		path := filepath.Join(p.Dir, name)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return Receipt{}, fmt.Errorf("create %s: %w", path, err)
		}
		if _, err := file.Write(append(data, '\n')); err != nil {
			_ = file.Close()
			return Receipt{}, fmt.Errorf("write %s: %w", path, err)
		}
		if err := file.Close(); err != nil {
			return Receipt{}, fmt.Errorf("close %s: %w", path, err)
		}
		return Receipt{Site: p.SiteName, Location: path}, nil
	}
	return Receipt{}, fmt.Errorf("no free outbox filename for %s", base)
}
