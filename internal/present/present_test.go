package present_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"autoposter/internal/config"
	"autoposter/internal/generation"
	"autoposter/internal/notifications"
	"autoposter/internal/present"
)

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteAll(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func sampleArtifact() *generation.Artifact {
	return &generation.Artifact{
		Title:           "Ansible: Cluster Management",
		Content:         "# Ansible: Cluster Management\n\nAutomate <everything>.\n",
		MetaDescription: "Manage clusters \"safely\"",
		MetaKeywords:    []string{"ansible", "devops"},
		SEOScore:        90,
		WordCount:       4,
		ReadingTime:     1,
		GeneratedAt:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCopyWritesContent(t *testing.T) {
	clip := &fakeClipboard{}
	p := present.New(nil, present.WithClipboard(clip))
	fb := p.Copy(sampleArtifact())
	if fb.Level != present.LevelSuccess {
		t.Fatalf("expected success, got %+v", fb)
	}
	if clip.text != sampleArtifact().Content {
		t.Fatalf("clipboard = %q", clip.text)
	}
}

func TestCopyFailureIsReported(t *testing.T) {
	p := present.New(nil, present.WithClipboard(&fakeClipboard{err: errors.New("no xclip")}))
	fb := p.Copy(sampleArtifact())
	if fb.Level != present.LevelError || !strings.Contains(fb.Message, "Clipboard unavailable") {
		t.Fatalf("unexpected feedback %+v", fb)
	}
}

func TestActionsWithoutArtifactWarn(t *testing.T) {
	p := present.New(nil, present.WithClipboard(&fakeClipboard{}), present.WithDownloadDir(t.TempDir()))
	for name, fb := range map[string]present.Feedback{
		"copy":     p.Copy(nil),
		"download": p.Download(nil, present.FormatMarkdown),
		"publish":  p.Publish(context.Background(), nil),
	} {
		if fb.Level != present.LevelWarning || !fb.Failed() {
			t.Fatalf("%s: expected warning, got %+v", name, fb)
		}
	}
}

func TestDownloadNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	p := present.New(nil, present.WithDownloadDir(dir))
	first := p.Download(sampleArtifact(), present.FormatText)
	second := p.Download(sampleArtifact(), present.FormatText)
	if first.Failed() || second.Failed() {
		t.Fatalf("download failed: %+v %+v", first, second)
	}
	if filepath.Base(first.Path) != "Ansible- Cluster Management.txt" {
		t.Fatalf("unexpected first name %q", filepath.Base(first.Path))
	}
	if filepath.Base(second.Path) != "Ansible- Cluster Management-2.txt" {
		t.Fatalf("unexpected second name %q", filepath.Base(second.Path))
	}
}

func TestLongHangulTitleStillSaves(t *testing.T) {
	artifact := sampleArtifact()
	artifact.Title = strings.Repeat("워드프레스 자동 포스팅 가이드 ", 10)

	dir := t.TempDir()
	p := present.New(nil, present.WithDownloadDir(dir))
	for i := 0; i < 2; i++ {
		fb := p.Download(artifact, present.FormatHTML)
		if fb.Failed() {
			t.Fatalf("download %d failed: %+v", i+1, fb)
		}
		if n := len(filepath.Base(fb.Path)); n > 255 {
			t.Fatalf("download name is %d bytes", n)
		}
	}

	cfg := config.Default()
	cfg.Publish.SiteName = "Tech Blog"
	cfg.Publish.OutboxDir = t.TempDir()
	fb := present.New(&cfg).Publish(context.Background(), artifact)
	if fb.Level != present.LevelSuccess {
		t.Fatalf("publish failed: %+v", fb)
	}
	if n := len(filepath.Base(fb.Path)); n > 255 {
		t.Fatalf("outbox name is %d bytes", n)
	}
}

func TestFileNameFallsBackForBlankTitle(t *testing.T) {
	name := present.FileName(generation.Artifact{Title: "  "}, present.FormatHTML)
	if name != "article.html" {
		t.Fatalf("FileName = %q", name)
	}
}

func TestRenderMarkdownFrontMatter(t *testing.T) {
	data, err := present.Render(*sampleArtifact(), present.FormatMarkdown)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "---\n") {
		t.Fatalf("missing front matter: %q", text)
	}
	for _, want := range []string{"seo_score: 90", "meta_keywords: [ansible, devops]", "generated_at: ", "2025-03-01T12:00:00Z", "\n---\n\n# Ansible"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in\n%s", want, text)
		}
	}
}

func TestRenderHTMLEscapesMetadata(t *testing.T) {
	data, err := present.Render(*sampleArtifact(), present.FormatHTML)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		"<title>Ansible: Cluster Management</title>",
		`content="Manage clusters &#34;safely&#34;"`,
		"<h1>Ansible: Cluster Management</h1>",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in\n%s", want, text)
		}
	}
	if strings.Contains(text, "<everything>") {
		t.Fatalf("raw html leaked into output:\n%s", text)
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]present.Format{"": present.FormatMarkdown, ".HTML": present.FormatHTML, "text": present.FormatText}
	for in, want := range cases {
		got, err := present.ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := present.ParseFormat("pdf"); err == nil {
		t.Fatal("expected error for pdf")
	}
}

func TestPublishUnconfiguredGivesExplicitFeedback(t *testing.T) {
	notifier := &recordingNotifier{}
	cfg := config.Default()
	p := present.New(&cfg, present.WithNotifier(notifier))
	fb := p.Publish(context.Background(), sampleArtifact())
	if fb.Level != present.LevelWarning || !strings.Contains(fb.Message, "site_name") {
		t.Fatalf("unexpected feedback %+v", fb)
	}
	if !errors.Is(fb.Err, present.ErrPublishUnavailable) {
		t.Fatalf("expected ErrPublishUnavailable, got %v", fb.Err)
	}
	if len(notifier.events) != 1 || notifier.events[0] != notifications.EventPublishUnavailable {
		t.Fatalf("unexpected events %v", notifier.events)
	}
}

func TestPublishWritesOutboxRequest(t *testing.T) {
	cfg := config.Default()
	cfg.Publish.SiteName = "Tech Blog"
	cfg.Publish.SiteID = "site-1"
	cfg.Publish.OutboxDir = t.TempDir()
	notifier := &recordingNotifier{}

	p := present.New(&cfg, present.WithNotifier(notifier))
	fb := p.Publish(context.Background(), sampleArtifact())
	if fb.Level != present.LevelSuccess {
		t.Fatalf("unexpected feedback %+v", fb)
	}
	data, err := os.ReadFile(fb.Path)
	if err != nil {
		t.Fatalf("read outbox: %v", err)
	}
	var post present.PostRequest
	if err := json.Unmarshal(data, &post); err != nil {
		t.Fatalf("decode outbox: %v", err)
	}
	if post.SiteID != "site-1" || post.Status != "draft" || post.Title != sampleArtifact().Title {
		t.Fatalf("unexpected post %+v", post)
	}
	if len(post.Tags) != 2 || post.Excerpt != sampleArtifact().MetaDescription {
		t.Fatalf("unexpected tags/excerpt %+v", post)
	}
	if len(notifier.events) != 1 || notifier.events[0] != notifications.EventPublishRequested {
		t.Fatalf("unexpected events %v", notifier.events)
	}
}
