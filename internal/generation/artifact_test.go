package generation_test

import (
	"strings"
	"testing"
	"time"

	"autoposter/internal/generation"
)

func TestDecodeArtifactServerLayout(t *testing.T) {
	body := `{"success":true,"message":"done","content":{
		"title":"Guide","content":"one two three",
		"meta_tags":{"meta_description":"nested desc","meta_keywords":"a, b ,c"},
		"content_analysis":{"seo_score":85.4},
		"estimated_reading_time":4,
		"generated_at":"2026-02-03T04:05:06.123456"}}`
	artifact, message, err := generation.DecodeArtifact([]byte(body))
	if err != nil {
		t.Fatalf("DecodeArtifact returned error: %v", err)
	}
	if message != "done" {
		t.Fatalf("unexpected message %q", message)
	}
	if artifact.MetaDescription != "nested desc" || strings.Join(artifact.MetaKeywords, "|") != "a|b|c" {
		t.Fatalf("unexpected meta %+v", artifact)
	}
	if artifact.SEOScore != 85 || artifact.ReadingTime != 4 || artifact.WordCount != 3 {
		t.Fatalf("unexpected metrics %+v", artifact)
	}
	want := time.Date(2026, 2, 3, 4, 5, 6, 123456000, time.UTC)
	if !artifact.GeneratedAt.Equal(want) {
		t.Fatalf("unexpected time %v", artifact.GeneratedAt)
	}
}

func TestDecodeArtifactRejectsEmptyArtifact(t *testing.T) {
	for _, body := range []string{`{"title":"","content":"  "}`, `{"success":true,"content":null}`, `not json`} {
		if _, _, err := generation.DecodeArtifact([]byte(body)); err == nil {
			t.Fatalf("expected error for %s", body)
		}
	}
}

func TestParseFlow(t *testing.T) {
	cases := map[string]generation.Flow{
		"":           generation.FlowMultiStep,
		"multi-step": generation.FlowMultiStep,
		"LEGACY":     generation.FlowLegacy,
		"advanced":   generation.FlowLegacy,
	}
	for input, want := range cases {
		got, err := generation.ParseFlow(input)
		if err != nil || got != want {
			t.Fatalf("ParseFlow(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := generation.ParseFlow("batch"); err == nil {
		t.Fatal("expected error for unknown flow")
	}
}

func TestFallbackIsDeterministic(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	req := sampleRequest()
	req.SecondaryKeywords = []string{"automation", "devops"}
	first := generation.Fallback(req, now)
	second := generation.Fallback(req, now)
	if first.Title != second.Title || first.Content != second.Content || !first.GeneratedAt.Equal(now) {
		t.Fatal("fallback output should depend only on request and clock")
	}
	if !strings.Contains(first.Title, "ansible cluster management") || !strings.Contains(first.Content, "ansible cluster management") {
		t.Fatalf("fallback must mention the topic: %q", first.Title)
	}
	if !strings.Contains(first.Content, "- devops") || !strings.Contains(first.Content, "What is Ansible?") {
		t.Fatalf("unexpected fallback content:\n%s", first.Content)
	}
	if first.WordCount != generation.FallbackWordCount || first.SEOScore != generation.FallbackSEOScore || first.ReadingTime != generation.FallbackReadingTime {
		t.Fatalf("unexpected constants %+v", first)
	}
	if strings.Join(first.MetaKeywords, ",") != "ansible,ansible cluster management,automation,devops,guide" {
		t.Fatalf("unexpected meta keywords %v", first.MetaKeywords)
	}
}
