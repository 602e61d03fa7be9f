package testsupport

import (
	"context"
	"testing"
	"time"

	"autoposter/internal/config"
	"autoposter/internal/form"
	"autoposter/internal/generation"
	"autoposter/internal/history"
)

// MustOpenHistory opens a history.Store for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordRun stores a successful run for topic that started at started.
func RecordRun(t testing.TB, store *history.Store, id, topic string, started time.Time) generation.Run {
	t.Helper()

	req := form.Request{Topic: topic, PrimaryKeyword: topic}
	artifact := generation.Artifact{
		Title:        "About " + topic,
		Content:      "Body for " + topic,
		MetaKeywords: []string{topic},
		SEOScore:     80,
		WordCount:    3,
		ReadingTime:  1,
		GeneratedAt:  started.Add(time.Second),
	}
	run := generation.Run{
		ID:         id,
		RequestID:  id + "-req",
		Flow:       generation.FlowMultiStep,
		Request:    req,
		Artifact:   &artifact,
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	}
	if err := store.Record(context.Background(), run); err != nil {
		t.Fatalf("store.Record: %v", err)
	}
	return run
}
