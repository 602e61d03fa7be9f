package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"autoposter/internal/generation"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "id, request_id, flow, topic, request_json, outcome, error_kind, error_message, title, content, meta_description, meta_keywords_json, seo_score, word_count, reading_time, generated_at, started_at, finished_at"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry        Entry
		flow         string
		requestJSON  string
		errorKind    sql.NullString
		errorMessage sql.NullString
		title        sql.NullString
		content      sql.NullString
		description  sql.NullString
		keywordsJSON sql.NullString
		seoScore     int
		wordCount    int
		readingTime  int
		generatedRaw sql.NullString
		startedRaw   string
		finishedRaw  string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.RequestID,
		&flow,
		&entry.Topic,
		&requestJSON,
		&entry.Outcome,
		&errorKind,
		&errorMessage,
		&title,
		&content,
		&description,
		&keywordsJSON,
		&seoScore,
		&wordCount,
		&readingTime,
		&generatedRaw,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return Entry{}, err
	}

	entry.Flow = generation.Flow(flow)
	entry.ErrorKind = errorKind.String
	entry.ErrorMessage = errorMessage.String
	if err := json.Unmarshal([]byte(requestJSON), &entry.Request); err != nil {
		return Entry{}, fmt.Errorf("decode request for run %s: %w", entry.ID, err)
	}
	entry.StartedAt = parseTime(startedRaw)
	entry.FinishedAt = parseTime(finishedRaw)

	if entry.Outcome != generation.OutcomeError {
		artifact := &generation.Artifact{
			Title:           title.String,
			Content:         content.String,
			MetaDescription: description.String,
			SEOScore:        seoScore,
			WordCount:       wordCount,
			ReadingTime:     readingTime,
			GeneratedAt:     parseTime(generatedRaw.String),
		}
		if keywordsJSON.Valid && keywordsJSON.String != "" {
			if err := json.Unmarshal([]byte(keywordsJSON.String), &artifact.MetaKeywords); err != nil {
				return Entry{}, fmt.Errorf("decode keywords for run %s: %w", entry.ID, err)
			}
		}
		entry.Artifact = artifact
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
