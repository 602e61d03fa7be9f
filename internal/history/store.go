package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"autoposter/internal/config"
	"autoposter/internal/generation"
	"autoposter/internal/services"
	"autoposter/internal/textutil"
)

const (
	defaultListLimit = 20
	similarScanLimit = 200

	// DefaultSimilarity is the topic similarity at which a past run counts as
	// a near duplicate.
	DefaultSimilarity = 0.6
)

// ErrAmbiguousID reports that an id prefix matched more than one run.
var ErrAmbiguousID = errors.New("ambiguous run id")

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.HistoryPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores a resolved run. Recording the same run id twice replaces the
// earlier row.
func (s *Store) Record(ctx context.Context, run generation.Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return services.Wrap(services.ErrValidation, "history", "record", "run id is required", nil)
	}
	requestJSON, err := json.Marshal(run.Request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now().UTC()
	}
	finished := run.FinishedAt
	if finished.IsZero() {
		finished = started
	}

	var (
		errorKind, errorMessage      string
		title, content, description  string
		keywordsJSON                 string
		seoScore, words, readingTime int
		generatedAt                  time.Time
	)
	if run.Err != nil {
		errorKind = services.Kind(run.Err)
		errorMessage = run.Err.Error()
	}
	if a := run.Artifact; a != nil {
		title, content, description = a.Title, a.Content, a.MetaDescription
		seoScore, words, readingTime = a.SEOScore, a.WordCount, a.ReadingTime
		generatedAt = a.GeneratedAt
		encoded, err := json.Marshal(a.MetaKeywords)
		if err != nil {
			return fmt.Errorf("marshal keywords: %w", err)
		}
		keywordsJSON = string(encoded)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO runs (
            id, request_id, flow, topic, primary_keyword, request_json, outcome,
            error_kind, error_message, title, content, meta_description, meta_keywords_json,
            seo_score, word_count, reading_time, generated_at, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.RequestID,
		string(run.Flow),
		run.Request.Topic,
		nullableString(run.Request.PrimaryKeyword),
		string(requestJSON),
		run.Outcome(),
		nullableString(errorKind),
		nullableString(errorMessage),
		nullableString(title),
		nullableString(content),
		nullableString(description),
		nullableString(keywordsJSON),
		seoScore,
		words,
		readingTime,
		formatTime(generatedAt),
		formatTime(started),
		formatTime(finished),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// List returns stored runs, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query := `SELECT ` + runColumns + ` FROM runs`
	args := []any{}
	if outcome := strings.TrimSpace(opts.Outcome); outcome != "" {
		query += ` WHERE outcome = ?`
		args = append(args, outcome)
	}
	query += ` ORDER BY started_at DESC, id LIMIT ?`
	args = append(args, limit)
	return s.query(ctx, query, args...)
}

// Get returns the run with id, accepting a unique id prefix. It returns nil
// when nothing matches.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	entry, err := scanEntry(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == nil {
		return &entry, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run: %w", err)
	}

	matches, err := s.query(ctx,
		`SELECT `+runColumns+` FROM runs WHERE substr(id, 1, ?) = ? ORDER BY started_at DESC LIMIT 2`,
		len(id), id,
	)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %q matches several runs", ErrAmbiguousID, id)
	}
}

// Similar returns recent runs whose topic similarity to topic is at least
// threshold, best match first. A threshold <= 0 uses DefaultSimilarity.
func (s *Store) Similar(ctx context.Context, topic string, threshold float64) ([]Match, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, nil
	}
	if threshold <= 0 {
		threshold = DefaultSimilarity
	}
	recent, err := s.query(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, similarScanLimit)
	if err != nil {
		return nil, err
	}
	matches := make([]Match, 0)
	for _, entry := range recent {
		score := textutil.TopicSimilarity(topic, entry.Topic)
		if score >= threshold {
			matches = append(matches, Match{Entry: entry, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}

// Count returns the number of stored runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return entries, nil
}
