package generation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Flow selects the endpoint and the failure policy of a run.
type Flow string

const (
	// FlowMultiStep posts to /api/content/generate and surfaces failures.
	FlowMultiStep Flow = "multi_step"
	// FlowLegacy posts to /api/content/generate-advanced and falls back to a
	// placeholder artifact on failure.
	FlowLegacy Flow = "legacy"
)

// Endpoint returns the request path for the flow.
func (f Flow) Endpoint() string {
	if f == FlowLegacy {
		return "/api/content/generate-advanced"
	}
	return "/api/content/generate"
}

// Valid reports whether f names a known flow.
func (f Flow) Valid() bool {
	return f == FlowMultiStep || f == FlowLegacy
}

// ParseFlow maps CLI spellings to a Flow.
func ParseFlow(value string) (Flow, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "multi_step", "multi-step", "multistep":
		return FlowMultiStep, nil
	case "legacy", "advanced", "single_step", "single-step":
		return FlowLegacy, nil
	}
	return "", fmt.Errorf("unknown flow %q", value)
}

// Artifact is a generated article. ReadingTime is in minutes.
type Artifact struct {
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	MetaDescription string    `json:"meta_description"`
	MetaKeywords    []string  `json:"meta_keywords"`
	SEOScore        int       `json:"seo_score"`
	WordCount       int       `json:"word_count"`
	ReadingTime     int       `json:"reading_time"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// Empty reports whether the artifact carries neither title nor content.
func (a Artifact) Empty() bool {
	return strings.TrimSpace(a.Title) == "" && strings.TrimSpace(a.Content) == ""
}

// wireArtifact accepts both the flat artifact and the server's nested
// meta_tags/content_analysis layout.
type wireArtifact struct {
	Title                string          `json:"title"`
	Content              string          `json:"content"`
	MetaDescription      string          `json:"meta_description"`
	MetaKeywords         json.RawMessage `json:"meta_keywords"`
	SEOScore             json.Number     `json:"seo_score"`
	WordCount            json.Number     `json:"word_count"`
	ReadingTime          json.Number     `json:"reading_time"`
	EstimatedReadingTime json.Number     `json:"estimated_reading_time"`
	GeneratedAt          string          `json:"generated_at"`
	MetaTags             *struct {
		MetaDescription string          `json:"meta_description"`
		MetaKeywords    json.RawMessage `json:"meta_keywords"`
	} `json:"meta_tags"`
	ContentAnalysis *struct {
		SEOScore json.Number `json:"seo_score"`
	} `json:"content_analysis"`
}

type envelope struct {
	Success *bool           `json:"success"`
	Content json.RawMessage `json:"content"`
	Message string          `json:"message"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// DecodeArtifact parses a response body. The second return value is the
// server message when the body is an envelope.
func DecodeArtifact(body []byte) (Artifact, string, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Artifact{}, "", fmt.Errorf("decode response: %w", err)
	}
	raw := body
	if env.Success != nil {
		if !*env.Success {
			return Artifact{}, env.Message, fmt.Errorf("server reported failure: %s", orDefault(env.Message, "no message"))
		}
		if len(env.Content) == 0 || string(env.Content) == "null" {
			return Artifact{}, env.Message, fmt.Errorf("server response has no content")
		}
		raw = env.Content
	}

	var wire wireArtifact
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Artifact{}, env.Message, fmt.Errorf("decode artifact: %w", err)
	}
	artifact := wire.artifact()
	if artifact.Empty() {
		return Artifact{}, env.Message, fmt.Errorf("artifact has neither title nor content")
	}
	return artifact, env.Message, nil
}

func (w wireArtifact) artifact() Artifact {
	a := Artifact{
		Title:           strings.TrimSpace(w.Title),
		Content:         w.Content,
		MetaDescription: strings.TrimSpace(w.MetaDescription),
		MetaKeywords:    decodeKeywords(w.MetaKeywords),
		SEOScore:        toInt(w.SEOScore),
		WordCount:       toInt(w.WordCount),
		ReadingTime:     toInt(w.ReadingTime),
		GeneratedAt:     parseTime(w.GeneratedAt),
	}
	if w.MetaTags != nil {
		if a.MetaDescription == "" {
			a.MetaDescription = strings.TrimSpace(w.MetaTags.MetaDescription)
		}
		if len(a.MetaKeywords) == 0 {
			a.MetaKeywords = decodeKeywords(w.MetaTags.MetaKeywords)
		}
	}
	if a.SEOScore == 0 && w.ContentAnalysis != nil {
		a.SEOScore = toInt(w.ContentAnalysis.SEOScore)
	}
	if a.ReadingTime == 0 {
		a.ReadingTime = toInt(w.EstimatedReadingTime)
	}
	if a.WordCount == 0 && a.Content != "" {
		a.WordCount = len(strings.Fields(a.Content))
	}
	if a.ReadingTime == 0 && a.WordCount > 0 {
		a.ReadingTime = ReadingMinutes(a.WordCount)
	}
	if a.MetaKeywords == nil {
		a.MetaKeywords = []string{}
	}
	return a
}

// ReadingMinutes estimates reading time at 200 words per minute, minimum one.
func ReadingMinutes(words int) int {
	minutes := words / 200
	if minutes < 1 {
		return 1
	}
	return minutes
}

// decodeKeywords accepts a JSON array of strings or a comma-separated string.
func decodeKeywords(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return cleanList(list)
	}
	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		return cleanList(strings.Split(joined, ","))
	}
	return nil
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func toInt(n json.Number) int {
	if n == "" {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := strconv.ParseFloat(string(n), 64); err == nil {
		return int(f + 0.5)
	}
	return 0
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
