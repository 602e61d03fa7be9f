package present

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"autoposter/internal/generation"
)

// Format is a download file format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatHTML     Format = "html"
)

// ParseFormat maps a user-supplied name to a Format. Empty means markdown.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(value), ".")) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unsupported format %q (want md, txt, or html)", value)
}

// Extension returns the filename extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

type frontMatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"meta_description,omitempty"`
	Keywords    []string `yaml:"meta_keywords,omitempty,flow"`
	SEOScore    int      `yaml:"seo_score"`
	WordCount   int      `yaml:"word_count"`
	ReadingTime int      `yaml:"reading_time_minutes"`
	GeneratedAt string   `yaml:"generated_at,omitempty"`
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Render produces the file body for the artifact in format f.
func Render(a generation.Artifact, f Format) ([]byte, error) {
	switch f {
	case FormatText:
		return []byte(ensureNewline(a.Content)), nil
	case FormatHTML:
		return renderHTML(a)
	case FormatMarkdown, "":
		return renderMarkdown(a)
	}
	return nil, fmt.Errorf("unsupported format %q", f)
}

func renderMarkdown(a generation.Artifact) ([]byte, error) {
	meta := frontMatter{
		Title:       a.Title,
		Description: a.MetaDescription,
		Keywords:    a.MetaKeywords,
		SEOScore:    a.SEOScore,
		WordCount:   a.WordCount,
		ReadingTime: a.ReadingTime,
	}
	if !a.GeneratedAt.IsZero() {
		meta.GeneratedAt = a.GeneratedAt.UTC().Format(time.RFC3339)
	}
	header, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(ensureNewline(a.Content))
	return buf.Bytes(), nil
}

func renderHTML(a generation.Artifact) ([]byte, error) {
	body := a.Content
	if !strings.HasPrefix(strings.TrimSpace(body), "# ") && strings.TrimSpace(a.Title) != "" {
		body = "# " + a.Title + "\n\n" + body
	}
	var article bytes.Buffer
	if err := markdown.Convert([]byte(body), &article); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(a.Title))
	if a.MetaDescription != "" {
		fmt.Fprintf(&buf, "<meta name=\"description\" content=\"%s\">\n", html.EscapeString(a.MetaDescription))
	}
	if len(a.MetaKeywords) > 0 {
		fmt.Fprintf(&buf, "<meta name=\"keywords\" content=\"%s\">\n", html.EscapeString(strings.Join(a.MetaKeywords, ", ")))
	}
	buf.WriteString("</head>\n<body>\n<article>\n")
	buf.Write(article.Bytes())
	buf.WriteString("</article>\n</body>\n</html>\n")
	return buf.Bytes(), nil
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
