package form

import "strings"

// Request is the JSON body sent to both generation endpoints.
type Request struct {
	Topic             string   `json:"topic"`
	TargetCountry     string   `json:"target_country"`
	ArticleLanguage   string   `json:"article_language"`
	Keywords          []string `json:"keywords"`
	ArticleType       string   `json:"article_type"`
	ResearchMethod    string   `json:"research_method"`
	PrimaryKeyword    string   `json:"primary_keyword"`
	SecondaryKeywords []string `json:"secondary_keywords"`
	CompetitorURLs    []string `json:"competitor_urls"`
	Tone              string   `json:"tone,omitempty"`
	WordCount         int      `json:"word_count,omitempty"`
	HeadingCount      int      `json:"heading_count,omitempty"`
	Perspective       string   `json:"perspective,omitempty"`
}

// Request serializes the form. The free-text keyword field is split on
// commas; secondary keywords are sent exactly as stored, so the list keeps
// its cap and uniqueness on the wire. List fields are never null.
func (s *State) Request() Request {
	urls := make([]string, 0, s.CompetitorCount())
	for _, ref := range s.Competitors() {
		urls = append(urls, ref.URL)
	}
	return Request{
		Topic:             strings.TrimSpace(s.Topic),
		TargetCountry:     s.TargetCountry,
		ArticleLanguage:   s.ArticleLanguage,
		Keywords:          SplitKeywords(s.Keywords),
		ArticleType:       s.ArticleType,
		ResearchMethod:    s.ResearchMethod,
		PrimaryKeyword:    strings.TrimSpace(s.PrimaryKeyword),
		SecondaryKeywords: s.SecondaryKeywords(),
		CompetitorURLs:    urls,
		Tone:              s.Writing.Tone,
		WordCount:         s.Writing.WordCount,
		HeadingCount:      s.Writing.HeadingCount,
		Perspective:       s.Writing.Perspective,
	}
}

// SplitKeywords splits comma-separated text into trimmed, non-blank entries.
func SplitKeywords(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
