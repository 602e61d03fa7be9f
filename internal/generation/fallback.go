package generation

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"autoposter/internal/form"
)

// Placeholder metrics reported for a fallback artifact regardless of its
// actual length.
const (
	FallbackWordCount   = 1500
	FallbackSEOScore    = 85
	FallbackReadingTime = 8
)

// Fallback synthesizes the placeholder artifact used by the legacy flow when
// the backend cannot produce one. The output depends only on req and now.
func Fallback(req form.Request, now time.Time) Artifact {
	topic := strings.TrimSpace(req.Topic)
	keyword := strings.TrimSpace(req.PrimaryKeyword)
	if keyword == "" {
		keyword = topic
	}
	heading := cases.Title(language.Und).String(keyword)

	var b strings.Builder
	fmt.Fprintf(&b, "# The Complete Guide to %s\n\n", topic)
	fmt.Fprintf(&b, "%s is an important subject in today's digital landscape. This guide explains what %s is and how to put it to work in practice.\n\n", topic, keyword)
	fmt.Fprintf(&b, "## What is %s?\n\n", heading)
	fmt.Fprintf(&b, "%s is used across many fields, and interest in it has grown steadily in recent years.\n\n", keyword)
	fmt.Fprintf(&b, "## Key Features of %s\n\n", heading)
	fmt.Fprintf(&b, "1. **Efficiency**: %s helps teams get more done with less effort.\n", keyword)
	b.WriteString("2. **Scalability**: it applies at any scale, from a single project to an entire organization.\n")
	b.WriteString("3. **Flexibility**: it adapts easily to changing requirements.\n\n")
	fmt.Fprintf(&b, "## How to Use %s\n\n", heading)
	fmt.Fprintf(&b, "### Step 1: Learn the Basics\n\nStart with a clear understanding of the core concepts behind %s.\n\n", keyword)
	b.WriteString("### Step 2: Practice\n\nTurn the theory into hands-on exercises.\n\n")
	b.WriteString("### Step 3: Apply\n\nBring what you learned into a real project.\n\n")
	if len(req.SecondaryKeywords) > 0 {
		b.WriteString("## Related Topics\n\n")
		for _, kw := range req.SecondaryKeywords {
			fmt.Fprintf(&b, "- %s\n", kw)
		}
		b.WriteString("\n")
	}
	b.WriteString("## Conclusion\n\n")
	fmt.Fprintf(&b, "Understanding %s pays off now and in the future. Start exploring %s today.\n", topic, keyword)

	return Artifact{
		Title:           fmt.Sprintf("The Complete Guide to %s", topic),
		Content:         b.String(),
		MetaDescription: fmt.Sprintf("A comprehensive guide to %s: what %s is, its key features, and how to use it.", topic, keyword),
		MetaKeywords:    fallbackKeywords(topic, keyword, req.SecondaryKeywords),
		SEOScore:        FallbackSEOScore,
		WordCount:       FallbackWordCount,
		ReadingTime:     FallbackReadingTime,
		GeneratedAt:     now.UTC(),
	}
}

func fallbackKeywords(topic, keyword string, secondary []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(secondary)+3)
	add := func(value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		if _, ok := seen[value]; ok {
			return
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	add(keyword)
	add(topic)
	for _, kw := range secondary {
		add(kw)
	}
	add("guide")
	return out
}
