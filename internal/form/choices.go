package form

import "strings"

// Choice is one selectable value of an enumerated form field.
type Choice struct {
	Value string
	Label string
}

// Choices is an ordered set of selectable values.
type Choices []Choice

// Contains reports whether value is one of the choices.
func (c Choices) Contains(value string) bool {
	for _, choice := range c {
		if choice.Value == value {
			return true
		}
	}
	return false
}

// Label returns the display label for value, or value itself when unknown.
func (c Choices) Label(value string) string {
	for _, choice := range c {
		if choice.Value == value {
			return choice.Label
		}
	}
	return value
}

// Values lists the wire codes in display order.
func (c Choices) Values() []string {
	values := make([]string, 0, len(c))
	for _, choice := range c {
		values = append(values, choice.Value)
	}
	return values
}

// Next cycles from value by step positions, wrapping at both ends. Unknown
// values start from the first choice.
func (c Choices) Next(value string, step int) string {
	if len(c) == 0 {
		return value
	}
	idx := -1
	for i, choice := range c {
		if choice.Value == value {
			idx = i
			break
		}
	}
	if idx < 0 {
		return c[0].Value
	}
	n := len(c)
	return c[((idx+step)%n+n)%n].Value
}

func (c Choices) String() string {
	return strings.Join(c.Values(), ", ")
}

var (
	Countries = Choices{
		{"KR", "South Korea"},
		{"US", "United States"},
		{"JP", "Japan"},
		{"CN", "China"},
		{"GB", "United Kingdom"},
		{"DE", "Germany"},
		{"FR", "France"},
		{"CA", "Canada"},
		{"AU", "Australia"},
	}

	Languages = Choices{
		{"ko", "Korean"},
		{"en", "English"},
		{"ja", "Japanese"},
		{"zh", "Chinese"},
		{"es", "Spanish"},
		{"fr", "French"},
		{"de", "German"},
	}

	ArticleTypes = Choices{
		{"blog_post", "Blog post"},
		{"guide", "Guide"},
		{"review", "Review"},
		{"comparison", "Comparison"},
		{"tutorial", "Tutorial"},
		{"news", "News"},
	}

	ResearchMethods = Choices{
		{"serp_analysis", "SERP analysis"},
		{"competitor_analysis", "Competitor analysis"},
		{"keyword_research", "Keyword research"},
		{"manual", "Manual research"},
	}

	Tones = Choices{
		{"professional", "Professional"},
		{"friendly", "Friendly"},
		{"cheerful", "Cheerful"},
		{"casual", "Casual"},
		{"formal", "Formal"},
		{"conversational", "Conversational"},
	}

	Perspectives = Choices{
		{"first_person", "First person"},
		{"third_person", "Third person"},
		{"mixed", "Mixed"},
	}
)

// WordCounts and HeadingCounts are the accepted target sizes.
var (
	WordCounts    = []int{500, 800, 1000, 2000}
	HeadingCounts = []int{5, 7, 9}
)

func containsInt(values []int, v int) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func nextInt(values []int, current, step int) int {
	if len(values) == 0 {
		return current
	}
	idx := -1
	for i, v := range values {
		if v == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return values[0]
	}
	n := len(values)
	return values[((idx+step)%n+n)%n]
}
