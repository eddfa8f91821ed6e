package domain

import (
	"errors"
	"sort"
	"strings"
)

// Common validation errors for blog requests
var (
	ErrNoKeywords      = errors.New("at least one keyword is required")
	ErrNoSections      = errors.New("at least one section is required")
	ErrMissingResearch = errors.New("research data is required")
)

// ResearchRequest describes a blog research operation.
type ResearchRequest struct {
	Keywords     []string `json:"keywords" validate:"required,min=1,dive,required"`
	Topic        string   `json:"topic,omitempty"`
	Industry     string   `json:"industry,omitempty"`
	TargetAudience string `json:"target_audience,omitempty"`
}

// Validate checks if the ResearchRequest has valid data.
func (r *ResearchRequest) Validate() error {
	if len(r.Keywords) == 0 {
		return ErrNoKeywords
	}
	return nil
}

// NormalizedKeywords returns the request keywords lowercased, trimmed,
// deduplicated, and sorted. Two requests that differ only in keyword order
// or casing normalize identically, which keeps cache keys deterministic.
func (r *ResearchRequest) NormalizedKeywords() []string {
	return NormalizeKeywords(r.Keywords)
}

// NormalizeKeywords lowercases, trims, deduplicates, and sorts a keyword set.
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		normalized = append(normalized, kw)
	}
	sort.Strings(normalized)
	return normalized
}

// ResearchSource is a single source found during research.
type ResearchSource struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Excerpt     string  `json:"excerpt,omitempty"`
	Credibility float64 `json:"credibility,omitempty"`
}

// ResearchResult is the outcome of a research operation.
type ResearchResult struct {
	Keywords          []string         `json:"keywords"`
	PrimaryKeywords   []string         `json:"primary_keywords,omitempty"`
	SecondaryKeywords []string         `json:"secondary_keywords,omitempty"`
	SearchIntent      string           `json:"search_intent,omitempty"`
	ContentAngles     []string         `json:"content_angles,omitempty"`
	Sources           []ResearchSource `json:"sources,omitempty"`
	Summary           string           `json:"summary"`
}

// OutlineRequest describes an outline generation operation. Research is the
// result of a prior research task, echoed back by the client.
type OutlineRequest struct {
	Research    *ResearchResult `json:"research" validate:"required"`
	Title       string          `json:"title,omitempty"`
	TargetWords int             `json:"target_words,omitempty"`
	Tone        string          `json:"tone,omitempty"`
	Audience    string          `json:"audience,omitempty"`
}

// Validate checks if the OutlineRequest has valid data.
func (r *OutlineRequest) Validate() error {
	if r.Research == nil {
		return ErrMissingResearch
	}
	if len(r.Research.Keywords) == 0 {
		return ErrNoKeywords
	}
	return nil
}

// OutlineSection is a single planned section of a blog post.
type OutlineSection struct {
	ID          string   `json:"id"`
	Heading     string   `json:"heading"`
	Subheadings []string `json:"subheadings,omitempty"`
	KeyPoints   []string `json:"key_points,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	TargetWords int      `json:"target_words"`
}

// Outline is the planned structure of a blog post.
type Outline struct {
	Title    string           `json:"title"`
	Sections []OutlineSection `json:"sections"`
}

// ContentRequest describes a full blog content generation operation.
type ContentRequest struct {
	Title            string           `json:"title" validate:"required"`
	Sections         []OutlineSection `json:"sections" validate:"required,min=1"`
	Tone             string           `json:"tone,omitempty"`
	Audience         string           `json:"audience,omitempty"`
	GlobalTargetWords int             `json:"global_target_words,omitempty"`
	ResearchKeywords []string         `json:"research_keywords,omitempty"`
}

// Validate checks if the ContentRequest has valid data.
func (r *ContentRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyContent
	}
	if len(r.Sections) == 0 {
		return ErrNoSections
	}
	return nil
}

// BlogSection is a generated section of a blog post.
type BlogSection struct {
	ID       string `json:"id"`
	Heading  string `json:"heading"`
	Content  string `json:"content"`
	WordCount int   `json:"word_count"`
}

// BlogResult is the outcome of a full content generation operation.
type BlogResult struct {
	Title    string        `json:"title"`
	Sections []BlogSection `json:"sections"`
	Model    string        `json:"model,omitempty"`
}

// WordCount returns the total word count across all sections.
func (b *BlogResult) WordCount() int {
	total := 0
	for _, s := range b.Sections {
		total += s.WordCount
	}
	return total
}
