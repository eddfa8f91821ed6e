package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inkwell-ai/inkwell-api/internal/domain"
)

// JSON schemas for structured generation. The Gemini adapter forwards these
// as response schemas, so decode targets must stay in sync with the domain
// types.
var (
	researchSchema = json.RawMessage(`{
		"type": "object",
		"properties": {
			"keywords": {"type": "array", "items": {"type": "string"}},
			"primary_keywords": {"type": "array", "items": {"type": "string"}},
			"secondary_keywords": {"type": "array", "items": {"type": "string"}},
			"search_intent": {"type": "string"},
			"content_angles": {"type": "array", "items": {"type": "string"}},
			"sources": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"title": {"type": "string"},
						"url": {"type": "string"},
						"excerpt": {"type": "string"},
						"credibility": {"type": "number"}
					},
					"required": ["title", "url"]
				}
			},
			"summary": {"type": "string"}
		},
		"required": ["keywords", "summary"]
	}`)

	outlineSchema = json.RawMessage(`{
		"type": "object",
		"properties": {
			"title": {"type": "string"},
			"sections": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"id": {"type": "string"},
						"heading": {"type": "string"},
						"subheadings": {"type": "array", "items": {"type": "string"}},
						"key_points": {"type": "array", "items": {"type": "string"}},
						"keywords": {"type": "array", "items": {"type": "string"}},
						"target_words": {"type": "integer"}
					},
					"required": ["id", "heading", "target_words"]
				}
			}
		},
		"required": ["title", "sections"]
	}`)

	sectionSchema = json.RawMessage(`{
		"type": "object",
		"properties": {
			"content": {"type": "string"}
		},
		"required": ["content"]
	}`)

	scenesSchema = json.RawMessage(`{
		"type": "object",
		"properties": {
			"scenes": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"scene_number": {"type": "integer"},
						"title": {"type": "string"},
						"narration": {"type": "string"},
						"image_prompt": {"type": "string"}
					},
					"required": ["scene_number", "title", "narration", "image_prompt"]
				}
			}
		},
		"required": ["scenes"]
	}`)

	podcastSchema = json.RawMessage(`{
		"type": "object",
		"properties": {
			"title": {"type": "string"},
			"lines": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"speaker": {"type": "string"},
						"text": {"type": "string"}
					},
					"required": ["speaker", "text"]
				}
			}
		},
		"required": ["title", "lines"]
	}`)
)

func buildResearchPrompt(req domain.ResearchRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research the following keywords for a blog post: %s.\n",
		strings.Join(req.NormalizedKeywords(), ", "))
	if req.Topic != "" {
		fmt.Fprintf(&b, "The post topic is: %s.\n", req.Topic)
	}
	if req.Industry != "" {
		fmt.Fprintf(&b, "Industry context: %s.\n", req.Industry)
	}
	if req.TargetAudience != "" {
		fmt.Fprintf(&b, "Target audience: %s.\n", req.TargetAudience)
	}
	b.WriteString("Classify the keywords into primary and secondary sets, " +
		"identify the dominant search intent, propose distinct content angles, " +
		"list credible sources with URLs, and summarize the findings.")
	return b.String()
}

func buildOutlinePrompt(req domain.OutlineRequest) string {
	var b strings.Builder
	b.WriteString("Plan a blog post outline from this keyword research:\n")
	fmt.Fprintf(&b, "Keywords: %s.\n", strings.Join(req.Research.Keywords, ", "))
	if req.Research.Summary != "" {
		fmt.Fprintf(&b, "Research summary: %s\n", req.Research.Summary)
	}
	if req.Research.SearchIntent != "" {
		fmt.Fprintf(&b, "Search intent: %s.\n", req.Research.SearchIntent)
	}
	if req.Title != "" {
		fmt.Fprintf(&b, "Working title: %s.\n", req.Title)
	}
	if req.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s.\n", req.Tone)
	}
	if req.Audience != "" {
		fmt.Fprintf(&b, "Audience: %s.\n", req.Audience)
	}
	targetWords := req.TargetWords
	if targetWords <= 0 {
		targetWords = 1500
	}
	fmt.Fprintf(&b, "Aim for roughly %d words total, distributed across sections "+
		"with stable section ids, headings, subheadings, key points, and per-section "+
		"keyword assignments.", targetWords)
	return b.String()
}

func buildSectionPrompt(req domain.ContentRequest, section domain.OutlineSection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write the %q section of a blog post titled %q.\n", section.Heading, req.Title)
	if len(section.Subheadings) > 0 {
		fmt.Fprintf(&b, "Cover these subheadings: %s.\n", strings.Join(section.Subheadings, "; "))
	}
	if len(section.KeyPoints) > 0 {
		fmt.Fprintf(&b, "Make these points: %s.\n", strings.Join(section.KeyPoints, "; "))
	}
	if len(section.Keywords) > 0 {
		fmt.Fprintf(&b, "Work in these keywords naturally: %s.\n", strings.Join(section.Keywords, ", "))
	}
	if req.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s.\n", req.Tone)
	}
	if req.Audience != "" {
		fmt.Fprintf(&b, "Audience: %s.\n", req.Audience)
	}
	if section.TargetWords > 0 {
		fmt.Fprintf(&b, "Target length: about %d words.\n", section.TargetWords)
	}
	b.WriteString("Return only the section body in Markdown, without repeating the heading.")
	return b.String()
}

func buildPremisePrompt(req domain.StoryRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a short story premise set in: %s.\n", req.Setting)
	if req.Characters != "" {
		fmt.Fprintf(&b, "Characters: %s.\n", req.Characters)
	}
	if req.PlotElements != "" {
		fmt.Fprintf(&b, "Plot elements to include: %s.\n", req.PlotElements)
	}
	if req.WritingStyle != "" {
		fmt.Fprintf(&b, "Writing style: %s.\n", req.WritingStyle)
	}
	if req.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s.\n", req.Tone)
	}
	if req.NarrativePOV != "" {
		fmt.Fprintf(&b, "Narrative point of view: %s.\n", req.NarrativePOV)
	}
	if req.AudienceAge != "" {
		fmt.Fprintf(&b, "Audience age group: %s.\n", req.AudienceAge)
	}
	if req.EndingPreference != "" {
		fmt.Fprintf(&b, "Ending preference: %s.\n", req.EndingPreference)
	}
	b.WriteString("Keep it to two or three paragraphs of vivid prose.")
	return b.String()
}

func buildScenesPrompt(req domain.StoryRequest, premise string) string {
	var b strings.Builder
	b.WriteString("Break the following story premise into a sequence of scenes for a narrated video:\n\n")
	b.WriteString(premise)
	b.WriteString("\n\nFor each scene provide a sequential scene_number, a short title, " +
		"narration text of two to four sentences, and a detailed visual image_prompt " +
		"describing the scene for an image generation model.")
	if req.Tone != "" {
		fmt.Fprintf(&b, " Keep the tone %s.", req.Tone)
	}
	return b.String()
}

func buildPodcastPrompt(req domain.PodcastRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a podcast episode script about: %s.\n", req.Topic)
	if len(req.Keywords) > 0 {
		fmt.Fprintf(&b, "Touch on: %s.\n", strings.Join(req.Keywords, ", "))
	}
	speakers := req.Speakers
	if len(speakers) == 0 {
		speakers = []string{"Host", "Guest"}
	}
	fmt.Fprintf(&b, "Speakers: %s.\n", strings.Join(speakers, ", "))
	if req.Style != "" {
		fmt.Fprintf(&b, "Style: %s.\n", req.Style)
	}
	duration := req.DurationMinutes
	if duration <= 0 {
		duration = 10
	}
	fmt.Fprintf(&b, "Aim for roughly %d minutes of spoken content. ", duration)
	b.WriteString("Alternate between the speakers naturally; every line carries the " +
		"speaker name and the text to be spoken.")
	return b.String()
}
