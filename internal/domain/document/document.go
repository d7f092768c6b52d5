package document

import (
	"github.com/alanyang/promptbox/internal/domain/prompt"
)

// Sentinel is the reserved vocabulary entry meaning "no restriction on
// this axis". It is always present and always first.
const Sentinel = "ALL"

// Persisted storage keys. KeyData holds the whole document, KeyHandoff the
// one-shot editor mailbox, KeyFilters the courtesy vocabulary snapshot the
// main view writes before opening the editor.
const (
	KeyData    = "promptBoxData"
	KeyHandoff = "promptEditor_data"
	KeyFilters = "promptbox_filters"

	// NamespaceToken marks keys owned by this application; clear-app-data
	// removes every key whose name contains it.
	NamespaceToken = "prompt"
)

// Vocabulary is the derived set of in-use categories and tags. Invariant:
// every label on any prompt appears here, every non-sentinel entry is used
// by at least one prompt, and the sentinel leads both axes.
type Vocabulary struct {
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
}

// SearchConfig and Header mirror the presentation configuration embedded in
// the persisted document. The core round-trips them untouched.
type SearchConfig struct {
	Placeholder string `json:"placeholder"`
	Icon        string `json:"icon"`
	ProfileIcon bool   `json:"profileIcon"`
}

type Header struct {
	Title  string       `json:"title"`
	Search SearchConfig `json:"search"`
}

// Document is the root aggregate: every prompt plus the current vocabulary.
// It is persisted wholesale under KeyData after every mutation.
type Document struct {
	App         string          `json:"app"`
	Header      Header          `json:"header"`
	Filters     Vocabulary      `json:"filters"`
	PromptCards []prompt.Prompt `json:"promptCards"`
}

// Empty returns a document with no prompts and a sentinel-only vocabulary.
func Empty() Document {
	return Document{
		App: "PromptBox",
		Header: Header{
			Title: "PROMPTBOX",
			Search: SearchConfig{
				Placeholder: "Search",
				Icon:        "search-icon",
				ProfileIcon: true,
			},
		},
		Filters:     Vocabulary{Categories: []string{Sentinel}, Tags: []string{Sentinel}},
		PromptCards: []prompt.Prompt{},
	}
}

// Seeded returns the starter library shipped with a fresh install.
func Seeded() Document {
	doc := Empty()
	doc.PromptCards = []prompt.Prompt{
		{
			ID:          "creative-writing-assistant",
			Title:       "Creative Writing Assistant",
			Description: "A powerful prompt for generating creative stories, poems, and artistic content with vivid imagery and compelling narratives.",
			Rating:      prompt.RatingGood,
			Tags:        []string{"chatgpt", "prompt", "work"},
			Categories:  []string{"writing", "vibe"},
			Actions:     prompt.AllActions(),
		},
		{
			ID:          "frontend-code-generator",
			Title:       "Frontend Code Generator",
			Description: "Generate modern React components with TypeScript, Tailwind CSS, and best practices for responsive design.",
			Rating:      prompt.RatingExcellent,
			Tags:        []string{"super", "work", "vit"},
			Categories:  []string{"frontend"},
			Actions:     prompt.AllActions(),
		},
		{
			ID:          "backend-api-designer",
			Title:       "Backend API Designer",
			Description: "Create robust REST APIs with proper authentication, validation, and documentation following industry standards.",
			Rating:      prompt.RatingGood,
			Tags:        []string{"work", "super"},
			Categories:  []string{"backend"},
			Actions:     prompt.AllActions(),
		},
		{
			ID:          "digital-art-concept",
			Title:       "Digital Art Concept",
			Description: "Generate detailed prompts for AI art generation with specific styles, lighting, and composition instructions.",
			Rating:      prompt.RatingTemp,
			Tags:        []string{"prompt", "vit"},
			Categories:  []string{"artist", "vibe"},
			Actions:     prompt.AllActions(),
		},
		{
			ID:          "productivity-workflow",
			Title:       "Productivity Workflow",
			Description: "Optimize your daily workflow with smart automation suggestions and time management strategies.",
			Rating:      prompt.RatingExcellent,
			Tags:        []string{"work", "super"},
			Categories:  []string{"vibe"},
			Actions:     prompt.AllActions(),
		},
		{
			ID:          "code-review-assistant",
			Title:       "Code Review Assistant",
			Description: "Comprehensive code review prompts that check for security, performance, and maintainability issues.",
			Rating:      prompt.RatingGood,
			Tags:        []string{"chatgpt", "work"},
			Categories:  []string{"frontend", "backend"},
			Actions:     prompt.AllActions(),
		},
	}
	doc.Filters = Reconcile(doc.PromptCards)
	return doc
}

// Reconcile derives the authoritative vocabulary from the prompts: every
// distinct category and tag in first-seen order, sentinel first. Pure and
// idempotent; called after every structural mutation so the vocabulary
// never drifts from actual usage.
func Reconcile(prompts []prompt.Prompt) Vocabulary {
	return Vocabulary{
		Categories: collect(prompts, func(p prompt.Prompt) []string { return p.Categories }),
		Tags:       collect(prompts, func(p prompt.Prompt) []string { return p.Tags }),
	}
}

func collect(prompts []prompt.Prompt, labels func(prompt.Prompt) []string) []string {
	out := []string{Sentinel}
	seen := map[string]struct{}{Sentinel: {}}
	for _, p := range prompts {
		for _, name := range labels(p) {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// Merge appends names missing from the set, preserving order. Used when a
// hand-off payload carries newly introduced categories or tags.
func Merge(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, n := range existing {
		seen[n] = struct{}{}
	}
	out := existing
	for _, n := range incoming {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Clone returns a deep copy so callers can hand the document out without
// exposing the store's internal slices.
func (d Document) Clone() Document {
	out := d
	out.PromptCards = make([]prompt.Prompt, len(d.PromptCards))
	for i, p := range d.PromptCards {
		p.Categories = append([]string(nil), p.Categories...)
		p.Tags = append([]string(nil), p.Tags...)
		out.PromptCards[i] = p
	}
	out.Filters.Categories = append([]string(nil), d.Filters.Categories...)
	out.Filters.Tags = append([]string(nil), d.Filters.Tags...)
	return out
}
