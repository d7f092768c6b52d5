package prompt

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Rating is the qualitative tier of a prompt. Zero means unrated.
type Rating int

const (
	RatingUnset     Rating = 0
	RatingTemp      Rating = 1
	RatingGood      Rating = 2
	RatingExcellent Rating = 3
)

var ratingLabels = map[Rating]string{
	RatingUnset:     "",
	RatingTemp:      "Temp",
	RatingGood:      "Good",
	RatingExcellent: "Excellent",
}

// Label returns the display label for the tier. Unrated maps to "".
func (r Rating) Label() string { return ratingLabels[r.Clamp()] }

func (r Rating) Valid() bool { return r >= RatingUnset && r <= RatingExcellent }

// Clamp snaps an out-of-domain value to the nearest valid tier.
func (r Rating) Clamp() Rating {
	if r < RatingUnset {
		return RatingUnset
	}
	if r > RatingExcellent {
		return RatingExcellent
	}
	return r
}

// Actions are per-prompt capability flags. All true for user-created
// prompts; kept as an extensibility point, not enforced anywhere.
type Actions struct {
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
	Copy   bool `json:"copy"`
}

func AllActions() Actions { return Actions{Edit: true, Delete: true, Copy: true} }

// Prompt is a user-authored library entry. Content and ExampleContent are
// opaque markdown blobs; the core never interprets them.
// JSON field names follow the persisted document format.
type Prompt struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Content        string   `json:"content,omitempty"`
	ExampleContent string   `json:"exampleContent,omitempty"`
	Rating         Rating   `json:"rating"`
	Tags           []string `json:"tags"`
	Categories     []string `json:"categories"`
	Pinned         bool     `json:"pinned"`
	Actions        Actions  `json:"actions"`
}

// Validate rejects prompts that must not reach the document store.
// An empty title blocks the save; the rating must be in domain.
func (p Prompt) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Rating, validation.Min(int(RatingUnset)), validation.Max(int(RatingExcellent))),
	)
}

// Normalize dedupes categories and tags in first-seen order, drops blank
// entries, clamps the rating, and fills in the default action flags.
func (p Prompt) Normalize() Prompt {
	p.Categories = dedupe(p.Categories)
	p.Tags = dedupe(p.Tags)
	p.Rating = p.Rating.Clamp()
	if !p.Actions.Edit && !p.Actions.Delete && !p.Actions.Copy {
		p.Actions = AllActions()
	}
	return p
}

func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Slug lowercases the title and collapses runs of non-alphanumerics to
// single dashes. Returns "" when the title carries no usable characters.
func Slug(title string) string {
	var b strings.Builder
	dash := true // suppress leading dash
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// NewID derives a stable identifier for a prompt at creation time: the
// slugified title, a timestamp token when the title yields nothing, and a
// short random suffix when the candidate is already taken.
func NewID(title string, taken func(id string) bool) string {
	id := Slug(title)
	if id == "" {
		id = fmt.Sprintf("prompt-%d", time.Now().UnixMilli())
	}
	if taken == nil || !taken(id) {
		return id
	}
	for {
		candidate := id + "-" + uuid.NewString()[:8]
		if !taken(candidate) {
			return candidate
		}
	}
}
