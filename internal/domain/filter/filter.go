package filter

import (
	"strings"

	"github.com/alanyang/promptbox/internal/domain/document"
	"github.com/alanyang/promptbox/internal/domain/prompt"
)

// Selection is the ephemeral filter state of the main view. Invariant: the
// category and tag axes are never empty — an axis with nothing selected
// holds the sentinel.
type Selection struct {
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
	Search     string   `json:"search"`
}

// Default returns the unrestricted selection: sentinel on both axes.
func Default() Selection {
	return Selection{
		Categories: []string{document.Sentinel},
		Tags:       []string{document.Sentinel},
	}
}

// Toggle flips name in the active set. Selecting the sentinel clears the
// axis; deselecting the last non-sentinel entry reverts to sentinel-only.
func Toggle(active []string, name string) []string {
	if name == document.Sentinel {
		return []string{document.Sentinel}
	}
	out := make([]string, 0, len(active)+1)
	found := false
	for _, n := range active {
		if n == document.Sentinel {
			continue
		}
		if n == name {
			found = true
			continue
		}
		out = append(out, n)
	}
	if !found {
		out = append(out, name)
	}
	if len(out) == 0 {
		return []string{document.Sentinel}
	}
	return out
}

// Prune removes a deleted vocabulary entry from the active set, reverting
// the axis to sentinel-only when it was the last selection. A dangling
// selection would let the user filter by nothing silently.
func Prune(active []string, name string) []string {
	out := make([]string, 0, len(active))
	for _, n := range active {
		if n != name {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return []string{document.Sentinel}
	}
	return out
}

// Visible returns the filtered, ordered subset of prompts: every prompt
// matching the search text and both label axes, pinned entries first.
// Order among pinned and among unpinned prompts follows collection order.
// Pure — never mutates its inputs.
func Visible(prompts []prompt.Prompt, sel Selection) []prompt.Prompt {
	pinned := make([]prompt.Prompt, 0, len(prompts))
	var rest []prompt.Prompt
	for _, p := range prompts {
		if !matches(p, sel) {
			continue
		}
		if p.Pinned {
			pinned = append(pinned, p)
		} else {
			rest = append(rest, p)
		}
	}
	return append(pinned, rest...)
}

func matches(p prompt.Prompt, sel Selection) bool {
	return matchesSearch(p, sel.Search) &&
		matchesAxis(p.Categories, sel.Categories) &&
		matchesAxis(p.Tags, sel.Tags)
}

func matchesSearch(p prompt.Prompt, text string) bool {
	if text == "" {
		return true
	}
	needle := strings.ToLower(text)
	return strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle)
}

func matchesAxis(labels, active []string) bool {
	for _, a := range active {
		if a == document.Sentinel {
			return true
		}
	}
	for _, l := range labels {
		for _, a := range active {
			if l == a {
				return true
			}
		}
	}
	return false
}
