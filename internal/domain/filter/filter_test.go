package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/promptbox/internal/domain/document"
	"github.com/alanyang/promptbox/internal/domain/filter"
	"github.com/alanyang/promptbox/internal/domain/prompt"
)

func TestToggle(t *testing.T) {
	tests := []struct {
		name   string
		active []string
		toggle string
		want   []string
	}{
		{"select from sentinel", []string{"ALL"}, "x", []string{"x"}},
		{"add second", []string{"x"}, "y", []string{"x", "y"}},
		{"deselect keeps others", []string{"x", "y"}, "x", []string{"y"}},
		{"deselect last reverts to sentinel", []string{"x"}, "x", []string{"ALL"}},
		{"sentinel clears axis", []string{"x", "y"}, "ALL", []string{"ALL"}},
		{"sentinel on sentinel stays", []string{"ALL"}, "ALL", []string{"ALL"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filter.Toggle(tt.active, tt.toggle))
		})
	}
}

func TestPrune(t *testing.T) {
	assert.Equal(t, []string{"y"}, filter.Prune([]string{"x", "y"}, "x"))
	assert.Equal(t, []string{document.Sentinel}, filter.Prune([]string{"x"}, "x"))
	assert.Equal(t, []string{"x"}, filter.Prune([]string{"x"}, "z"))
}

func TestVisibleByCategory(t *testing.T) {
	prompts := []prompt.Prompt{
		{ID: "alpha", Title: "Alpha", Categories: []string{"x"}, Tags: []string{"a"}},
		{ID: "beta", Title: "Beta", Categories: []string{"y"}, Tags: []string{"b"}},
	}
	sel := filter.Selection{Categories: []string{"x"}, Tags: []string{document.Sentinel}}

	got := filter.Visible(prompts, sel)

	require.Len(t, got, 1)
	assert.Equal(t, "Alpha", got[0].Title)
}

func TestVisibleSearchIsCaseInsensitive(t *testing.T) {
	prompts := []prompt.Prompt{
		{ID: "a", Title: "Creative Writing", Description: "stories"},
		{ID: "b", Title: "Backend", Description: "REST APIs"},
	}
	sel := filter.Default()
	sel.Search = "WRIT"
	got := filter.Visible(prompts, sel)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)

	// Description matches too.
	sel.Search = "rest api"
	got = filter.Visible(prompts, sel)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestVisibleAllPredicatesMustMatch(t *testing.T) {
	prompts := []prompt.Prompt{
		{ID: "a", Title: "Alpha", Categories: []string{"x"}, Tags: []string{"t1"}},
	}
	sel := filter.Selection{Categories: []string{"x"}, Tags: []string{"t2"}}
	assert.Empty(t, filter.Visible(prompts, sel))
}

func TestVisibleUnlabeledMatchesOnlySentinel(t *testing.T) {
	prompts := []prompt.Prompt{{ID: "bare", Title: "Bare"}}

	got := filter.Visible(prompts, filter.Default())
	require.Len(t, got, 1)

	sel := filter.Selection{Categories: []string{"x"}, Tags: []string{document.Sentinel}}
	assert.Empty(t, filter.Visible(prompts, sel))
}

func TestVisiblePinnedFirstStable(t *testing.T) {
	prompts := []prompt.Prompt{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B", Pinned: true},
		{ID: "c", Title: "C"},
	}
	got := filter.Visible(prompts, filter.Default())
	require.Len(t, got, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestVisibleDoesNotMutateInput(t *testing.T) {
	prompts := []prompt.Prompt{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B", Pinned: true},
	}
	_ = filter.Visible(prompts, filter.Default())
	assert.Equal(t, "a", prompts[0].ID)
	assert.Equal(t, "b", prompts[1].ID)
}
