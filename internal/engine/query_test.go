package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AEBus/ffxiv-venues-dalamud/internal/model"
)

func boolPtr(b bool) *bool { return &b }

// noFilter returns a filter state that matches everything, as a baseline for
// enabling one predicate at a time.
func noFilter() FilterState {
	f := NewFilterState()
	f.OpenNow = false
	return f
}

func sampleVenues() []model.Venue {
	return []model.Venue{
		{
			ID:   "v-rose",
			Name: "The Velvet Rose",
			Tags: []string{"Dance", "Music"},
			Sfw:  true,
			Location: &model.Location{
				DataCenter: "Aether", World: "Gilgamesh",
				District: "Mist", Ward: 4, Plot: 2, // Large
			},
			Resolution: &model.Resolution{
				Start:        time.Date(2026, 3, 6, 20, 0, 0, 0, time.UTC),
				IsNow:        true,
				IsWithinWeek: boolPtr(true),
			},
		},
		{
			ID:          "v-anchor",
			Name:        "anchor point",
			Description: []string{"A quiet bar near the docks."},
			Tags:        []string{"Bar"},
			Location: &model.Location{
				DataCenter: "Chaos", World: "Omega",
				District: "The Goblet", Ward: 11, Plot: 5, // Large
			},
			Resolution: &model.Resolution{
				Start:        time.Date(2026, 3, 8, 18, 0, 0, 0, time.UTC),
				IsWithinWeek: boolPtr(false),
			},
		},
		{
			ID:   "v-haven",
			Name: "Moonlight Haven",
			Tags: []string{"Dance"},
			Sfw:  true,
			Location: &model.Location{
				DataCenter: "Materia", World: "Ravana",
				District: "Shirogane", Ward: 2, Plot: 1, // Medium
			},
			// No resolution at all: open/unknown scheduling.
		},
	}
}

func TestQueryFilters(t *testing.T) {
	venues := sampleVenues()

	tests := []struct {
		name     string
		filter   func() FilterState
		expected []string
		desc     string
	}{
		{
			name:     "No filter returns everything sorted by name",
			filter:   noFilter,
			expected: []string{"v-anchor", "v-haven", "v-rose"},
			desc:     "Default ordering is case-insensitive name ascending",
		},
		{
			name: "Search matches description case-insensitively",
			filter: func() FilterState {
				f := noFilter()
				f.Search = "QUIET BAR"
				return f
			},
			expected: []string{"v-anchor"},
			desc:     "Substring search covers name, description and tags",
		},
		{
			name: "Tag filter requires every requested tag",
			filter: func() FilterState {
				f := noFilter()
				f.Tags = "dance, music"
				return f
			},
			expected: []string{"v-rose"},
			desc:     "Moonlight Haven has Dance but not Music, so it drops out",
		},
		{
			name: "Tag filter tolerates messy comma input",
			filter: func() FilterState {
				f := noFilter()
				f.Tags = " dance ,, "
				return f
			},
			expected: []string{"v-haven", "v-rose"},
			desc:     "Empty fragments are dropped, remaining tags trimmed",
		},
		{
			name: "Region filter groups data centers",
			filter: func() FilterState {
				f := noFilter()
				f.Region = "Europe"
				return f
			},
			expected: []string{"v-anchor"},
			desc:     "Chaos belongs to Europe; Aether and Materia do not",
		},
		{
			name: "World filter is case-insensitive",
			filter: func() FilterState {
				f := noFilter()
				f.World = "gilgamesh"
				return f
			},
			expected: []string{"v-rose"},
		},
		{
			name: "Open-now requires a positive resolution",
			filter: func() FilterState {
				f := noFilter()
				f.OpenNow = true
				return f
			},
			expected: []string{"v-rose"},
			desc:     "Missing resolution counts as not open",
		},
		{
			name: "Within-week keeps unknown scheduling",
			filter: func() FilterState {
				f := noFilter()
				f.WithinWeek = true
				return f
			},
			expected: []string{"v-haven", "v-rose"},
			desc:     "Only an explicit false excludes; nil resolution passes",
		},
		{
			name: "SFW only",
			filter: func() FilterState {
				f := noFilter()
				f.SfwOnly = true
				return f
			},
			expected: []string{"v-haven", "v-rose"},
		},
		{
			name: "NSFW only",
			filter: func() FilterState {
				f := noFilter()
				f.NsfwOnly = true
				return f
			},
			expected: []string{"v-anchor"},
		},
		{
			name: "SFW wins when both toggles arrive set",
			filter: func() FilterState {
				f := noFilter()
				f.SfwOnly = true
				f.NsfwOnly = true
				return f
			},
			expected: []string{"v-haven", "v-rose"},
		},
		{
			name: "All sizes enabled is a no-op",
			filter: func() FilterState {
				return noFilter()
			},
			expected: []string{"v-anchor", "v-haven", "v-rose"},
		},
		{
			name: "Size filter excludes other sizes and unknown plots",
			filter: func() FilterState {
				f := noFilter()
				f.SizeSmall = false
				f.SizeMedium = false
				return f
			},
			expected: []string{"v-anchor", "v-rose"},
			desc:     "Mist plot 2 and Goblet plot 5 are Large; Shirogane plot 1 is Medium",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Query(venues, tt.filter(), nil)
			ids := make([]string, 0, len(result))
			for _, v := range result {
				ids = append(ids, v.ID)
			}
			assert.Equal(t, tt.expected, ids, tt.desc)
		})
	}
}

func TestWithinWeekTriState(t *testing.T) {
	venues := []model.Venue{
		{ID: "v-no", Name: "Closed Doors",
			Resolution: &model.Resolution{IsWithinWeek: boolPtr(false)}},
		{ID: "v-unknown", Name: "Maybe Soon",
			Resolution: &model.Resolution{IsNow: false}},
		{ID: "v-bare", Name: "No Word"},
	}

	f := noFilter()
	f.WithinWeek = true
	result := Query(venues, f, nil)

	ids := make([]string, 0, len(result))
	for _, v := range result {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"v-unknown", "v-bare"}, ids,
		"A resolution that says nothing about the week passes like a missing one; only explicit false excludes")
}

func TestQueryDoesNotMutateInput(t *testing.T) {
	venues := sampleVenues()
	originalOrder := []string{venues[0].ID, venues[1].ID, venues[2].ID}

	_ = Query(venues, noFilter(), []SortSpec{{Key: SortByName, Descending: true}})

	assert.Equal(t, originalOrder, []string{venues[0].ID, venues[1].ID, venues[2].ID},
		"Query must leave the input slice untouched")
}

func TestQuerySorting(t *testing.T) {
	venues := sampleVenues()

	t.Run("Name descending", func(t *testing.T) {
		result := Query(venues, noFilter(), []SortSpec{{Key: SortByName, Descending: true}})
		require.Len(t, result, 3)
		assert.Equal(t, "v-rose", result[0].ID)
		assert.Equal(t, "v-anchor", result[2].ID)
	})

	t.Run("Location groups by data center first", func(t *testing.T) {
		result := Query(venues, noFilter(), []SortSpec{{Key: SortByLocation}})
		require.Len(t, result, 3)
		assert.Equal(t, "v-rose", result[0].ID, "Aether sorts before Chaos and Materia")
	})

	t.Run("Start time puts missing resolutions first", func(t *testing.T) {
		result := Query(venues, noFilter(), []SortSpec{{Key: SortByStart}})
		require.Len(t, result, 3)
		assert.Equal(t, "v-haven", result[0].ID, "Nil resolution sorts as the zero time")
		assert.Equal(t, "v-rose", result[1].ID)
		assert.Equal(t, "v-anchor", result[2].ID)
	})

	t.Run("Secondary key breaks ties", func(t *testing.T) {
		tied := []model.Venue{
			{ID: "b", Name: "Same", Resolution: &model.Resolution{Start: time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)}},
			{ID: "a", Name: "Same", Resolution: &model.Resolution{Start: time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)}},
		}
		result := Query(tied, noFilter(), []SortSpec{{Key: SortByName}, {Key: SortByStart}})
		require.Len(t, result, 2)
		assert.Equal(t, "a", result[0].ID)
	})
}

func TestResolveRegion(t *testing.T) {
	assert.Equal(t, "North America", ResolveRegion("Aether"))
	assert.Equal(t, "North America", ResolveRegion(" dynamis "))
	assert.Equal(t, "Europe", ResolveRegion("LIGHT"))
	assert.Equal(t, "Oceania", ResolveRegion("Materia"))
	assert.Equal(t, "Japan", ResolveRegion("Meteor"))
	assert.Equal(t, "", ResolveRegion("Atlantis"), "Unknown data centers map to no region")
}

func TestEnsureSelection(t *testing.T) {
	venues := sampleVenues()

	tests := []struct {
		name     string
		venues   []model.Venue
		selected string
		expected string
	}{
		{"Empty result clears selection", nil, "v-rose", ""},
		{"Present selection is kept", venues, "v-anchor", "v-anchor"},
		{"Missing selection falls to first item", venues, "v-gone", "v-anchor"},
		{"No previous selection picks first item", venues, "", "v-anchor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sorted := Query(tt.venues, noFilter(), nil)
			assert.Equal(t, tt.expected, EnsureSelection(sorted, tt.selected))
		})
	}
}

func TestOptionLists(t *testing.T) {
	venues := sampleVenues()

	assert.Equal(t, []string{"Aether", "Chaos", "Materia"}, DataCenters(venues))
	assert.Equal(t, []string{"Omega"}, Worlds(venues, "Europe", ""))
	assert.Equal(t, []string{"Gilgamesh"}, Worlds(venues, "", "Aether"))
	assert.Equal(t, []string{"Gilgamesh", "Omega", "Ravana"}, Worlds(venues, "", ""))
	assert.Equal(t, []string{"Aether"}, RegionDataCenters([]string{"Aether", "Chaos"}, "North America"))
}
