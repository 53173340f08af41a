package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/AEBus/ffxiv-venues-dalamud/internal/model"
)

// Regions lists the selectable region groupings in display order.
var Regions = []string{"North America", "Europe", "Oceania", "Japan"}

// dataCenterRegions is the fixed data-center to region grouping. Data
// centers missing from this table never match any region filter.
var dataCenterRegions = map[string]string{
	"aether":    "North America",
	"crystal":   "North America",
	"dynamis":   "North America",
	"primal":    "North America",
	"chaos":     "Europe",
	"light":     "Europe",
	"materia":   "Oceania",
	"elemental": "Japan",
	"gaia":      "Japan",
	"mana":      "Japan",
	"meteor":    "Japan",
}

// ResolveRegion maps a data center to its region, or "" when unmapped.
func ResolveRegion(dataCenter string) string {
	return dataCenterRegions[strings.ToLower(strings.TrimSpace(dataCenter))]
}

// FilterState is the live filter configuration owned by the UI. String
// fields are unset when empty; the three size toggles are a no-op when all
// enabled. SfwOnly and NsfwOnly are mutually exclusive at the state level;
// should both arrive set, SfwOnly wins.
type FilterState struct {
	Search     string
	Tags       string
	Region     string
	DataCenter string
	World      string

	OpenNow    bool
	WithinWeek bool
	SfwOnly    bool
	NsfwOnly   bool

	SizeSmall  bool
	SizeMedium bool
	SizeLarge  bool
}

// NewFilterState returns the default filter configuration: open venues only,
// every plot size enabled.
func NewFilterState() FilterState {
	return FilterState{
		OpenNow:    true,
		SizeSmall:  true,
		SizeMedium: true,
		SizeLarge:  true,
	}
}

// SortKey selects one ordering dimension.
type SortKey int

const (
	SortByName SortKey = iota
	SortByLocation
	SortByStart
)

// SortSpec is one ordering key; earlier specs take priority and later ones
// break ties.
type SortSpec struct {
	Key        SortKey
	Descending bool
}

// Query filters and sorts a venue collection. It is pure: the input slice is
// never modified and the result is a fresh slice. All active filters combine
// with logical AND; with no sort specs the result is ordered by
// case-insensitive name ascending.
func Query(venues []model.Venue, filter FilterState, sorts []SortSpec) []model.Venue {
	result := make([]model.Venue, 0, len(venues))
	for _, v := range venues {
		if matches(v, filter) {
			result = append(result, v)
		}
	}

	sortVenues(result, sorts)
	return result
}

func matches(v model.Venue, f FilterState) bool {
	if search := strings.TrimSpace(f.Search); search != "" && !matchesSearch(v, search) {
		return false
	}

	if tags := splitTags(f.Tags); len(tags) > 0 && !matchesTags(v.Tags, tags) {
		return false
	}

	if f.Region != "" {
		dc := ""
		if v.Location != nil {
			dc = v.Location.DataCenter
		}
		if !strings.EqualFold(ResolveRegion(dc), f.Region) {
			return false
		}
	}

	if f.DataCenter != "" {
		if v.Location == nil || !strings.EqualFold(v.Location.DataCenter, f.DataCenter) {
			return false
		}
	}

	if f.World != "" {
		if v.Location == nil || !strings.EqualFold(v.Location.World, f.World) {
			return false
		}
	}

	if f.OpenNow {
		if v.Resolution == nil || !v.Resolution.IsNow {
			return false
		}
	}

	// Within-week is deliberately permissive: only an explicit false
	// excludes, so venues with unknown scheduling still show up.
	if f.WithinWeek {
		if v.Resolution != nil && v.Resolution.IsWithinWeek != nil && !*v.Resolution.IsWithinWeek {
			return false
		}
	}

	if f.SfwOnly {
		if !v.Sfw {
			return false
		}
	} else if f.NsfwOnly {
		if v.Sfw {
			return false
		}
	}

	if filterBySize := !(f.SizeSmall && f.SizeMedium && f.SizeLarge); filterBySize {
		size, ok := ResolvePlotSize(v.Location)
		if !ok {
			return false
		}
		switch size {
		case PlotSmall:
			if !f.SizeSmall {
				return false
			}
		case PlotMedium:
			if !f.SizeMedium {
				return false
			}
		case PlotLarge:
			if !f.SizeLarge {
				return false
			}
		}
	}

	return true
}

func matchesSearch(v model.Venue, search string) bool {
	if containsFold(v.Name, search) {
		return true
	}
	for _, para := range v.Description {
		if containsFold(para, search) {
			return true
		}
	}
	for _, tag := range v.Tags {
		if containsFold(tag, search) {
			return true
		}
	}
	return false
}

// matchesTags requires every requested tag to match at least one venue tag
// case-insensitively.
func matchesTags(venueTags, requested []string) bool {
	if len(venueTags) == 0 {
		return false
	}
	for _, want := range requested {
		found := false
		for _, have := range venueTags {
			if strings.EqualFold(have, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// splitTags splits the raw tag filter on commas, trims entries, and drops
// empties.
func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func sortVenues(venues []model.Venue, sorts []SortSpec) {
	if len(sorts) == 0 {
		sorts = []SortSpec{{Key: SortByName}}
	}

	sort.SliceStable(venues, func(i, j int) bool {
		for _, spec := range sorts {
			cmp := compareVenues(venues[i], venues[j], spec.Key)
			if cmp == 0 {
				continue
			}
			if spec.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func compareVenues(a, b model.Venue, key SortKey) int {
	switch key {
	case SortByLocation:
		return strings.Compare(locationKey(a), locationKey(b))
	case SortByStart:
		at, bt := startInstant(a), startInstant(b)
		if at.Equal(bt) {
			return 0
		}
		if at.Before(bt) {
			return -1
		}
		return 1
	default:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}
}

func startInstant(v model.Venue) (t time.Time) {
	if v.Resolution != nil {
		t = v.Resolution.Start
	}
	return t
}

// EnsureSelection maintains the UI selection across result-set changes: when
// the previously selected id is no longer present, selection moves to the
// first item of the new result, or to "" when the result is empty.
func EnsureSelection(venues []model.Venue, selectedID string) string {
	if len(venues) == 0 {
		return ""
	}
	for _, v := range venues {
		if v.ID == selectedID {
			return selectedID
		}
	}
	return venues[0].ID
}

// DataCenters returns the distinct data centers present in the collection,
// ordered case-insensitively.
func DataCenters(venues []model.Venue) []string {
	return distinctField(venues, func(loc *model.Location) string { return loc.DataCenter })
}

// Worlds returns the distinct worlds present in the collection after
// applying the region and data-center filters, ordered case-insensitively.
func Worlds(venues []model.Venue, region, dataCenter string) []string {
	filtered := venues
	if region != "" || dataCenter != "" {
		filtered = Query(venues, FilterState{
			Region:     region,
			DataCenter: dataCenter,
			SizeSmall:  true,
			SizeMedium: true,
			SizeLarge:  true,
		}, nil)
	}
	return distinctField(filtered, func(loc *model.Location) string { return loc.World })
}

// RegionDataCenters narrows a data-center option list to one region.
func RegionDataCenters(dataCenters []string, region string) []string {
	if region == "" {
		return dataCenters
	}
	narrowed := make([]string, 0, len(dataCenters))
	for _, dc := range dataCenters {
		if strings.EqualFold(ResolveRegion(dc), region) {
			narrowed = append(narrowed, dc)
		}
	}
	return narrowed
}

func distinctField(venues []model.Venue, field func(*model.Location) string) []string {
	seen := make(map[string]string, len(venues))
	for _, v := range venues {
		if v.Location == nil {
			continue
		}
		value := strings.TrimSpace(field(v.Location))
		if value == "" {
			continue
		}
		if _, ok := seen[strings.ToLower(value)]; !ok {
			seen[strings.ToLower(value)] = value
		}
	}

	values := make([]string, 0, len(seen))
	for _, v := range seen {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		return strings.ToLower(values[i]) < strings.ToLower(values[j])
	})
	return values
}

// locationKey builds the composite address key that groups venues naturally
// by data center, world, district, ward and plot.
func locationKey(v model.Venue) string {
	loc := v.Location
	if loc == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(loc.DataCenter)
	b.WriteByte('-')
	b.WriteString(loc.World)
	b.WriteByte('-')
	b.WriteString(loc.District)
	b.WriteByte('-')
	b.WriteString(padInt(loc.Ward))
	b.WriteByte('-')
	b.WriteString(padInt(loc.Plot))
	return b.String()
}

func padInt(n int) string {
	if n < 0 {
		n = 0
	}
	digits := []byte{'0', '0', '0'}
	for i := 2; i >= 0 && n > 0; i-- {
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits)
}
