package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/AEBus/ffxiv-venues-dalamud/internal/config"
	"github.com/AEBus/ffxiv-venues-dalamud/internal/model"
)

// FormatAddress renders the short single-line address used in the venue
// list. A non-empty free-text override supersedes the structured fields.
func FormatAddress(location *model.Location) string {
	if location == nil {
		return config.FallbackLocation
	}
	if strings.TrimSpace(location.Override) != "" {
		return location.Override
	}
	return fmt.Sprintf("%s, %s, %s, Ward %d, Plot %d",
		location.DataCenter, location.World, location.District, location.Ward, location.Plot)
}

// FormatAddressDetailed renders the full address for the detail pane,
// omitting missing parts rather than failing on malformed locations.
func FormatAddressDetailed(location *model.Location) string {
	if location == nil {
		return config.FallbackLocation
	}
	if strings.TrimSpace(location.Override) != "" {
		return location.Override
	}

	parts := make([]string, 0, 8)
	if strings.TrimSpace(location.DataCenter) != "" {
		parts = append(parts, location.DataCenter)
	}
	if strings.TrimSpace(location.World) != "" {
		parts = append(parts, location.World)
	}
	if strings.TrimSpace(location.District) != "" {
		parts = append(parts, location.District)
	}

	ward := fmt.Sprintf("Ward %d", location.Ward)
	if location.Subdivision {
		ward += " (Subdivision)"
	}
	parts = append(parts, ward, fmt.Sprintf("Plot %d", location.Plot))

	if location.Apartment > 0 {
		parts = append(parts, fmt.Sprintf("Apartment %d", location.Apartment))
	}
	if location.Room > 0 {
		parts = append(parts, fmt.Sprintf("Room %d", location.Room))
	}
	if strings.TrimSpace(location.Shard) != "" {
		parts = append(parts, fmt.Sprintf("Shard %s", location.Shard))
	}

	return strings.Join(parts, ", ")
}

// FormatTravelCommand builds the teleport relay string handed to the
// command-execution collaborator. The core only formats it; execution is
// the host's concern.
func FormatTravelCommand(location *model.Location) string {
	if location == nil {
		return ""
	}

	parts := make([]string, 0, 7)
	if strings.TrimSpace(location.DataCenter) != "" {
		parts = append(parts, location.DataCenter)
	}
	if strings.TrimSpace(location.World) != "" {
		parts = append(parts, location.World)
	}
	if strings.TrimSpace(location.District) != "" {
		cleaned := strings.TrimSpace(replaceFold(location.District, "(subdivision)", ""))
		if cleaned != "" {
			parts = append(parts, cleaned)
		}
	}

	parts = append(parts, fmt.Sprintf("Ward %d", location.Ward), fmt.Sprintf("Plot %d", location.Plot))
	if location.Apartment > 0 {
		parts = append(parts, fmt.Sprintf("Apartment %d", location.Apartment))
	}
	if location.Room > 0 {
		parts = append(parts, fmt.Sprintf("Room %d", location.Room))
	}

	return "/li " + strings.Join(parts, ", ")
}

// FormatStatusLine renders the right-hand column of the venue list: whether
// the venue is open and until when, or when it opens next.
func FormatStatusLine(v model.Venue, viewer *time.Location) string {
	if v.Resolution == nil {
		return config.FallbackNoOpenings
	}

	start := v.Resolution.Start.In(viewer)
	end := v.Resolution.End.In(viewer)
	if v.Resolution.IsNow {
		return fmt.Sprintf("Open until %s", end.Format(config.TimeFormatDisplay))
	}
	return fmt.Sprintf("Opens %s %s", start.Format("Mon"), start.Format(config.TimeFormatDisplay))
}

// FormatRelativeTime renders how long ago an instant was, for the
// "Updated ..." toolbar note.
func FormatRelativeTime(value, now time.Time) string {
	span := now.Sub(value)
	switch {
	case span.Seconds() < 45:
		return "just now"
	case span.Minutes() < 1.5:
		return "a minute ago"
	case span.Hours() < 1:
		return fmt.Sprintf("%.0f minutes ago", math.Round(span.Minutes()))
	case span.Hours() < 1.5:
		return "an hour ago"
	case span.Hours() < 24:
		return fmt.Sprintf("%.0f hours ago", math.Round(span.Hours()))
	case span.Hours() < 48:
		return "yesterday"
	default:
		return fmt.Sprintf("%.0f days ago", math.Round(span.Hours()/24))
	}
}

// replaceFold removes every case-insensitive occurrence of needle.
func replaceFold(s, needle, replacement string) string {
	lower := strings.ToLower(s)
	needle = strings.ToLower(needle)
	var b strings.Builder
	for {
		idx := strings.Index(lower, needle)
		if idx < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:idx])
		b.WriteString(replacement)
		s = s[idx+len(needle):]
		lower = lower[idx+len(needle):]
	}
}
