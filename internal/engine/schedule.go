package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"
	// Embed the IANA database so schedule localization works on hosts
	// without a system zoneinfo directory.
	_ "time/tzdata"

	"github.com/AEBus/ffxiv-venues-dalamud/internal/config"
	"github.com/AEBus/ffxiv-venues-dalamud/internal/model"
)

// windowsTimeZones maps platform-native (Windows display) identifiers that
// older catalogue records carry to IANA identifiers the Go runtime can load.
var windowsTimeZones = map[string]string{
	"eastern standard time":          "America/New_York",
	"central standard time":          "America/Chicago",
	"mountain standard time":         "America/Denver",
	"pacific standard time":          "America/Los_Angeles",
	"alaskan standard time":          "America/Anchorage",
	"hawaiian standard time":         "Pacific/Honolulu",
	"atlantic standard time":         "America/Halifax",
	"gmt standard time":              "Europe/London",
	"greenwich standard time":        "Atlantic/Reykjavik",
	"w. europe standard time":        "Europe/Berlin",
	"central europe standard time":   "Europe/Budapest",
	"central european standard time": "Europe/Warsaw",
	"e. europe standard time":        "Europe/Chisinau",
	"russian standard time":          "Europe/Moscow",
	"tokyo standard time":            "Asia/Tokyo",
	"japan standard time":            "Asia/Tokyo",
	"aus eastern standard time":      "Australia/Sydney",
	"cen. australia standard time":   "Australia/Adelaide",
	"w. australia standard time":     "Australia/Perth",
	"new zealand standard time":      "Pacific/Auckland",
	"utc":                            "UTC",
}

// timeZoneAbbreviations maps long timezone display names to the common
// abbreviation shown next to raw schedule times.
var timeZoneAbbreviations = map[string]string{
	"coordinated universal time":     "UTC",
	"greenwich mean time":            "GMT",
	"eastern standard time":          "EST",
	"eastern daylight time":          "EDT",
	"central standard time":          "CST",
	"central daylight time":          "CDT",
	"mountain standard time":         "MST",
	"mountain daylight time":         "MDT",
	"pacific standard time":          "PST",
	"pacific daylight time":          "PDT",
	"alaskan standard time":          "AKST",
	"alaskan daylight time":          "AKDT",
	"hawaiian standard time":         "HST",
	"atlantic standard time":         "AST",
	"atlantic daylight time":         "ADT",
	"greenwich standard time":        "GMT",
	"gmt standard time":              "GMT",
	"gmt daylight time":              "GMT",
	"central european standard time": "CET",
	"central european summer time":   "CEST",
	"w. europe standard time":        "CET",
	"w. europe daylight time":        "CEST",
	"e. europe standard time":        "EET",
	"e. europe daylight time":        "EEST",
	"russian standard time":          "MSK",
	"japan standard time":            "JST",
	"aus eastern standard time":      "AEST",
	"aus eastern daylight time":      "AEDT",
	"cen. australia standard time":   "ACST",
	"cen. australia daylight time":   "ACDT",
	"w. australia standard time":     "AWST",
	"new zealand standard time":      "NZST",
	"new zealand daylight time":      "NZDT",
}

// ResolveTimeZone resolves a stored timezone identifier to a concrete
// location. IANA identifiers load directly; platform-native identifiers go
// through the fixed conversion table. Failure is recoverable: callers fall
// back to a raw, non-localized rendering.
func ResolveTimeZone(id string) (*time.Location, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, fmt.Errorf("%s: empty identifier", config.ErrTimeZone)
	}

	if loc, err := time.LoadLocation(trimmed); err == nil {
		return loc, nil
	}

	if iana, ok := windowsTimeZones[strings.ToLower(trimmed)]; ok {
		if loc, err := time.LoadLocation(iana); err == nil {
			return loc, nil
		}
	}

	return nil, fmt.Errorf("%s: %q", config.ErrTimeZone, trimmed)
}

// LocalizeTime turns a stored schedule time into the viewer's local clock.
// It finds the next date on/after "now" in the source zone that falls on the
// requested day (same day counts), applies the stored hour and minute, adds
// a day when the time spills past midnight, and converts the result to the
// viewer's zone. The returned weekday is the viewer-local day of week.
func LocalizeTime(t *model.Time, day model.Day, viewer *time.Location, nowUTC time.Time) (time.Time, time.Weekday, error) {
	if t == nil {
		return time.Time{}, time.Sunday, fmt.Errorf("%s: no time record", config.ErrTimeZone)
	}

	source, err := ResolveTimeZone(t.TimeZone)
	if err != nil {
		return time.Time{}, time.Sunday, err
	}

	sourceNow := nowUTC.In(source)
	targetDay, ok := day.Weekday()
	if !ok {
		targetDay = sourceNow.Weekday()
	}

	daysAhead := (int(targetDay) - int(sourceNow.Weekday()) + config.DaysPerWeek) % config.DaysPerWeek
	dayOffset := daysAhead
	if t.NextDay {
		dayOffset++
	}

	local := time.Date(
		sourceNow.Year(), sourceNow.Month(), sourceNow.Day()+dayOffset,
		t.Hour, t.Minute, 0, 0, source,
	).In(viewer)

	return local, local.Weekday(), nil
}

// FormatLocalTime renders a schedule time in the viewer's zone, falling back
// to the raw source rendering when the timezone cannot be resolved.
func FormatLocalTime(t *model.Time, day model.Day, viewer *time.Location, nowUTC time.Time) string {
	local, _, err := LocalizeTime(t, day, viewer, nowUTC)
	if err != nil {
		return FormatRawTime(t, nowUTC)
	}
	return local.Format(config.TimeFormatDisplay)
}

// FormatRawTime renders a schedule time without localization: raw
// hour:minute, a best-effort timezone abbreviation, and a next-day marker.
func FormatRawTime(t *model.Time, nowUTC time.Time) string {
	if t == nil {
		return config.FallbackTimeDisplay
	}

	suffix := ""
	if t.NextDay {
		suffix = config.NextDaySuffix
	}
	return fmt.Sprintf("%02d:%02d %s%s", t.Hour, t.Minute, TimeZoneAbbreviation(t.TimeZone, nowUTC), suffix)
}

// FormatIntervalLabel renders a recurrence cadence as a human label.
// An argument of one or less collapses to the bare unit name.
func FormatIntervalLabel(interval *model.Interval) string {
	if interval == nil {
		return "Unknown"
	}

	arg := interval.Argument
	switch interval.Kind {
	case model.IntervalEveryXWeeks:
		return intervalLabel(arg, "Weekly", "weeks")
	case model.IntervalEveryXDays:
		return intervalLabel(arg, "Daily", "days")
	case model.IntervalEveryXMonths:
		return intervalLabel(arg, "Monthly", "months")
	case model.IntervalEveryXHours:
		return intervalLabel(arg, "Hourly", "hours")
	case model.IntervalEveryXMinutes:
		return intervalLabel(arg, "Every minute", "minutes")
	case model.IntervalOnce:
		return "One-time"
	case "":
		return "Unknown"
	default:
		// Forward compatibility: render unrecognized kinds verbatim rather
		// than hiding the schedule entry.
		if arg > 0 {
			return fmt.Sprintf("%s (%d)", interval.Kind, arg)
		}
		return string(interval.Kind)
	}
}

func intervalLabel(arg int, single, unit string) string {
	if arg <= 1 {
		return single
	}
	return fmt.Sprintf("Every %d %s", arg, unit)
}

// FormatScheduleLabel renders the left-hand schedule row label. A daily
// cadence is exactly "Daily" regardless of day; anything else reads
// "{interval} on {pluralized day}". localDay, when known, names the
// viewer-local day, which may differ from the stored day after conversion.
func FormatScheduleLabel(sched model.Schedule, localDay *time.Weekday) string {
	interval := FormatIntervalLabel(sched.Interval)
	if strings.EqualFold(interval, "Daily") {
		return "Daily"
	}

	var dayName string
	if localDay != nil {
		dayName = localDay.String()
	} else {
		dayName = sched.Day.String()
	}
	return fmt.Sprintf("%s on %s", interval, PluralizeDay(dayName))
}

// SortedSchedule returns the opening entries in display order: day of week
// first, then start hour. Entries without a start time sort after timed
// entries on the same day. The input slice is left untouched.
func SortedSchedule(entries []model.Schedule) []model.Schedule {
	sorted := make([]model.Schedule, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if (a.Start == nil) != (b.Start == nil) {
			return b.Start == nil
		}
		if a.Start == nil {
			return false
		}
		return a.Start.Hour < b.Start.Hour
	})
	return sorted
}

// PluralizeDay appends "s" only to names ending in "day", leaving malformed
// or numeric day renderings untouched.
func PluralizeDay(name string) string {
	if strings.HasSuffix(strings.ToLower(name), "day") {
		return name + "s"
	}
	return name
}

// TimeZoneAbbreviation returns a short display form for a timezone
// identifier at a reference instant: common long display names map through
// the fixed table, short zone names pass through, and anything else is
// synthesized from the name's initials. Unresolvable identifiers come back
// verbatim so the raw rendering stays informative.
func TimeZoneAbbreviation(id string, refUTC time.Time) string {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "UTC"
	}
	if strings.EqualFold(trimmed, "UTC") || strings.EqualFold(trimmed, "Etc/UTC") {
		return "UTC"
	}
	if strings.EqualFold(trimmed, "GMT") || strings.EqualFold(trimmed, "Etc/GMT") {
		return "GMT"
	}

	loc, err := ResolveTimeZone(trimmed)
	if err != nil {
		return trimmed
	}

	name, _ := refUTC.In(loc).Zone()
	if abbr, ok := timeZoneAbbreviations[strings.ToLower(name)]; ok {
		return abbr
	}
	if isOffsetZoneName(name) {
		// Zones without a letter abbreviation (e.g. "+08"): synthesize one
		// from the identifier, e.g. "Asia/Ho_Chi_Minh" -> "HCM".
		display := strings.ReplaceAll(lastPathSegment(trimmed), "_", " ")
		return AbbreviateZoneName(display)
	}
	if strings.Contains(name, " ") {
		return AbbreviateZoneName(name)
	}
	return name
}

// AbbreviateZoneName synthesizes an abbreviation from the first letter of
// each word, skipping the filler words "Standard", "Daylight", "Summer" and
// "Time". Names with no usable words come back unchanged.
func AbbreviateZoneName(name string) string {
	parts := strings.Fields(name)
	letters := make([]rune, 0, len(parts))
	for _, part := range parts {
		if strings.EqualFold(part, "Standard") ||
			strings.EqualFold(part, "Daylight") ||
			strings.EqualFold(part, "Summer") ||
			strings.EqualFold(part, "Time") {
			continue
		}
		runes := []rune(part)
		letters = append(letters, []rune(strings.ToUpper(string(runes[0])))...)
	}

	if len(letters) == 0 {
		return name
	}
	return string(letters)
}

func isOffsetZoneName(name string) bool {
	return name == "" || name[0] == '+' || name[0] == '-'
}

func lastPathSegment(id string) string {
	if idx := strings.LastIndex(id, "/"); idx >= 0 {
		return id[idx+1:]
	}
	return id
}
