package engine

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/AEBus/ffxiv-venues-dalamud/internal/config"
	"github.com/AEBus/ffxiv-venues-dalamud/internal/model"
)

// BuildScheduleCalendar renders a venue's recurring openings as an
// iCalendar document. Each schedule entry becomes one VEVENT anchored on
// its next occurrence after now, carrying an RRULE for the recurring
// cadence. Entries whose start time cannot be resolved are skipped.
func BuildScheduleCalendar(v model.Venue, nowUTC time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(nowUTC)

	skipped := 0
	for i, sched := range v.Schedule {
		event, err := scheduleEvent(v, sched, i, nowUTC)
		if err != nil {
			skipped++
			slog.Debug(config.MsgScheduleSkipped,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyVenue, v.ID,
				config.LogKeyError, err)
			continue
		}
		event.Props.Set(dtStampProp)
		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		return nil, fmt.Errorf("%s: %q", config.ErrNoSchedule, v.Name)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Info(config.MsgExported,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyVenue, v.ID,
		config.LogKeyCount, len(cal.Children),
		config.LogKeySkipped, skipped)
	return buf.Bytes(), nil
}

// scheduleEvent builds one VEVENT for a single schedule entry.
func scheduleEvent(v model.Venue, sched model.Schedule, index int, nowUTC time.Time) (*ical.Event, error) {
	if sched.Start == nil {
		return nil, fmt.Errorf("%s: entry %d", config.ErrNoStartTime, index)
	}

	start, _, err := LocalizeTime(sched.Start, sched.Day, time.UTC, nowUTC)
	if err != nil {
		return nil, err
	}

	end := start.Add(config.DefaultEventDuration)
	if sched.End != nil {
		if resolved, _, endErr := LocalizeTime(sched.End, sched.Day, time.UTC, nowUTC); endErr == nil {
			if resolved.Before(start) {
				resolved = resolved.AddDate(0, 0, 1)
			}
			end = resolved
		}
	}

	event := ical.NewEvent()
	event.Props.SetText(config.PropUID,
		fmt.Sprintf(config.FormatUID, v.ID, index, config.ICalDomain))
	event.Props.SetText(config.PropSummary, Normalize(v.Name))

	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDateTime(start)
	event.Props.Set(dtStartProp)

	dtEndProp := ical.NewProp(config.PropDTEnd)
	dtEndProp.SetDateTime(end)
	event.Props.Set(dtEndProp)

	if rule := recurrenceRule(sched.Interval); rule != "" {
		event.Props.SetText(config.PropRRule, rule)
	}
	return event, nil
}

// recurrenceRule maps a recurrence cadence onto an RRULE value. A nil
// interval defaults to weekly, matching how schedules read in the
// directory. One-time openings carry no rule.
func recurrenceRule(iv *model.Interval) string {
	kind := model.IntervalEveryXWeeks
	arg := 1
	if iv != nil {
		kind = iv.Kind
		arg = iv.Argument
	}
	if arg < 1 {
		arg = 1
	}

	var freq string
	switch kind {
	case model.IntervalEveryXDays:
		freq = "DAILY"
	case model.IntervalEveryXWeeks:
		freq = "WEEKLY"
	case model.IntervalEveryXMonths:
		freq = "MONTHLY"
	case model.IntervalEveryXHours:
		freq = "HOURLY"
	case model.IntervalEveryXMinutes:
		freq = "MINUTELY"
	case model.IntervalOnce:
		return ""
	default:
		return ""
	}

	rule := "FREQ=" + freq
	if arg > 1 {
		rule += ";INTERVAL=" + fmt.Sprint(arg)
	}
	return rule
}

// CalendarFileName derives a filesystem-safe .ics name from the venue name.
func CalendarFileName(v model.Venue) string {
	name := strings.TrimSpace(Normalize(v.Name))
	if name == "" {
		name = v.ID
	}
	var b strings.Builder
	lastDash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = config.ICalDomain
	}
	return out + config.ExtICS
}
