package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Venue is one catalogue record as served by the upstream API. Records are
// immutable for the duration of a fetch cycle and replaced wholesale on
// refresh; the engine never mutates them.
type Venue struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description []string    `json:"description"`
	Tags        []string    `json:"tags"`
	Location    *Location   `json:"location"`
	Schedule    []Schedule  `json:"schedule"`
	Resolution  *Resolution `json:"resolution"`
	Sfw         bool        `json:"sfw"`
	Website     string      `json:"website"`
	Discord     string      `json:"discord"`
	BannerURI   string      `json:"bannerUri"`
}

// Location is a hierarchical in-game housing address. Override, when present
// and non-empty, supersedes every structured field for display purposes.
type Location struct {
	DataCenter  string `json:"dataCenter"`
	World       string `json:"world"`
	District    string `json:"district"`
	Ward        int    `json:"ward"`
	Plot        int    `json:"plot"`
	Subdivision bool   `json:"subdivision"`
	Apartment   int    `json:"apartment"`
	Room        int    `json:"room"`
	Shard       string `json:"shard"`
	Override    string `json:"override"`
}

// Schedule is one recurring opening of a venue.
type Schedule struct {
	Day        Day         `json:"day"`
	Start      *Time       `json:"start"`
	End        *Time       `json:"end"`
	Interval   *Interval   `json:"interval"`
	Resolution *Resolution `json:"resolution"`
}

// Time is a wall-clock time in the venue's own time zone. NextDay marks a
// time that spills past midnight relative to the schedule's nominal day.
type Time struct {
	Hour     int    `json:"hour"`
	Minute   int    `json:"minute"`
	TimeZone string `json:"timeZone"`
	NextDay  bool   `json:"nextDay"`
}

// Resolution is the upstream-computed open/closed window for a venue or a
// single schedule entry, relative to the server's "now". IsWithinWeek is
// deliberately tri-state: nil means unknown.
type Resolution struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	IsNow        bool      `json:"isNow"`
	IsWithinWeek *bool     `json:"isWithinWeek"`
}

// Interval describes the recurrence cadence of a scheduled opening.
type Interval struct {
	Kind     IntervalKind `json:"intervalType"`
	Argument int          `json:"intervalArgument"`
}

// IntervalKind is the closed set of recurrence kinds the upstream emits.
type IntervalKind string

const (
	IntervalEveryXDays    IntervalKind = "EveryXDays"
	IntervalEveryXWeeks   IntervalKind = "EveryXWeeks"
	IntervalEveryXMonths  IntervalKind = "EveryXMonths"
	IntervalEveryXHours   IntervalKind = "EveryXHours"
	IntervalEveryXMinutes IntervalKind = "EveryXMinutes"
	IntervalOnce          IntervalKind = "Once"
)

// Day is a day of the week. The upstream serializes it either as a name
// ("Monday") or as a number (0 = Sunday), so unmarshalling accepts both.
type Day int

const (
	Sunday Day = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	// DayUnknown marks a day that could not be parsed; schedule rendering
	// falls back to the source zone's current weekday.
	DayUnknown Day = -1
)

var dayNames = map[string]Day{
	"sunday":    Sunday,
	"monday":    Monday,
	"tuesday":   Tuesday,
	"wednesday": Wednesday,
	"thursday":  Thursday,
	"friday":    Friday,
	"saturday":  Saturday,
}

// UnmarshalJSON accepts both `"Monday"` and `1`.
func (d *Day) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if day, ok := dayNames[strings.ToLower(strings.TrimSpace(name))]; ok {
			*d = day
		} else {
			*d = DayUnknown
		}
		return nil
	}

	var num int
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	if num < 0 || num > 6 {
		*d = DayUnknown
		return nil
	}
	*d = Day(num)
	return nil
}

// Weekday converts to the stdlib weekday. The second return is false for
// DayUnknown.
func (d Day) Weekday() (time.Weekday, bool) {
	if d < Sunday || d > Saturday {
		return time.Sunday, false
	}
	return time.Weekday(d), true
}

// String returns the English day name, or the numeric value for out-of-range
// days so malformed input stays visible in logs.
func (d Day) String() string {
	if wd, ok := d.Weekday(); ok {
		return wd.String()
	}
	return strconv.Itoa(int(d))
}

// DecodeVenues deserializes the upstream catalogue response.
func DecodeVenues(data []byte) ([]Venue, error) {
	var venues []Venue
	if err := json.Unmarshal(data, &venues); err != nil {
		return nil, err
	}
	return venues, nil
}
