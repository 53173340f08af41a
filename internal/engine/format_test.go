package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AEBus/ffxiv-venues-dalamud/internal/config"
	"github.com/AEBus/ffxiv-venues-dalamud/internal/model"
)

func TestFormatAddress(t *testing.T) {
	tests := []struct {
		name     string
		location *model.Location
		expected string
	}{
		{
			name:     "Nil location",
			location: nil,
			expected: config.FallbackLocation,
		},
		{
			name: "Structured address",
			location: &model.Location{
				DataCenter: "Aether", World: "Gilgamesh",
				District: "Mist", Ward: 4, Plot: 2,
			},
			expected: "Aether, Gilgamesh, Mist, Ward 4, Plot 2",
		},
		{
			name: "Override supersedes everything",
			location: &model.Location{
				DataCenter: "Aether", World: "Gilgamesh",
				Override: "Ask at the Limsa aetheryte",
			},
			expected: "Ask at the Limsa aetheryte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatAddress(tt.location))
		})
	}
}

func TestFormatAddressDetailed(t *testing.T) {
	t.Run("Full address with subdivision and room", func(t *testing.T) {
		loc := &model.Location{
			DataCenter: "Chaos", World: "Omega", District: "The Goblet",
			Ward: 11, Plot: 5, Subdivision: true, Room: 3,
		}
		assert.Equal(t, "Chaos, Omega, The Goblet, Ward 11 (Subdivision), Plot 5, Room 3",
			FormatAddressDetailed(loc))
	})

	t.Run("Blank fields are omitted", func(t *testing.T) {
		loc := &model.Location{World: "Omega", Ward: 11, Plot: 5}
		assert.Equal(t, "Omega, Ward 11, Plot 5", FormatAddressDetailed(loc))
	})

	t.Run("Apartment and shard", func(t *testing.T) {
		loc := &model.Location{
			DataCenter: "Materia", World: "Ravana", District: "Shirogane",
			Ward: 2, Plot: 1, Apartment: 44, Shard: "2",
		}
		assert.Equal(t, "Materia, Ravana, Shirogane, Ward 2, Plot 1, Apartment 44, Shard 2",
			FormatAddressDetailed(loc))
	})
}

func TestFormatTravelCommand(t *testing.T) {
	t.Run("Nil location yields nothing", func(t *testing.T) {
		assert.Equal(t, "", FormatTravelCommand(nil))
	})

	t.Run("Standard plot", func(t *testing.T) {
		loc := &model.Location{
			DataCenter: "Aether", World: "Gilgamesh",
			District: "Mist", Ward: 4, Plot: 2,
		}
		assert.Equal(t, "/li Aether, Gilgamesh, Mist, Ward 4, Plot 2", FormatTravelCommand(loc))
	})

	t.Run("Subdivision suffix is stripped from the district", func(t *testing.T) {
		loc := &model.Location{
			DataCenter: "Chaos", World: "Omega",
			District: "The Goblet (Subdivision)", Ward: 11, Plot: 5,
		}
		assert.Equal(t, "/li Chaos, Omega, The Goblet, Ward 11, Plot 5", FormatTravelCommand(loc))
	})
}

func TestFormatStatusLine(t *testing.T) {
	t.Run("No resolution", func(t *testing.T) {
		assert.Equal(t, config.FallbackNoOpenings, FormatStatusLine(model.Venue{}, time.UTC))
	})

	t.Run("Open now shows the closing time", func(t *testing.T) {
		v := model.Venue{Resolution: &model.Resolution{
			Start: time.Date(2026, 3, 6, 20, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 3, 6, 23, 30, 0, 0, time.UTC),
			IsNow: true,
		}}
		assert.Equal(t, "Open until 23:30", FormatStatusLine(v, time.UTC))
	})

	t.Run("Closed shows the next opening", func(t *testing.T) {
		v := model.Venue{Resolution: &model.Resolution{
			Start: time.Date(2026, 3, 6, 20, 0, 0, 0, time.UTC), // a Friday
			End:   time.Date(2026, 3, 6, 23, 30, 0, 0, time.UTC),
		}}
		assert.Equal(t, "Opens Fri 20:00", FormatStatusLine(v, time.UTC))
	})
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		ago      time.Duration
		expected string
	}{
		{"Just now", 10 * time.Second, "just now"},
		{"Boundary at 45 seconds", 45 * time.Second, "a minute ago"},
		{"A minute ago", 80 * time.Second, "a minute ago"},
		{"Minutes ago", 10 * time.Minute, "10 minutes ago"},
		{"An hour ago", 70 * time.Minute, "an hour ago"},
		{"Hours ago", 5 * time.Hour, "5 hours ago"},
		{"Yesterday", 30 * time.Hour, "yesterday"},
		{"Days ago", 96 * time.Hour, "4 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatRelativeTime(now.Add(-tt.ago), now))
		})
	}
}
