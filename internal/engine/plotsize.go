package engine

import (
	"strings"

	"github.com/AEBus/ffxiv-venues-dalamud/internal/model"
)

// PlotSize classifies a housing plot.
type PlotSize int

const (
	PlotSmall PlotSize = iota
	PlotMedium
	PlotLarge
)

// String returns the human label used by the UI filter toggles.
func (s PlotSize) String() string {
	switch s {
	case PlotSmall:
		return "Small"
	case PlotMedium:
		return "Medium"
	case PlotLarge:
		return "Large"
	default:
		return "Unknown"
	}
}

// Each district has a fixed 60-slot layout; the second 30 plots mirror the
// first 30 (the subdivision). 0 = Small, 1 = Medium, 2 = Large.
var (
	plotSizesMist = parsePlotSizes(
		"1,2,0,1,2,1,1,0,0,0,0,0,0,1,2,0,0,0,0,0,0,0,0,0,0,0,0,0,1,1," +
			"1,2,0,1,2,1,1,0,0,0,0,0,0,1,2,0,0,0,0,0,0,0,0,0,0,0,0,0,1,1")

	plotSizesLavenderBeds = parsePlotSizes(
		"1,0,2,0,1,2,0,0,0,0,1,0,0,0,0,1,0,0,0,0,1,0,0,0,0,0,1,2,0,1," +
			"1,0,2,0,1,2,0,0,0,0,1,0,0,0,0,1,0,0,0,0,1,0,0,0,0,0,1,2,0,1")

	plotSizesGoblet = parsePlotSizes(
		"0,0,0,1,2,1,0,1,0,0,1,1,2,0,0,0,0,0,1,0,0,0,0,0,1,0,0,0,0,2," +
			"0,0,0,1,2,1,0,1,0,0,1,1,2,0,0,0,0,0,1,0,0,0,0,0,1,0,0,0,0,2")

	plotSizesShirogane = parsePlotSizes(
		"1,0,0,0,0,0,2,1,0,0,0,0,1,0,1,2,0,0,1,0,0,0,0,1,0,0,0,1,0,2," +
			"1,0,0,0,0,0,2,1,0,0,0,0,1,0,1,2,0,0,1,0,0,0,0,1,0,0,0,1,0,2")

	plotSizesEmpyreum = parsePlotSizes(
		"0,1,0,0,0,0,1,1,0,0,0,2,0,0,0,0,1,1,0,0,1,2,0,0,0,1,0,0,0,2," +
			"0,1,0,0,0,0,1,1,0,0,0,2,0,0,0,0,1,1,0,0,1,2,0,0,0,1,0,0,0,2")

	districtPlotSizes = map[string][]PlotSize{
		"mist":          plotSizesMist,
		"lavender beds": plotSizesLavenderBeds,
		"goblet":        plotSizesGoblet,
		"shirogane":     plotSizesShirogane,
		"empyreum":      plotSizesEmpyreum,
	}
)

// ResolvePlotSize looks up the size of a venue's housing plot in the static
// per-district tables. The second return is false when the location is
// absent, has no plot, names an unknown district, or the plot index falls
// outside the district table.
func ResolvePlotSize(location *model.Location) (PlotSize, bool) {
	if location == nil || location.Plot <= 0 {
		return 0, false
	}

	district := normalizeDistrict(location.District)
	sizes, ok := districtPlotSizes[district]
	if !ok {
		return 0, false
	}

	index := location.Plot - 1
	if index >= len(sizes) {
		return 0, false
	}
	return sizes[index], true
}

// normalizeDistrict trims, strips a leading "the " and lower-cases, so that
// "The Goblet" and "goblet" address the same table.
func normalizeDistrict(district string) string {
	normalized := strings.TrimSpace(district)
	if len(normalized) >= 4 && strings.EqualFold(normalized[:4], "the ") {
		normalized = normalized[4:]
	}
	return strings.ToLower(normalized)
}

func parsePlotSizes(csv string) []PlotSize {
	fields := strings.Split(csv, ",")
	sizes := make([]PlotSize, 0, len(fields))
	for _, f := range fields {
		switch strings.TrimSpace(f) {
		case "0":
			sizes = append(sizes, PlotSmall)
		case "1":
			sizes = append(sizes, PlotMedium)
		case "2":
			sizes = append(sizes, PlotLarge)
		}
	}
	return sizes
}
