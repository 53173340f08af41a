package ui

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/AEBus/ffxiv-venues-dalamud/internal/config"
	"github.com/AEBus/ffxiv-venues-dalamud/internal/engine"
	"github.com/AEBus/ffxiv-venues-dalamud/internal/model"
)

// directoryWidgets holds the live widgets of the main window so the refresh
// path can update them in place.
type directoryWidgets struct {
	searchEntry *widget.Entry
	tagsEntry   *widget.Entry

	regionSelect *widget.Select
	dcSelect     *widget.Select
	worldSelect  *widget.Select

	checkOpenNow *widget.Check
	checkWeek    *widget.Check
	checkSfw     *widget.Check
	checkNsfw    *widget.Check
	checkSmall   *widget.Check
	checkMedium  *widget.Check
	checkLarge   *widget.Check

	list        *widget.List
	statusLabel *widget.Label

	banner       *canvas.Image
	detailName   *widget.Label
	detailStatus *widget.Label
	detailAddr   *widget.Label
	detailTags   *widget.Label
	detailDesc   *widget.Label
	scheduleBox  *fyne.Container
	actionsBox   *fyne.Container
}

// ShowDirectoryWindow builds and shows the main venue browser window.
func (app *VenueDirectoryApp) ShowDirectoryWindow() {
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
	app.Window = w
	w.Resize(fyne.NewSize(config.DirectoryWinWidth, config.DirectoryWinHeight))
	w.SetMaster()

	dw := &directoryWidgets{}
	filtered := make([]model.Venue, 0)

	// refresh re-runs the query against the current catalogue and filter
	// state, keeps the selection stable, and redraws every pane.
	var refresh func()
	refresh = func() {
		filtered = engine.Query(app.CurrentVenues(), app.Filter, nil)
		app.SelectedID = engine.EnsureSelection(filtered, app.SelectedID)

		app.updateOptionLists(dw)
		dw.list.Refresh()
		app.updateStatusLabel(dw)
		app.updateDetailPane(dw, app.selectedVenue(filtered))
	}
	app.onDataChanged = refresh

	app.buildFilterWidgets(dw, func() { refresh() })
	app.buildDetailWidgets(dw, w)

	dw.list = widget.NewList(
		func() int { return len(filtered) },
		func() fyne.CanvasObject {
			name := widget.NewLabel("name")
			name.TextStyle = fyne.TextStyle{Bold: true}
			addr := widget.NewLabel("address")
			status := widget.NewLabel("status")
			return container.NewVBox(name, container.NewHBox(addr, status))
		},
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id >= len(filtered) {
				return
			}
			v := filtered[id]
			box := o.(*fyne.Container)
			box.Objects[0].(*widget.Label).SetText(engine.Normalize(v.Name))

			row := box.Objects[1].(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(engine.FormatAddress(v.Location))
			row.Objects[1].(*widget.Label).SetText(engine.FormatStatusLine(v, time.Local))
		},
	)
	dw.list.OnSelected = func(id widget.ListItemID) {
		if id >= len(filtered) {
			return
		}
		app.SelectedID = filtered[id].ID
		app.updateDetailPane(dw, app.selectedVenue(filtered))
	}

	dw.statusLabel = widget.NewLabel(app.GetMsg(config.TKeyLblLoading))
	dw.statusLabel.TextStyle = fyne.TextStyle{Italic: true}

	toolbar := container.NewHBox(
		widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnRefresh), theme.ViewRefreshIcon(), func() {
			go app.RefreshVenues(true)
		}),
		widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSettings), theme.SettingsIcon(), func() {
			app.ShowSettingsWindow()
		}),
		dw.statusLabel,
	)

	filterPanel := app.buildFilterPanel(dw)
	detailPanel := app.buildDetailPanel(dw)

	center := container.NewHSplit(dw.list, detailPanel)
	center.SetOffset(0.4)

	content := container.NewBorder(toolbar, nil, filterPanel, nil, center)
	w.SetContent(content)

	w.SetOnClosed(func() {
		app.onDataChanged = nil
		app.App.Quit()
	})

	refresh()
	w.Show()
}

// buildFilterWidgets constructs the filter controls and binds them to the
// filter state.
func (app *VenueDirectoryApp) buildFilterWidgets(dw *directoryWidgets, onChange func()) {
	anyLabel := app.GetMsg(config.TKeyLblAny)

	dw.searchEntry = widget.NewEntry()
	dw.searchEntry.PlaceHolder = app.GetMsg(config.TKeyLblSearchHint)
	dw.searchEntry.OnChanged = func(text string) {
		app.Filter.Search = text
		onChange()
	}

	dw.tagsEntry = widget.NewEntry()
	dw.tagsEntry.PlaceHolder = app.GetMsg(config.TKeyLblTagsHint)
	dw.tagsEntry.OnChanged = func(text string) {
		app.Filter.Tags = text
		onChange()
	}

	fromOption := func(selected string) string {
		if selected == anyLabel {
			return ""
		}
		return selected
	}

	dw.regionSelect = widget.NewSelect(append([]string{anyLabel}, engine.Regions...), func(s string) {
		app.Filter.Region = fromOption(s)
		// A region change invalidates narrower selections.
		app.Filter.DataCenter = ""
		app.Filter.World = ""
		onChange()
	})
	dw.regionSelect.SetSelected(anyLabel)

	dw.dcSelect = widget.NewSelect([]string{anyLabel}, func(s string) {
		if fromOption(s) == app.Filter.DataCenter {
			return
		}
		app.Filter.DataCenter = fromOption(s)
		app.Filter.World = ""
		onChange()
	})
	dw.dcSelect.SetSelected(anyLabel)

	dw.worldSelect = widget.NewSelect([]string{anyLabel}, func(s string) {
		if fromOption(s) == app.Filter.World {
			return
		}
		app.Filter.World = fromOption(s)
		onChange()
	})
	dw.worldSelect.SetSelected(anyLabel)

	dw.checkOpenNow = widget.NewCheck(app.GetMsg(config.TKeyLblOpenNow), func(b bool) {
		app.Filter.OpenNow = b
		onChange()
	})
	dw.checkOpenNow.Checked = app.Filter.OpenNow

	dw.checkWeek = widget.NewCheck(app.GetMsg(config.TKeyLblNextWeek), func(b bool) {
		app.Filter.WithinWeek = b
		onChange()
	})

	// The content toggles exclude each other; enabling one clears the other.
	dw.checkSfw = widget.NewCheck(app.GetMsg(config.TKeyLblSfwOnly), nil)
	dw.checkNsfw = widget.NewCheck(app.GetMsg(config.TKeyLblNsfwOnly), nil)
	dw.checkSfw.OnChanged = func(b bool) {
		app.Filter.SfwOnly = b
		if b && dw.checkNsfw.Checked {
			dw.checkNsfw.SetChecked(false)
			return
		}
		onChange()
	}
	dw.checkNsfw.OnChanged = func(b bool) {
		app.Filter.NsfwOnly = b
		if b && dw.checkSfw.Checked {
			dw.checkSfw.SetChecked(false)
			return
		}
		onChange()
	}

	// Size toggles never go all-dark: unchecking the last one reverts, since
	// an empty size set would hide every venue with a known plot.
	sizeChanged := func(check *widget.Check, target *bool) func(bool) {
		return func(b bool) {
			if !b && !app.anyOtherSizeEnabled(target) {
				check.SetChecked(true)
				return
			}
			*target = b
			onChange()
		}
	}
	dw.checkSmall = widget.NewCheck(app.GetMsg(config.TKeyLblSizeSmall), nil)
	dw.checkMedium = widget.NewCheck(app.GetMsg(config.TKeyLblSizeMedium), nil)
	dw.checkLarge = widget.NewCheck(app.GetMsg(config.TKeyLblSizeLarge), nil)
	dw.checkSmall.OnChanged = sizeChanged(dw.checkSmall, &app.Filter.SizeSmall)
	dw.checkMedium.OnChanged = sizeChanged(dw.checkMedium, &app.Filter.SizeMedium)
	dw.checkLarge.OnChanged = sizeChanged(dw.checkLarge, &app.Filter.SizeLarge)
	dw.checkSmall.Checked = app.Filter.SizeSmall
	dw.checkMedium.Checked = app.Filter.SizeMedium
	dw.checkLarge.Checked = app.Filter.SizeLarge
}

// anyOtherSizeEnabled reports whether a size toggle other than the one
// backing target is still on.
func (app *VenueDirectoryApp) anyOtherSizeEnabled(target *bool) bool {
	for _, candidate := range []*bool{&app.Filter.SizeSmall, &app.Filter.SizeMedium, &app.Filter.SizeLarge} {
		if candidate != target && *candidate {
			return true
		}
	}
	return false
}

// buildFilterPanel lays the filter widgets out in the left sidebar.
func (app *VenueDirectoryApp) buildFilterPanel(dw *directoryWidgets) fyne.CanvasObject {
	return container.NewVBox(
		dw.searchEntry,
		widget.NewLabel(app.GetMsg(config.TKeyLblTags)),
		dw.tagsEntry,
		widget.NewSeparator(),
		widget.NewLabel(app.GetMsg(config.TKeyLblRegion)),
		dw.regionSelect,
		widget.NewLabel(app.GetMsg(config.TKeyLblDataCenter)),
		dw.dcSelect,
		widget.NewLabel(app.GetMsg(config.TKeyLblWorld)),
		dw.worldSelect,
		widget.NewSeparator(),
		dw.checkOpenNow,
		dw.checkWeek,
		dw.checkSfw,
		dw.checkNsfw,
		widget.NewSeparator(),
		widget.NewLabel(app.GetMsg(config.TKeyLblHouseSize)),
		dw.checkSmall,
		dw.checkMedium,
		dw.checkLarge,
	)
}

// buildDetailWidgets constructs the right-hand detail pane widgets.
func (app *VenueDirectoryApp) buildDetailWidgets(dw *directoryWidgets, w fyne.Window) {
	dw.banner = canvas.NewImageFromResource(nil)
	dw.banner.FillMode = canvas.ImageFillContain
	dw.banner.SetMinSize(fyne.NewSize(config.BannerMaxWidth, config.BannerMinHeight))

	dw.detailName = widget.NewLabel("")
	dw.detailName.TextStyle = fyne.TextStyle{Bold: true}
	dw.detailName.Wrapping = fyne.TextWrapWord

	dw.detailStatus = widget.NewLabel("")
	dw.detailStatus.TextStyle = fyne.TextStyle{Italic: true}

	dw.detailAddr = widget.NewLabel("")
	dw.detailAddr.Wrapping = fyne.TextWrapWord

	dw.detailTags = widget.NewLabel("")
	dw.detailTags.Wrapping = fyne.TextWrapWord

	dw.detailDesc = widget.NewLabel("")
	dw.detailDesc.Wrapping = fyne.TextWrapWord

	dw.scheduleBox = container.NewVBox()
	dw.actionsBox = container.NewHBox()
}

// buildDetailPanel assembles the detail pane layout.
func (app *VenueDirectoryApp) buildDetailPanel(dw *directoryWidgets) fyne.CanvasObject {
	return container.NewVScroll(container.NewVBox(
		dw.banner,
		dw.detailName,
		dw.detailStatus,
		dw.detailAddr,
		dw.detailTags,
		widget.NewSeparator(),
		widget.NewLabel(app.GetMsg(config.TKeyLblSchedule)),
		dw.scheduleBox,
		widget.NewSeparator(),
		dw.detailDesc,
		dw.actionsBox,
	))
}

// updateOptionLists rebuilds the cascading data-center and world dropdowns
// from the current catalogue, preserving valid selections.
func (app *VenueDirectoryApp) updateOptionLists(dw *directoryWidgets) {
	anyLabel := app.GetMsg(config.TKeyLblAny)
	venues := app.CurrentVenues()

	dcs := engine.RegionDataCenters(engine.DataCenters(venues), app.Filter.Region)
	dw.dcSelect.Options = append([]string{anyLabel}, dcs...)
	if app.Filter.DataCenter == "" {
		dw.dcSelect.Selected = anyLabel
	}
	dw.dcSelect.Refresh()

	worlds := engine.Worlds(venues, app.Filter.Region, app.Filter.DataCenter)
	dw.worldSelect.Options = append([]string{anyLabel}, worlds...)
	if app.Filter.World == "" {
		dw.worldSelect.Selected = anyLabel
	}
	dw.worldSelect.Refresh()
}

// updateStatusLabel rewrites the toolbar note with the result count and the
// age of the catalogue.
func (app *VenueDirectoryApp) updateStatusLabel(dw *directoryWidgets) {
	app.VenuesMut.RLock()
	updated := app.LastUpdated
	lastErr := app.LastError
	app.VenuesMut.RUnlock()

	if updated.IsZero() {
		if lastErr != nil {
			dw.statusLabel.SetText(app.GetMsg(config.TKeyNotifLoadError))
		} else {
			dw.statusLabel.SetText(app.GetMsg(config.TKeyLblLoading))
		}
		return
	}

	count := len(engine.Query(app.CurrentVenues(), app.Filter, nil))
	dw.statusLabel.SetText(fmt.Sprintf("%s · %s %s",
		app.GetMsgCount(config.TKeyLblVenueCount, count),
		app.GetMsg(config.TKeyLblUpdated),
		engine.FormatRelativeTime(updated, app.Clock.Now())))
}

func (app *VenueDirectoryApp) selectedVenue(filtered []model.Venue) *model.Venue {
	for i := range filtered {
		if filtered[i].ID == app.SelectedID {
			return &filtered[i]
		}
	}
	return nil
}

// updateDetailPane redraws the right-hand pane for the selected venue.
func (app *VenueDirectoryApp) updateDetailPane(dw *directoryWidgets, v *model.Venue) {
	if v == nil {
		dw.banner.Resource = nil
		dw.banner.Refresh()
		dw.detailName.SetText(app.GetMsg(config.TKeyLblSelectVenue))
		dw.detailStatus.SetText("")
		dw.detailAddr.SetText("")
		dw.detailTags.SetText("")
		dw.detailDesc.SetText("")
		dw.scheduleBox.Objects = nil
		dw.scheduleBox.Refresh()
		dw.actionsBox.Objects = nil
		dw.actionsBox.Refresh()
		return
	}

	dw.banner.Resource = app.bannerResource(*v)
	dw.banner.Refresh()

	dw.detailName.SetText(engine.Normalize(v.Name))
	dw.detailStatus.SetText(engine.FormatStatusLine(*v, time.Local))
	dw.detailAddr.SetText(engine.FormatAddressDetailed(v.Location))

	if len(v.Tags) > 0 {
		dw.detailTags.SetText(strings.Join(v.Tags, " · "))
	} else {
		dw.detailTags.SetText("")
	}

	var desc strings.Builder
	for i, para := range v.Description {
		if clean := engine.Sanitize(para); clean != "" {
			if i > 0 {
				desc.WriteString("\n\n")
			}
			desc.WriteString(clean)
		}
	}
	dw.detailDesc.SetText(desc.String())
	if !v.Sfw {
		dw.detailDesc.SetText(app.GetMsg(config.TKeyLblNsfwWarning) + "\n\n" + desc.String())
	}

	app.rebuildScheduleRows(dw, *v)
	app.rebuildActions(dw, *v)
}

// rebuildScheduleRows renders one row per opening, localized to the
// viewer's zone.
func (app *VenueDirectoryApp) rebuildScheduleRows(dw *directoryWidgets, v model.Venue) {
	nowUTC := app.Clock.Now().UTC()
	rows := make([]fyne.CanvasObject, 0, len(v.Schedule))

	for _, sched := range engine.SortedSchedule(v.Schedule) {
		var localDay *time.Weekday
		if _, weekday, err := engine.LocalizeTime(sched.Start, sched.Day, time.Local, nowUTC); err == nil {
			localDay = &weekday
		}

		label := engine.FormatScheduleLabel(sched, localDay)
		rendered := engine.FormatLocalTime(sched.Start, sched.Day, time.Local, nowUTC)
		if sched.End != nil {
			rendered += " - " + engine.FormatLocalTime(sched.End, sched.Day, time.Local, nowUTC)
		}

		row := widget.NewLabel(fmt.Sprintf("%s: %s", label, rendered))
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		rows = append(rows, widget.NewLabel(config.FallbackNoOpenings))
	}

	dw.scheduleBox.Objects = rows
	dw.scheduleBox.Refresh()
}

// rebuildActions renders the per-venue action buttons.
func (app *VenueDirectoryApp) rebuildActions(dw *directoryWidgets, v model.Venue) {
	w := app.Window
	actions := make([]fyne.CanvasObject, 0, 5)

	if v.Location != nil {
		actions = append(actions,
			widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCopyAddress), theme.ContentCopyIcon(), func() {
				w.Clipboard().SetContent(engine.FormatAddressDetailed(v.Location))
				app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifCopied)))
			}),
			widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnTravel), theme.NavigateNextIcon(), func() {
				w.Clipboard().SetContent(engine.FormatTravelCommand(v.Location))
				app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifCopied)))
			}),
		)
	}

	openLink := func(raw string) {
		parsed, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || !parsed.IsAbs() {
			slog.Warn(config.ErrInvalidURL,
				config.LogKeyComponent, config.CompUI,
				config.LogKeyURL, raw)
			return
		}
		_ = app.App.OpenURL(parsed)
	}

	if strings.TrimSpace(v.Website) != "" {
		actions = append(actions, widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnWebsite), theme.ComputerIcon(), func() {
			openLink(v.Website)
		}))
	}
	if strings.TrimSpace(v.Discord) != "" {
		actions = append(actions, widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnDiscord), theme.MailSendIcon(), func() {
			openLink(v.Discord)
		}))
	}

	if len(v.Schedule) > 0 {
		actions = append(actions, widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnExport), theme.DownloadIcon(), func() {
			app.exportSchedule(v, w)
		}))
	}

	dw.actionsBox.Objects = actions
	dw.actionsBox.Refresh()
}

// exportSchedule writes the venue's openings as an .ics file chosen by the
// user.
func (app *VenueDirectoryApp) exportSchedule(v model.Venue, w fyne.Window) {
	data, err := engine.BuildScheduleCalendar(v, app.Clock.Now().UTC())
	if err != nil {
		dialog.ShowError(err, w)
		return
	}

	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer func() { _ = writer.Close() }()

		if _, err := writer.Write(data); err != nil {
			dialog.ShowError(err, w)
			return
		}
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifExported)))
	}, w)
	d.SetFileName(engine.CalendarFileName(v))
	d.Show()
}

// bannerResource fetches (or starts fetching) the selected venue's banner.
func (app *VenueDirectoryApp) bannerResource(v model.Venue) fyne.Resource {
	handle := app.Banners.GetOrFetch(app.Ctx, engine.BannerKey(v))
	if handle == nil {
		return nil
	}
	if res, ok := handle.(interface{ Resource() fyne.Resource }); ok {
		return res.Resource()
	}
	return nil
}
