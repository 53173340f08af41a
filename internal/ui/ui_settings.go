package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/zalando/go-keyring"

	"github.com/AEBus/ffxiv-venues-dalamud/internal/config"
)

// settingsWidgets holds references to UI elements to simplify data retrieval during save.
type settingsWidgets struct {
	langSelect    *widget.Select
	urlEntry      *widget.Entry
	tokenEntry    *widget.Entry
	entryInterval *NumericalEntry
}

// ShowSettingsWindow displays the configuration dialog.
func (app *VenueDirectoryApp) ShowSettingsWindow() {
	if app.settingsWindow != nil {
		slog.Debug("Settings window already open, requesting focus", config.LogKeyComponent, config.CompUISet)
		app.settingsWindow.RequestFocus()
		return
	}

	slog.Info("Opening settings window", config.LogKeyComponent, config.CompUISet)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinSettings))
	app.settingsWindow = w

	sw := &settingsWidgets{}

	// --- 1. Language ---
	sw.langSelect = widget.NewSelect(app.SupportedLanguages, nil)
	sw.langSelect.SetSelected(app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage))

	// --- 2. Catalogue Section ---
	sw.urlEntry = widget.NewEntry()
	sw.urlEntry.SetText(app.Preferences.StringWithFallback(config.PrefAPIBaseURL, config.DefaultAPIBaseURL))
	sw.urlEntry.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(app.GetMsg(config.TKeyErrURLRequired))
		}
		parsed, err := url.Parse(strings.TrimSpace(s))
		if err != nil || !parsed.IsAbs() {
			return errors.New(app.GetMsg(config.TKeyErrURLScheme))
		}
		if parsed.Scheme != config.SchemeHTTP && parsed.Scheme != config.SchemeHTTPS {
			return errors.New(app.GetMsg(config.TKeyErrURLScheme))
		}
		return nil
	}

	sw.tokenEntry = widget.NewPasswordEntry()
	if token := app.APIToken(); token != "" {
		sw.tokenEntry.SetText(token)
	}

	itemURL := widget.NewFormItem(app.GetMsg(config.TKeyLblAPIBaseURL), sw.urlEntry)
	itemURL.HintText = app.GetMsg(config.TKeyHelpAPIBaseURL)
	itemToken := widget.NewFormItem(app.GetMsg(config.TKeyLblAPIToken), sw.tokenEntry)
	itemToken.HintText = app.GetMsg(config.TKeyHelpAPIToken)

	catalogueForm := widget.NewForm(itemURL, itemToken)
	catalogueCard := widget.NewCard(app.GetMsg(config.TKeyLblCatalogue), "", catalogueForm)

	// --- 3. General Section ---
	sw.entryInterval = NewNumericalEntry()
	sw.entryInterval.SetText(strconv.Itoa(app.Preferences.IntWithFallback(config.PrefInterval, config.DefaultRefreshMin)))

	itemLang := widget.NewFormItem(app.GetMsg(config.TKeyLblLanguage), sw.langSelect)
	itemLang.HintText = app.GetMsg(config.TKeyHelpLanguage)

	widInterval := container.NewBorder(nil, nil, nil, widget.NewLabel(app.GetMsg(config.TKeyLblMinutes)), sw.entryInterval)
	itemInterval := widget.NewFormItem(app.GetMsg(config.TKeyLblRefresh), widInterval)
	itemInterval.HintText = app.GetMsg(config.TKeyHelpInterval)

	generalForm := widget.NewForm(itemLang, itemInterval)
	generalCard := widget.NewCard(app.GetMsg(config.TKeyLblGeneral), "", generalForm)

	// --- Actions ---
	saveAction := func() {
		if err := sw.urlEntry.Validate(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		app.saveSettings(sw, w)
	}

	btnSave := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSave), theme.DocumentSaveIcon(), saveAction)
	btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), func() { w.Close() })

	// --- Footer ---
	footerText := fmt.Sprintf(app.GetMsg(config.TKeyLblFooter), config.Version)
	footerLabel := widget.NewLabel(footerText)
	footerLabel.Alignment = fyne.TextAlignCenter
	footerLabel.TextStyle = fyne.TextStyle{Italic: true}

	paddedContent := container.NewPadded(container.NewVBox(
		catalogueCard,
		generalCard,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnCancel, btnSave),
		footerLabel,
	))

	w.SetContent(paddedContent)
	w.Resize(fyne.NewSize(config.SettingsWindowWidth, paddedContent.MinSize().Height))
	w.SetFixedSize(true)
	w.SetOnClosed(func() { app.settingsWindow = nil })
	w.Show()
}

// saveSettings persists the form, updates the fetcher wiring, and triggers a
// refresh with the new configuration.
func (app *VenueDirectoryApp) saveSettings(sw *settingsWidgets, w fyne.Window) {
	slog.Info("Saving preferences", config.LogKeyComponent, config.CompUISet)

	app.Preferences.SetString(config.PrefLanguage, sw.langSelect.Selected)
	app.Preferences.SetString(config.PrefAPIBaseURL, strings.TrimSpace(sw.urlEntry.Text))

	// The token lives in the system keyring, never in preferences. An empty
	// field removes a previously stored token.
	token := strings.TrimSpace(sw.tokenEntry.Text)
	if token != "" {
		if err := keyring.Set(config.KeyringService, config.KeyringTokenUser, token); err != nil {
			slog.Error("Failed to save API token to keyring",
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUISet)
		}
	} else {
		if err := keyring.Delete(config.KeyringService, config.KeyringTokenUser); err != nil {
			slog.Debug("No stored API token to remove",
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUISet)
		}
	}

	intervalText := sw.entryInterval.Text
	if intervalText == "" || intervalText == "0" {
		app.Preferences.SetInt(config.PrefInterval, config.DisabledInterval)
		slog.Info("Auto-refresh disabled via settings", config.LogKeyComponent, config.CompUISet)
	} else {
		if i, err := strconv.Atoi(intervalText); err == nil {
			app.Preferences.SetInt(config.PrefInterval, i)
		}
	}

	app.applyFetcherConfig()
	app.UpdateLocalizer()
	go app.RefreshVenues(true)

	w.Close()
}

// applyFetcherConfig pushes the saved base URL and token into the HTTP
// fetcher. Mocked fetchers in tests are left alone.
func (app *VenueDirectoryApp) applyFetcherConfig() {
	httpFetcher, ok := app.Fetcher.(interface {
		Configure(baseURL, token string)
	})
	if !ok {
		return
	}
	httpFetcher.Configure(
		app.Preferences.StringWithFallback(config.PrefAPIBaseURL, config.DefaultAPIBaseURL),
		app.APIToken(),
	)
}
