package ui

import (
	"context"
	_ "embed"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/zalando/go-keyring"

	"github.com/AEBus/ffxiv-venues-dalamud/internal/config"
	"github.com/AEBus/ffxiv-venues-dalamud/internal/engine"
	"github.com/AEBus/ffxiv-venues-dalamud/internal/model"
)

//go:embed Icon.png
var appIconData []byte

//go:embed loading.png
var loadingImageData []byte

// VenueDirectoryApp encapsulates the UI state, preferences, and background logic.
type VenueDirectoryApp struct {
	App         fyne.App
	Window      fyne.Window
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	Fetcher engine.VenueFetcher
	Banners *engine.BannerCache
	Clock   engine.Clock // Injected clock for testability

	SupportedLanguages []string
	configChan         chan string

	// Venue state, guarded for concurrent access from the worker.
	VenuesMut   sync.RWMutex
	Venues      []model.Venue
	LastUpdated time.Time
	LastError   error

	Filter     engine.FilterState
	SelectedID string

	settingsWindow fyne.Window

	// onDataChanged, when set, re-renders the directory after a refresh or a
	// banner arrival. Wired by ShowDirectoryWindow.
	onDataChanged func()
}

// NewVenueDirectoryApp constructs the application and wires dependencies.
func NewVenueDirectoryApp(a fyne.App, ctx context.Context, fetcher engine.VenueFetcher) *VenueDirectoryApp {
	a.SetIcon(fyne.NewStaticResource(config.IconFile, appIconData))

	app := &VenueDirectoryApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Fetcher:            fetcher,
		Clock:              engine.RealClock{},
		SupportedLanguages: config.SupportedLanguages,
		configChan:         make(chan string, config.ChannelBufferSize),
		Filter:             engine.NewFilterState(),
	}

	app.Banners = engine.NewBannerCache(
		fetcher.FetchBytes,
		DecodeImage,
		engine.BannerCacheOptions{
			EmbeddedPlaceholder: loadingImageData,
			OnUpdate:            app.notifyDataChanged,
		},
	)
	return app
}

// Run launches the application services and the main UI loop.
func (app *VenueDirectoryApp) Run() {
	app.SetupI18n()
	app.watchPreferences()
	app.ShowDirectoryWindow()

	go app.backgroundWorker()
	app.App.Run()

	_ = app.Banners.Close()
}

// watchPreferences monitors settings changes to trigger immediate updates.
func (app *VenueDirectoryApp) watchPreferences() {
	app.Preferences.AddChangeListener(func() {
		select {
		case app.configChan <- config.PrefInterval:
		default:
		}
	})
}

// backgroundWorker manages the periodic catalogue refresh schedule.
func (app *VenueDirectoryApp) backgroundWorker() {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	app.RefreshVenues(false)

	getInterval := func() time.Duration {
		val := app.Preferences.IntWithFallback(config.PrefInterval, config.DefaultRefreshMin)
		if val <= 0 {
			val = config.DefaultRefreshMin
		}
		return time.Duration(val) * time.Minute
	}

	currentDuration := getInterval()
	ticker := time.NewTicker(currentDuration)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, currentDuration)

	for {
		select {
		case <-app.Ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-app.configChan:
			newDuration := getInterval()
			if newDuration != currentDuration {
				log.Info(config.MsgUpdateInterval, config.LogKeyOld, currentDuration, config.LogKeyNew, newDuration)
				currentDuration = newDuration
				ticker.Reset(currentDuration)
			}

		case <-ticker.C:
			app.RefreshVenues(false)
		}
	}
}

// RefreshVenues downloads the catalogue and re-renders. manual marks a
// user-initiated refresh, which additionally surfaces failures as a
// notification.
func (app *VenueDirectoryApp) RefreshVenues(manual bool) {
	slog.Info(config.MsgRefreshReq,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyManual, manual)

	start := app.Clock.Now()
	venues, err := app.Fetcher.FetchVenues(app.Ctx)

	app.VenuesMut.Lock()
	if err != nil {
		app.LastError = err
	} else {
		app.Venues = venues
		app.LastUpdated = app.Clock.Now()
		app.LastError = nil
	}
	app.VenuesMut.Unlock()

	if err != nil {
		slog.Error(config.MsgRefreshFailed,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		if manual {
			app.App.SendNotification(fyne.NewNotification(
				config.TitleLoadError, app.GetMsg(config.TKeyNotifLoadError)))
		}
	} else {
		slog.Info(config.MsgRefreshDone,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyCount, len(venues),
			config.LogKeyDuration, time.Since(start).Milliseconds())
	}

	app.notifyDataChanged()
}

// CurrentVenues returns a copy of the venue list for safe concurrent reads.
func (app *VenueDirectoryApp) CurrentVenues() []model.Venue {
	app.VenuesMut.RLock()
	defer app.VenuesMut.RUnlock()
	venues := make([]model.Venue, len(app.Venues))
	copy(venues, app.Venues)
	return venues
}

// APIToken reads the optional catalogue token from the system keyring.
func (app *VenueDirectoryApp) APIToken() string {
	token, err := keyring.Get(config.KeyringService, config.KeyringTokenUser)
	if err != nil {
		slog.Debug(config.MsgTokenFail,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		return ""
	}
	return token
}

func (app *VenueDirectoryApp) notifyDataChanged() {
	if app.onDataChanged != nil {
		fyne.Do(app.onDataChanged)
	}
}
