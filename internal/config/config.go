package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client against the catalogue API.
var UserAgent = "VenueDirectory/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "Venue Directory"
	AppID          = "com.github.aebus.ffxiv-venues-dalamud"
	KeyringService = "com.github.aebus.ffxiv-venues-dalamud"
	LogFileName    = "app.log"
	IconFile       = "Icon.png"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	DirectoryWinWidth   = 1200
	DirectoryWinHeight  = 800
	SettingsWindowWidth = 600
	BannerMaxWidth      = 520
	BannerMinHeight     = 120

	// Preference Keys
	PrefAPIBaseURL = "api_base_url"
	PrefLanguage   = "language"
	PrefInterval   = "refresh_interval_min"
	PrefLastRun    = "last_run_version"

	// KeyringTokenUser is the account name the optional API token is stored
	// under in the system keyring.
	KeyringTokenUser = "catalogue-token"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle       = "win_title"
	TKeyWinSettings    = "win_settings_title"
	TKeyBtnRefresh     = "btn_refresh"
	TKeyBtnRetry       = "btn_retry"
	TKeyBtnSettings    = "btn_settings"
	TKeyBtnCopyAddress = "btn_copy_address"
	TKeyBtnTravel      = "btn_travel"
	TKeyBtnWebsite     = "btn_website"
	TKeyBtnDiscord     = "btn_discord"
	TKeyBtnExport      = "btn_export"
	TKeyBtnSave        = "btn_save"
	TKeyBtnCancel      = "btn_cancel"
	TKeyLblLoading     = "lbl_loading"
	TKeyLblVenueCount  = "lbl_venue_count"
	TKeyLblSearchHint  = "lbl_search_hint"
	TKeyLblTags        = "lbl_tags"
	TKeyLblTagsHint    = "lbl_tags_hint"
	TKeyLblRegion      = "lbl_region"
	TKeyLblDataCenter  = "lbl_data_center"
	TKeyLblWorld       = "lbl_world"
	TKeyLblAny         = "lbl_any"
	TKeyLblHouseSize   = "lbl_house_size"
	TKeyLblSizeSmall   = "lbl_size_small"
	TKeyLblSizeMedium  = "lbl_size_medium"
	TKeyLblSizeLarge   = "lbl_size_large"
	TKeyLblOpenNow     = "lbl_open_now"
	TKeyLblNextWeek    = "lbl_next_week"
	TKeyLblSfwOnly     = "lbl_sfw_only"
	TKeyLblNsfwOnly    = "lbl_nsfw_only"
	TKeyLblSelectVenue = "lbl_select_venue"
	TKeyLblNsfwWarning = "lbl_nsfw_warning"
	TKeyLblTimezone    = "lbl_timezone_note"
	TKeyLblLanguage    = "lbl_language"
	TKeyLblAPIBaseURL  = "lbl_api_base_url"
	TKeyLblAPIToken    = "lbl_api_token"
	TKeyLblRefresh     = "lbl_refresh_interval"
	TKeyLblMinutes     = "lbl_minutes_suffix"
	TKeyLblGeneral     = "lbl_general"
	TKeyLblCatalogue   = "lbl_catalogue"
	TKeyLblFooter      = "lbl_footer"
	TKeyHelpAPIBaseURL = "help_api_base_url"
	TKeyHelpAPIToken   = "help_api_token"
	TKeyHelpInterval   = "help_interval"
	TKeyHelpLanguage   = "help_language"
	TKeyLblSchedule    = "lbl_schedule"
	TKeyLblUpdated     = "lbl_updated"
	TKeyNotifLoadError = "notif_load_error"
	TKeyNotifExported  = "notif_exported"
	TKeyNotifCopied    = "notif_copied"

	// Validation Errors (UI)
	TKeyErrURLRequired = "err_url_required"
	TKeyErrURLScheme   = "err_url_scheme"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultAPIBaseURL = "https://api.ffxivvenues.com/v1/"
	DefaultRefreshMin = 30
	DefaultLanguage   = "en"
	DisabledInterval  = 0

	// VenueListPath is the catalogue query for approved venues.
	VenueListPath = "venue?approved=true"

	// BannerKeyFormat derives a banner fetch key when no explicit URI exists.
	BannerKeyFormat = "venue/%s/media"
)

// -----------------------------------------------------------------------------
// iCalendar Export
// -----------------------------------------------------------------------------

const (
	ICalVersion    = "2.0"
	ICalProdid     = "-//Venue Directory//Schedule Export//EN"
	ICalCalName    = "Venue Openings"
	ICalScale      = "GREGORIAN"
	ICalMethod     = "PUBLISH"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"
	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTEnd      = "DTEND"
	PropDTStamp    = "DTSTAMP"
	PropRRule      = "RRULE"
	ICalDomain     = "venuedirectory"
	FormatUID      = "%s-%d@%s"

	// DefaultEventDuration is assumed for openings with no published end time.
	DefaultEventDuration = 2 * time.Hour

	ExtICS = ".ics"
)

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	// DecorationLineMinLength is the length above which a line made purely of
	// punctuation is treated as decoration and dropped by the sanitizer.
	DecorationLineMinLength = 6

	// PlotsPerDistrict is the fixed length of every district plot-size table.
	PlotsPerDistrict = 60

	// DaysPerWeek bounds the forward search for the next scheduled weekday.
	DaysPerWeek = 7

	TimeFormatDisplay = "15:04"
	NextDaySuffix     = " (+1)"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"

	HeaderUserAgent     = "User-Agent"
	HeaderAccept        = "Accept"
	HeaderAuthorization = "Authorization"
	MimeJSON            = "application/json"
	BearerPrefix        = "Bearer "
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrInvalidURL    = "invalid URL structure"
	ErrProtocol      = "unsupported protocol scheme (http/https only)"
	ErrBaseURLEmpty  = "configuration error: API base URL is empty"
	ErrFetchStatus   = "server returned unexpected status"
	ErrVenueDecode   = "failed to decode venue list"
	ErrImageDecode   = "failed to decode banner image"
	ErrBannerFetch   = "banner fetch failed"
	ErrCacheClosed   = "banner cache is closed"
	ErrTimeZone      = "unknown time zone identifier"
	ErrICalEncode    = "failed to encode iCalendar data"
	ErrNoSchedule    = "venue has no schedule to export"
	ErrNoStartTime   = "schedule entry has no start time"
	ErrLogFile       = "failed to open log file"
	ErrCacheDir      = "could not determine user cache dir"
	ErrCreateDir     = "could not create app cache dir"
	ErrAppFailed     = "application failed unexpectedly"
	ErrLocalesAccess = "failed to access embedded locales"
	ErrLocaleLoad    = "failed to load locale file"
	ErrLocNotInit    = "localizer not initialized"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting     = "Starting application"
	MsgAppStop         = "Application stopped gracefully"
	MsgCtxCancel       = "Context cancelled, shutting down UI"
	MsgRefreshReq      = "Venue list refresh requested"
	MsgRefreshDone     = "Venue list refreshed"
	MsgRefreshFailed   = "Venue list refresh failed"
	MsgWorkerStart     = "Background worker started"
	MsgWorkerStop      = "Worker stopping due to context cancellation"
	MsgUpdateInterval  = "Updating refresh interval"
	MsgBannerStart     = "Banner fetch started"
	MsgBannerDone      = "Banner fetch completed"
	MsgBannerFailed    = "Banner fetch failed"
	MsgPlaceholder     = "Loading placeholder image resolved"
	MsgCacheClosed     = "Banner cache closed"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgTokenFail       = "API token retrieval failed (might be empty)"
	MsgExported        = "Schedule calendar exported"
	MsgScheduleSkipped = "Skipping unexportable schedule entry"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgFetchingVenues  = "Downloading venue catalogue"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackVenueName   = "Unnamed venue"
	FallbackLocation    = "Location unknown"
	FallbackNoOpenings  = "No scheduled openings"
	FallbackTimeDisplay = "--"
	TitleStartupError   = "Startup Error"
	TitleLoadError      = "Load Error"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyInterval  = "interval"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeyCount     = "count"
	LogKeyVenue     = "venue_id"
	LogKeySource    = "source"
	LogKeySizeBytes = "size_bytes"
	LogKeyManual    = "manual"
	LogKeyDuration  = "duration_ms"
	LogKeySkipped   = "skipped"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI      = "ui"
	CompUISet   = "ui_settings"
	CompEngine  = "engine"
	CompBanner  = "banner_cache"
	CompFetcher = "fetcher"
	CompWorker  = "worker"
	CompMain    = "main"
	CompI18n    = "i18n"
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	LayoutColumnsDouble = 2
)
