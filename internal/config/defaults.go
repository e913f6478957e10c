package config

const (
	defaultConfigPath     = "~/.config/watchtower/config.toml"
	defaultMode           = ModeStatic
	defaultBaseURL        = "http://localhost:5173"
	defaultBasePath       = "/"
	defaultUserAgent      = "Watchtower/dev"
	defaultRequestTimeout = 10
	defaultCachePath      = "~/.cache/watchtower/responses.db"
	defaultCacheMaxAge    = 24 * 7
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultWatchDebounce  = 250
)

// DefaultPalette is the eight-color palette used when none is configured.
var DefaultPalette = []string{
	"#e6194b",
	"#3cb44b",
	"#ffe119",
	"#4363d8",
	"#f58231",
	"#911eb4",
	"#46f0f0",
	"#f032e6",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		DataSource: DataSource{
			Mode:           defaultMode,
			BaseURL:        defaultBaseURL,
			BasePath:       defaultBasePath,
			UserAgent:      defaultUserAgent,
			RequestTimeout: defaultRequestTimeout,
		},
		Palette: Palette{
			Colors: append([]string(nil), DefaultPalette...),
		},
		Cache: Cache{
			Path:        defaultCachePath,
			MaxAgeHours: defaultCacheMaxAge,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Watch: Watch{
			DebounceMillis: defaultWatchDebounce,
		},
	}
}
