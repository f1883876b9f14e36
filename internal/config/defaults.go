package config

const (
	defaultImageDir            = "~/postergeist/images"
	defaultWorkDir             = "~/.local/share/postergeist/work"
	defaultDataDir             = "~/.local/share/postergeist"
	defaultLogDir              = "~/.local/share/postergeist/logs"
	defaultInstagramBaseURL    = "https://i.instagram.com/api/v1"
	defaultInstagramTimeout    = 60
	defaultCity                = "New York"
	defaultLocationRangeKm     = 5.0
	defaultPostLimitPerSlot    = 1
	defaultThemeTag            = "traveling"
	defaultMinDelaySeconds     = 5
	defaultMaxDelaySeconds     = 15
	defaultPollIntervalSeconds = 300
	defaultVisionBaseURL       = "https://vision.googleapis.com/v1"
	defaultVisionMaxResults    = 10
	defaultVisionTimeout       = 30
	defaultOpenAIBaseURL       = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel         = "gpt-4"
	defaultOpenAIRole          = "You are default assistant"
	defaultOpenAIMaxTokens     = 100
	defaultOpenAITemperature   = 0.7
	defaultOpenAITimeout       = 60
	defaultGeocoderBaseURL     = "https://nominatim.openstreetmap.org"
	defaultGeocoderTimeout     = 30
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ImageDir: defaultImageDir,
			WorkDir:  defaultWorkDir,
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
		},
		Instagram: Instagram{
			BaseURL:          defaultInstagramBaseURL,
			TimeoutSeconds:   defaultInstagramTimeout,
			DefaultCity:      defaultCity,
			LocationRangeKm:  defaultLocationRangeKm,
			PostLimitPerSlot: defaultPostLimitPerSlot,
			ThemeTag:         defaultThemeTag,
		},
		Schedule: Schedule{
			Windows:             [][]string{{"10:00", "12:00"}, {"18:00", "21:00"}},
			MinDelaySeconds:     defaultMinDelaySeconds,
			MaxDelaySeconds:     defaultMaxDelaySeconds,
			PollIntervalSeconds: defaultPollIntervalSeconds,
		},
		Vision: Vision{
			BaseURL:        defaultVisionBaseURL,
			MaxResults:     defaultVisionMaxResults,
			TimeoutSeconds: defaultVisionTimeout,
		},
		OpenAI: OpenAI{
			BaseURL:        defaultOpenAIBaseURL,
			Model:          defaultOpenAIModel,
			Role:           defaultOpenAIRole,
			MaxTokens:      defaultOpenAIMaxTokens,
			Temperature:    defaultOpenAITemperature,
			TimeoutSeconds: defaultOpenAITimeout,
		},
		Geocoder: Geocoder{
			BaseURL:        defaultGeocoderBaseURL,
			TimeoutSeconds: defaultGeocoderTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
