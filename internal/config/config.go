// Package config loads configuration from config files, environment variables
// and defaults using viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultAPIURL    = "http://localhost:26538"
	DefaultLrclibURL = "https://lrclib.net/api/get"

	// Delay offsets are clamped to this range and snapped to the step, the
	// same markers the slider in the desktop client exposes.
	DelayMinMs  = -2500
	DelayMaxMs  = 2500
	DelayStepMs = 250

	envPrefix = "YTMIRROR"

	PositionAbove = "above"
	PositionBelow = "below"
)

// ErrInvalidURL is returned when a configured endpoint is not a usable URL.
var ErrInvalidURL = errors.New("invalid url")

type Config struct {
	API     APIConfig
	Lyrics  LyricsConfig
	Logging LoggingConfig
	MPRIS   MPRISConfig
}

// APIConfig points at the local YouTube Music API server.
type APIConfig struct {
	URL string
}

type LyricsConfig struct {
	LrclibURL        string
	Show             bool
	Position         string // above|below the player block
	DelayMs          int
	ShowFailedToasts bool
	DisableCache     bool
}

type LoggingConfig struct {
	Level  string
	Pretty bool
}

type MPRISConfig struct {
	Enabled bool
}

// Load reads configuration from .env, optional yaml config file, environment
// variables and defaults, in that order of increasing precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/ytmirror")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Normalize()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.url", DefaultAPIURL)

	v.SetDefault("lyrics.lrcliburl", DefaultLrclibURL)
	v.SetDefault("lyrics.show", true)
	v.SetDefault("lyrics.position", PositionBelow)
	v.SetDefault("lyrics.delayms", 0)
	v.SetDefault("lyrics.showfailedtoasts", true)
	v.SetDefault("lyrics.disablecache", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)

	v.SetDefault("mpris.enabled", false)
}

// Normalize replaces invalid values with their documented defaults so a bad
// config never aborts startup. Endpoint validation mirrors the desktop
// client: a malformed URL is rejected and the default restored.
func (c *Config) Normalize() {
	if ValidateURL(c.API.URL) != nil {
		c.API.URL = DefaultAPIURL
	}
	if ValidateURL(c.Lyrics.LrclibURL) != nil {
		c.Lyrics.LrclibURL = DefaultLrclibURL
	}
	if c.Lyrics.Position != PositionAbove && c.Lyrics.Position != PositionBelow {
		c.Lyrics.Position = PositionBelow
	}
	c.Lyrics.DelayMs = ClampDelay(c.Lyrics.DelayMs)
}

// ValidateURL checks that a value is a well-formed absolute http(s) URL.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q: scheme must be http or https", ErrInvalidURL, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %q: missing host", ErrInvalidURL, raw)
	}
	return nil
}

// ClampDelay snaps a delay offset to the slider's 250 ms markers and clamps
// it to [-2500, 2500].
func ClampDelay(ms int) int {
	if ms < DelayMinMs {
		ms = DelayMinMs
	}
	if ms > DelayMaxMs {
		ms = DelayMaxMs
	}

	rem := ms % DelayStepMs
	if rem == 0 {
		return ms
	}

	ms -= rem
	if rem*2 >= DelayStepMs {
		ms += DelayStepMs
	} else if rem*2 <= -DelayStepMs {
		ms -= DelayStepMs
	}
	return ms
}
