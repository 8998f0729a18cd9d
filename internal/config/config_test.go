package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampDelay(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 0},
		{250, 250},
		{-250, -250},
		{2500, 2500},
		{-2500, -2500},
		{3000, 2500},
		{-3000, -2500},
		{100, 0},
		{130, 250},
		{125, 250},
		{-100, 0},
		{-130, -250},
		{-125, -250},
		{-300, -250},
		{-400, -500},
		{1337, 1250},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampDelay(tt.in), "ClampDelay(%d)", tt.in)
	}
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("http://localhost:26538"))
	assert.NoError(t, ValidateURL("https://music.example.com/api"))

	assert.Error(t, ValidateURL(""))
	assert.Error(t, ValidateURL("not a url"))
	assert.Error(t, ValidateURL("ftp://example.com"))
	assert.Error(t, ValidateURL("http://"))
	assert.Error(t, ValidateURL("/just/a/path"))
}

func TestNormalizeRestoresDefaults(t *testing.T) {
	cfg := Config{
		API:    APIConfig{URL: "not a url"},
		Lyrics: LyricsConfig{LrclibURL: "also bad", Position: "sideways", DelayMs: 9000},
	}

	cfg.Normalize()

	assert.Equal(t, DefaultAPIURL, cfg.API.URL)
	assert.Equal(t, DefaultLrclibURL, cfg.Lyrics.LrclibURL)
	assert.Equal(t, PositionBelow, cfg.Lyrics.Position)
	assert.Equal(t, DelayMaxMs, cfg.Lyrics.DelayMs)
}

func TestNormalizeKeepsValidValues(t *testing.T) {
	cfg := Config{
		API: APIConfig{URL: "http://127.0.0.1:9000"},
		Lyrics: LyricsConfig{
			LrclibURL: "https://lrclib.example.com/api/get",
			Position:  PositionAbove,
			DelayMs:   -750,
		},
	}

	cfg.Normalize()

	assert.Equal(t, "http://127.0.0.1:9000", cfg.API.URL)
	assert.Equal(t, "https://lrclib.example.com/api/get", cfg.Lyrics.LrclibURL)
	assert.Equal(t, PositionAbove, cfg.Lyrics.Position)
	assert.Equal(t, -750, cfg.Lyrics.DelayMs)
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.API.URL)
	assert.Equal(t, DefaultLrclibURL, cfg.Lyrics.LrclibURL)
	assert.True(t, cfg.Lyrics.Show)
	assert.Equal(t, PositionBelow, cfg.Lyrics.Position)
	assert.Equal(t, 0, cfg.Lyrics.DelayMs)
	assert.True(t, cfg.Lyrics.ShowFailedToasts)
	assert.False(t, cfg.Lyrics.DisableCache)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.MPRIS.Enabled)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("YTMIRROR_API_URL", "http://192.168.1.10:26538")
	t.Setenv("YTMIRROR_LYRICS_DELAYMS", "500")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "http://192.168.1.10:26538", cfg.API.URL)
	assert.Equal(t, 500, cfg.Lyrics.DelayMs)
}
