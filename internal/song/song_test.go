package song

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSame(t *testing.T) {
	a := &Song{VideoID: "abc", Title: "One"}
	b := &Song{VideoID: "abc", Title: "A different title, same video"}
	c := &Song{VideoID: "xyz"}

	assert.True(t, a.IsSame(b))
	assert.False(t, a.IsSame(c))
	assert.False(t, a.IsSame(nil))

	var nilSong *Song
	assert.True(t, nilSong.IsSame(nil))
	assert.False(t, nilSong.IsSame(a))
}

func TestPausedDefaultsToPlaying(t *testing.T) {
	var nilSong *Song
	assert.False(t, nilSong.Paused())

	assert.False(t, (&Song{}).Paused())

	paused := true
	assert.True(t, (&Song{IsPaused: &paused}).Paused())
}

func TestIsValid(t *testing.T) {
	var nilSong *Song
	assert.False(t, nilSong.IsValid())
	assert.False(t, (&Song{Title: "x"}).IsValid())
	assert.False(t, (&Song{Artist: "y"}).IsValid())
	assert.True(t, (&Song{Title: "x", Artist: "y"}).IsValid())
}

func TestSongDecodesWireNames(t *testing.T) {
	raw := `{
		"videoId": "dQw4w9WgXcQ",
		"title": "Never Gonna Give You Up",
		"artist": "Rick Astley",
		"album": "Whenever You Need Somebody",
		"mediaType": "ORIGINAL_MUSIC_VIDEO",
		"songDuration": 213.5,
		"imageSrc": "https://example.com/cover.jpg",
		"isPaused": false,
		"elapsedSeconds": 42
	}`

	var s Song
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	assert.Equal(t, "dQw4w9WgXcQ", s.VideoID)
	assert.Equal(t, MediaTypeOriginalMusicVideo, s.MediaType)
	assert.Equal(t, 213.5, s.Duration)
	assert.Equal(t, "https://example.com/cover.jpg", s.ArtworkURL)
	require.NotNil(t, s.IsPaused)
	assert.False(t, *s.IsPaused)
	assert.Equal(t, 42.0, s.ElapsedSecs)
}
