package song

// MediaType mirrors the upload categories the remote player reports.
type MediaType string

const (
	MediaTypeAudio              MediaType = "AUDIO"
	MediaTypeOriginalMusicVideo MediaType = "ORIGINAL_MUSIC_VIDEO"
	MediaTypeUserGenerated      MediaType = "USER_GENERATED_CONTENT"
	MediaTypePodcastEpisode     MediaType = "PODCAST_EPISODE"
	MediaTypeOtherVideo         MediaType = "OTHER_VIDEO"
)

// RepeatMode is the remote player's repeat setting.
type RepeatMode string

const (
	RepeatOff RepeatMode = "NONE"
	RepeatOne RepeatMode = "ONE"
	RepeatAll RepeatMode = "ALL"
)

// Song is one track as reported by the remote player. It is immutable once
// received; a song with a different VideoID fully replaces the current one.
type Song struct {
	VideoID     string    `json:"videoId"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Album       string    `json:"album,omitempty"`
	MediaType   MediaType `json:"mediaType"`
	Duration    float64   `json:"songDuration"`
	UploadDate  string    `json:"uploadDate,omitempty"`
	ArtworkURL  string    `json:"imageSrc,omitempty"`
	IsPaused    *bool     `json:"isPaused,omitempty"`
	ElapsedSecs float64   `json:"elapsedSeconds,omitempty"`
	URL         string    `json:"url,omitempty"`
	PlaylistID  string    `json:"playlistId,omitempty"`
}

func (s *Song) IsValid() bool {
	if s == nil {
		return false
	}
	return s.Title != "" && s.Artist != ""
}

// IsSame compares song identity by VideoID.
func (s *Song) IsSame(other *Song) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.VideoID == other.VideoID
}

// Paused reports the song's embedded pause flag, defaulting to not-paused
// when the remote omits it.
func (s *Song) Paused() bool {
	if s == nil || s.IsPaused == nil {
		return false
	}
	return *s.IsPaused
}
