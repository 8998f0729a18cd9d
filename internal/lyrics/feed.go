package lyrics

import (
	"context"
	"sync"

	"karolbroda.com/ytmirror/internal/logger"
	"karolbroda.com/ytmirror/internal/song"
)

// Source is the slice of the playback store the feed watches.
type Source interface {
	Song() *song.Song
	Subscribe(fn func()) func()
}

// Feed keeps the transcript for the store's current song. A changed videoId
// triggers exactly one resolve; Refresh forces one regardless of identity.
// Overlapping resolves for the same song are not deduplicated here; the
// per-identity guard in handleStoreChange is the only serialization.
type Feed struct {
	client *Client
	cache  *Cache
	source Source

	// onFailure surfaces a dismissible notification; nil disables it.
	onFailure func(body string)
	// onChange fires after the transcript is replaced (or cleared).
	onChange func()

	mu          sync.Mutex
	lastVideoID string
	lines       []Line
	resolved    bool

	unsubscribe func()
}

type FeedOptions struct {
	Cache     *Cache // nil disables the disk cache
	OnFailure func(body string)
	OnChange  func()
}

func NewFeed(client *Client, source Source, opts FeedOptions) *Feed {
	return &Feed{
		client:    client,
		cache:     opts.Cache,
		source:    source,
		onFailure: opts.OnFailure,
		onChange:  opts.OnChange,
	}
}

// Start subscribes to the store. Stop must be called to detach.
func (f *Feed) Start() {
	f.unsubscribe = f.source.Subscribe(f.handleStoreChange)
	// pick up a song that was already playing before Start
	f.handleStoreChange()
}

func (f *Feed) Stop() {
	if f.unsubscribe != nil {
		f.unsubscribe()
		f.unsubscribe = nil
	}
}

// Transcript returns the current lines and whether a resolve has completed
// for the current song. (nil, true) means "no lyrics found", distinct from
// (nil, false) "not yet fetched".
func (f *Feed) Transcript() ([]Line, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lines, f.resolved
}

// Refresh refetches for the current song, bypassing the identity guard and
// the disk cache.
func (f *Feed) Refresh() {
	s := f.source.Song()
	if s == nil || s.VideoID == "" {
		logger.Log.Debug().Msg("cannot refresh lyrics: no song loaded")
		return
	}

	logger.Log.Info().Str("title", s.Title).Str("artist", s.Artist).Msg("refreshing lyrics")
	go f.resolve(s, true)
}

func (f *Feed) handleStoreChange() {
	s := f.source.Song()
	if s == nil || s.VideoID == "" {
		return
	}

	f.mu.Lock()
	if f.lastVideoID == s.VideoID {
		f.mu.Unlock()
		return
	}
	f.lastVideoID = s.VideoID
	f.lines = nil
	f.resolved = false
	f.mu.Unlock()

	go f.resolve(s, false)
}

func (f *Feed) resolve(s *song.Song, forced bool) {
	if f.cache != nil && !forced {
		if lines, err := f.cache.Get(s.VideoID); err == nil {
			f.setTranscript(s.VideoID, lines, false)
			return
		}
	}

	lines := f.client.Search(context.Background(), s)
	f.setTranscript(s.VideoID, lines, lines == nil)

	if lines != nil && f.cache != nil {
		if err := f.cache.Put(SongKey{VideoID: s.VideoID, Title: s.Title, Artist: s.Artist}, lines); err != nil {
			logger.Log.Debug().Err(err).Msg("failed to cache transcript")
		}
	}
}

func (f *Feed) setTranscript(videoID string, lines []Line, failed bool) {
	f.mu.Lock()
	f.lines = lines
	f.resolved = true
	f.mu.Unlock()

	if failed {
		logger.Log.Info().Str("videoId", videoID).Msg("no lyrics found")
		if f.onFailure != nil {
			f.onFailure("No lyrics found for this song")
		}
	} else {
		logger.Log.Debug().Str("videoId", videoID).Int("lines", len(lines)).Msg("lyrics resolved")
	}

	if f.onChange != nil {
		f.onChange()
	}
}
