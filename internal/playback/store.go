// Package playback holds the mirrored state of the remote player. The store
// is the single source of truth: the transport's message handler merges
// partial updates into it, user commands mutate it optimistically, and every
// consumer reads from it.
package playback

import (
	"math"
	"sync"
	"time"

	"karolbroda.com/ytmirror/internal/logger"
	"karolbroda.com/ytmirror/internal/remote"
	"karolbroda.com/ytmirror/internal/settings"
	"karolbroda.com/ytmirror/internal/song"
)

const (
	// Bare position pings within this distance of the extrapolated position
	// are dropped as jitter.
	positionJitterMs = 1000

	// How long to wait after a (re)connect before pushing the saved volume,
	// giving the player a moment to finish its own startup.
	volumePushSettle = 100 * time.Millisecond
)

// Transport is the outbound half of the remote client the store needs.
type Transport interface {
	Send(method string, route string, body any)
}

// Store mirrors the remote player. All fields are guarded by mu; the anchored
// position pair (positionBaseMs, positionAnchor) is only ever written
// together, under the same lock acquisition.
type Store struct {
	mu sync.Mutex

	song      *song.Song
	isPlaying bool
	volume    int
	muted     bool
	shuffled  bool
	repeat    song.RepeatMode

	positionBaseMs int64
	positionAnchor time.Time

	// pendingSeek / pendingVolume mark that the next inbound message echoes a
	// local edit; both are cleared after exactly one message, confirmed or not.
	pendingSeek   bool
	pendingVolume bool
	// justChangedSong exempts the first position-less update after a song
	// change from jitter suppression.
	justChangedSong bool
	// volumeInitialized locks out remote volume values once the saved volume
	// has been restored, so a stale startup value never clobbers it.
	volumeInitialized bool

	listeners  map[int]func()
	listenerID int

	transport Transport
	durable   *settings.Store

	now         func() time.Time
	settleDelay time.Duration
}

// Snapshot is a consistent read of the mirrored state. PositionMs is the
// derived position at the moment the snapshot was taken; it must not be
// cached, successive reads advance with the wall clock while playing.
type Snapshot struct {
	Song       *song.Song
	IsPlaying  bool
	Volume     int
	Muted      bool
	Shuffled   bool
	Repeat     song.RepeatMode
	PositionMs int64
}

// NewStore builds a store and restores the persisted volume if one exists.
// durable may be nil (volume restore and persistence are skipped).
func NewStore(transport Transport, durable *settings.Store) *Store {
	s := &Store{
		repeat:      song.RepeatOff,
		listeners:   make(map[int]func()),
		transport:   transport,
		durable:     durable,
		now:         time.Now,
		settleDelay: volumePushSettle,
	}

	if durable != nil {
		volume, err := durable.LoadVolume()
		switch {
		case err == nil:
			s.volume = volume
			s.volumeInitialized = true
		case err != settings.ErrNotFound:
			logger.Log.Error().Err(err).Msg("failed to load saved volume")
		}
	}

	return s
}

// Subscribe registers a change listener and returns its unsubscribe func.
// Listeners run after every applied message and every user command, even when
// nothing observable changed.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	s.listenerID++
	id := s.listenerID
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Apply merges one inbound partial update. Field order is load-bearing: song
// identity first, then play state, shuffle, position (with jitter guard),
// volume (gated), repeat and mute, and finally the unconditional clearing of
// both pending-local flags.
func (s *Store) Apply(patch *remote.StatePatch) {
	if patch == nil {
		return
	}

	s.mu.Lock()
	now := s.now()

	if patch.Song != nil {
		isNew := !patch.Song.IsSame(s.song)
		s.song = patch.Song
		s.isPlaying = !patch.Song.Paused()
		if isNew && patch.Position != nil {
			s.anchor(int64(*patch.Position*1000), now)
		} else if isNew {
			s.anchor(0, now)
			s.justChangedSong = true
		}
	}

	if patch.IsPlaying != nil && patch.Song == nil {
		s.isPlaying = *patch.IsPlaying
	}

	if patch.Shuffle != nil {
		s.shuffled = *patch.Shuffle
	}

	if patch.Position != nil && patch.Song == nil {
		newPos := int64(*patch.Position * 1000)
		drift := newPos - s.positionLocked(now)
		if s.pendingSeek || s.justChangedSong || abs64(drift) > positionJitterMs {
			s.anchor(newPos, now)
		}
		s.justChangedSong = false
	}

	if patch.Volume != nil && !s.pendingVolume && !s.volumeInitialized {
		s.volume = *patch.Volume
	}

	if patch.Repeat != nil {
		s.repeat = *patch.Repeat
	}
	if patch.Muted != nil {
		s.muted = *patch.Muted
	}

	s.pendingSeek = false
	s.pendingVolume = false
	s.mu.Unlock()

	s.notify()
}

// anchor re-bases the position pair. The only writer of either field.
func (s *Store) anchor(baseMs int64, at time.Time) {
	s.positionBaseMs = baseMs
	s.positionAnchor = at
}

func (s *Store) positionLocked(now time.Time) int64 {
	pos := s.positionBaseMs
	if s.isPlaying {
		pos += now.Sub(s.positionAnchor).Milliseconds()
	}
	return pos
}

// PositionMs extrapolates the current position from the last anchored value.
func (s *Store) PositionMs() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positionLocked(s.now())
}

// Snapshot returns a consistent copy of the full state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Song:       s.song,
		IsPlaying:  s.isPlaying,
		Volume:     s.volume,
		Muted:      s.muted,
		Shuffled:   s.shuffled,
		Repeat:     s.repeat,
		PositionMs: s.positionLocked(s.now()),
	}
}

func (s *Store) Song() *song.Song {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.song
}

// OnConnected is the transport's open hook. After a short settle delay it
// pushes the restored volume so a freshly started player converges to the
// user's last-known setting.
func (s *Store) OnConnected() {
	s.mu.Lock()
	initialized := s.volumeInitialized
	volume := s.volume
	delay := s.settleDelay
	s.mu.Unlock()

	if !initialized {
		return
	}

	time.AfterFunc(delay, func() {
		s.send("POST", remote.RouteVolume, map[string]int{"volume": volume})
		logger.Log.Info().Int("volume", volume).Msg("applied saved volume")
	})
}

func (s *Store) send(method, route string, body any) {
	if s.transport == nil {
		return
	}
	s.transport.Send(method, route, body)
}

// Seek jumps to a position. Optimistic: the local timeline re-anchors
// immediately, and the next inbound echo is treated as confirmation.
func (s *Store) Seek(ms int64) {
	s.mu.Lock()
	s.pendingSeek = true
	s.anchor(ms, s.now())
	s.mu.Unlock()

	s.notify()
	s.send("POST", remote.RouteSeekTo, map[string]int64{"seconds": int64(math.Round(float64(ms) / 1000))})
}

// SetVolume persists the chosen volume, applies it locally, and tells the
// player. Persistence failures are logged and never block the update.
func (s *Store) SetVolume(percent float64) {
	volume := int(math.Floor(percent))

	if s.durable != nil {
		if err := s.durable.SaveVolume(volume); err != nil {
			logger.Log.Error().Err(err).Msg("failed to save volume")
		}
	}

	s.mu.Lock()
	s.pendingVolume = true
	s.volume = volume
	s.mu.Unlock()

	s.notify()
	s.send("POST", remote.RouteVolume, map[string]int{"volume": volume})
}

// SetPlaying toggles play/pause. The local anchor is re-based at the current
// derived position so the timeline freezes or resumes exactly where it is.
func (s *Store) SetPlaying(playing bool) {
	s.mu.Lock()
	now := s.now()
	s.anchor(s.positionLocked(now), now)
	s.isPlaying = playing
	s.mu.Unlock()

	s.notify()
	if playing {
		s.send("POST", remote.RoutePlay, nil)
	} else {
		s.send("POST", remote.RoutePause, nil)
	}
}

// SwitchRepeat advances the repeat mode one step (off, all, one).
func (s *Store) SwitchRepeat() {
	s.mu.Lock()
	switch s.repeat {
	case song.RepeatOff:
		s.repeat = song.RepeatAll
	case song.RepeatAll:
		s.repeat = song.RepeatOne
	default:
		s.repeat = song.RepeatOff
	}
	s.mu.Unlock()

	s.notify()
	s.send("POST", remote.RouteSwitchRepeat, map[string]int{"iteration": 1})
}

func (s *Store) Shuffle() {
	s.mu.Lock()
	s.shuffled = !s.shuffled
	s.mu.Unlock()

	s.notify()
	s.send("POST", remote.RouteShuffle, nil)
}

func (s *Store) ToggleMute() {
	s.mu.Lock()
	s.muted = !s.muted
	s.mu.Unlock()

	s.notify()
	s.send("POST", remote.RouteToggleMute, nil)
}

func (s *Store) Next() {
	s.send("POST", remote.RouteNext, nil)
	s.notify()
}

func (s *Store) Prev() {
	s.send("POST", remote.RoutePrevious, nil)
	s.notify()
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
