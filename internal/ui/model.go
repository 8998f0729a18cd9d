// Package ui renders the mirrored player and the synced lyric view. It is a
// pure consumer: it reads snapshots from the store and writes commands back
// through it.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/common-nighthawk/go-figure"

	"karolbroda.com/ytmirror/internal/artwork"
	"karolbroda.com/ytmirror/internal/config"
	"karolbroda.com/ytmirror/internal/lyrics"
	"karolbroda.com/ytmirror/internal/playback"
)

// tickInterval is the position poll cadence. While paused the derived
// position is frozen, so ticking stays cheap.
const tickInterval = time.Second

type TickMsg time.Time

// StateChangedMsg wakes the view when the store or the lyric feed notified.
type StateChangedMsg struct{}

type ArtworkFetchedMsg struct {
	VideoID string
	Palette *artwork.Palette
	Err     error
}

type Model struct {
	store *playback.Store
	feed  *lyrics.Feed
	cfg   *config.Config

	// changes carries store/feed notifications into the bubbletea loop.
	changes chan struct{}

	snap     playback.Snapshot
	lines    []lyrics.Line
	resolved bool
	current  int
	next     int
	delayMs  int

	palette        *artwork.Palette
	artworkVideoID string

	banner   string
	width    int
	height   int
	quitting bool
}

type ModelConfig struct {
	Store  *playback.Store
	Feed   *lyrics.Feed
	Config *config.Config
}

func NewModel(mc ModelConfig) *Model {
	m := &Model{
		store:   mc.Store,
		feed:    mc.Feed,
		cfg:     mc.Config,
		changes: make(chan struct{}, 8),
		delayMs: mc.Config.Lyrics.DelayMs,
		palette: artwork.DefaultPalette(),
		current: -1,
		next:    -1,
		banner:  figure.NewFigure("ytmirror", "small", true).String(),
	}
	return m
}

// NotifyChanged is registered as the store and feed listener. Non-blocking:
// a full channel means a wakeup is already pending.
func (m *Model) NotifyChanged() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

func (m *Model) Init() tea.Cmd {
	m.refresh()
	return tea.Batch(tickCmd(), m.listenForChanges())
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *Model) listenForChanges() tea.Cmd {
	return func() tea.Msg {
		<-m.changes
		return StateChangedMsg{}
	}
}

// refresh re-reads the store and feed and recomputes the lyric index.
// Returns a command when new artwork needs fetching.
func (m *Model) refresh() tea.Cmd {
	m.snap = m.store.Snapshot()
	m.lines, m.resolved = m.feed.Transcript()
	m.current, m.next = lyrics.LineIndex(m.lines, m.snap.PositionMs, m.delayMs)

	if m.snap.Song == nil || m.snap.Song.ArtworkURL == "" {
		return nil
	}
	if m.snap.Song.VideoID == m.artworkVideoID {
		return nil
	}

	m.artworkVideoID = m.snap.Song.VideoID
	return fetchArtworkCmd(m.snap.Song.VideoID, m.snap.Song.ArtworkURL)
}

func fetchArtworkCmd(videoID string, artworkURL string) tea.Cmd {
	return func() tea.Msg {
		img, err := artwork.Fetch(artworkURL)
		if err != nil {
			return ArtworkFetchedMsg{VideoID: videoID, Err: err}
		}
		return ArtworkFetchedMsg{VideoID: videoID, Palette: artwork.ExtractPalette(img)}
	}
}
