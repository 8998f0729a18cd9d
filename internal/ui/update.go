package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"karolbroda.com/ytmirror/internal/config"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case TickMsg:
		cmd := m.refresh()
		return m, tea.Batch(tickCmd(), cmd)

	case StateChangedMsg:
		cmd := m.refresh()
		return m, tea.Batch(m.listenForChanges(), cmd)

	case ArtworkFetchedMsg:
		if msg.Err == nil && msg.Palette != nil && msg.VideoID == m.artworkVideoID {
			m.palette = msg.Palette
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case " ":
		m.store.SetPlaying(!m.snap.IsPlaying)

	case "n":
		m.store.Next()

	case "p":
		m.store.Prev()

	case "+", "=":
		m.store.SetVolume(clampVolume(m.snap.Volume + 5))

	case "-":
		m.store.SetVolume(clampVolume(m.snap.Volume - 5))

	case "m":
		m.store.ToggleMute()

	case "s":
		m.store.Shuffle()

	case "r":
		m.store.SwitchRepeat()

	case "left":
		m.store.Seek(max64(m.snap.PositionMs-5000, 0))

	case "right":
		m.store.Seek(m.snap.PositionMs + 5000)

	case "[":
		m.delayMs = config.ClampDelay(m.delayMs - config.DelayStepMs)

	case "]":
		m.delayMs = config.ClampDelay(m.delayMs + config.DelayStepMs)

	case "0":
		m.delayMs = 0

	case "R":
		m.feed.Refresh()
	}

	cmd := m.refresh()
	return m, cmd
}

func clampVolume(v int) float64 {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return float64(v)
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
