package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"karolbroda.com/ytmirror/internal/config"
	"karolbroda.com/ytmirror/internal/song"
)

// instrumental gaps carry no text; show a placeholder glyph instead
const gapGlyph = "♪"

const lyricContext = 3

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width == 0 {
		width = 80
	}

	var sections []string

	if m.height > 18 {
		bannerStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.palette.Dim)).
			MarginLeft(2)
		sections = append(sections, bannerStyle.Render(m.banner))
	}

	lyricsBlock := ""
	if m.cfg.Lyrics.Show {
		lyricsBlock = m.renderLyrics(width)
	}

	if lyricsBlock != "" && m.cfg.Lyrics.Position == config.PositionAbove {
		sections = append(sections, lyricsBlock)
	}

	sections = append(sections, m.renderPlayer(width))

	if lyricsBlock != "" && m.cfg.Lyrics.Position == config.PositionBelow {
		sections = append(sections, lyricsBlock)
	}

	sections = append(sections, m.renderHelp(width))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderPlayer(width int) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.palette.Primary)).
		MarginLeft(2)
	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.palette.Secondary)).
		MarginLeft(2)
	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.palette.Dim)).
		MarginLeft(2)

	s := m.snap.Song
	if s == nil {
		return dimStyle.Render("nothing playing")
	}

	var lines []string
	lines = append(lines, titleStyle.Render(s.Title))
	artist := s.Artist
	if s.Album != "" {
		artist += " — " + s.Album
	}
	lines = append(lines, infoStyle.Render(artist))

	state := "⏸"
	if m.snap.IsPlaying {
		state = "▶"
	}

	position := fmt.Sprintf("%s %s / %s", state,
		formatTime(m.snap.PositionMs/1000),
		formatTime(int64(s.Duration)))

	flags := []string{fmt.Sprintf("vol %d%%", m.snap.Volume)}
	if m.snap.Muted {
		flags = append(flags, "muted")
	}
	if m.snap.Shuffled {
		flags = append(flags, "shuffle")
	}
	switch m.snap.Repeat {
	case song.RepeatOne:
		flags = append(flags, "repeat one")
	case song.RepeatAll:
		flags = append(flags, "repeat all")
	}

	lines = append(lines, dimStyle.Render(position+"   "+strings.Join(flags, " · ")))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderLyrics(width int) string {
	centerDim := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.palette.Dim)).
		Align(lipgloss.Center).
		Width(width)

	if m.snap.Song == nil {
		return ""
	}
	if !m.resolved {
		return centerDim.Render("looking for lyrics...")
	}
	if len(m.lines) == 0 {
		return centerDim.Render("no lyrics found")
	}

	currentStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.palette.Primary)).
		Align(lipgloss.Center).
		Width(width)
	nearStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.palette.Accent)).
		Align(lipgloss.Center).
		Width(width)
	farStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.palette.Dim)).
		Align(lipgloss.Center).
		Width(width)

	var rendered []string
	for offset := -lyricContext; offset <= lyricContext; offset++ {
		idx := m.current + offset
		if idx < 0 || idx >= len(m.lines) {
			rendered = append(rendered, "")
			continue
		}

		text := m.lines[idx].Text
		if text == "" {
			text = gapGlyph
		}

		switch {
		case offset == 0 && m.current >= 0:
			rendered = append(rendered, currentStyle.Render(text))
		case offset == -1 || offset == 1:
			rendered = append(rendered, nearStyle.Render(text))
		default:
			rendered = append(rendered, farStyle.Render(text))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

func (m *Model) renderHelp(width int) string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.palette.Dim)).
		Align(lipgloss.Right).
		Width(width)

	help := "space play · n/p skip · ←/→ seek · +/- vol · [/] delay · R refetch · q quit"
	if m.delayMs != 0 {
		help = fmt.Sprintf("delay %+dms · %s", m.delayMs, help)
	}
	return helpStyle.Render(help)
}

func formatTime(seconds int64) string {
	if seconds < 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
