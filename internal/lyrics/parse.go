// Package lyrics resolves synchronized transcripts from LRCLIB and computes
// which line is current for a playback position.
package lyrics

import (
	"regexp"
	"strconv"
	"strings"
)

// Line is one timestamped lyric line. An empty Text is a valid instrumental
// gap, rendered by consumers with a placeholder glyph.
type Line struct {
	TimeSeconds float64
	Text        string
}

// lrcLine matches a leading [mm:ss.xx] timestamp followed by free text.
var lrcLine = regexp.MustCompile(`^\[(\d+):(\d+\.\d+)\]\s*(.*)`)

// ParseSynced parses a newline-delimited LRC transcript. Lines without a
// parseable timestamp are dropped.
func ParseSynced(raw string) []Line {
	if raw == "" {
		return nil
	}

	rawLines := strings.Split(raw, "\n")
	result := make([]Line, 0, len(rawLines))

	for _, line := range rawLines {
		match := lrcLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		minutes, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		seconds, err := strconv.ParseFloat(match[2], 64)
		if err != nil {
			continue
		}

		result = append(result, Line{
			TimeSeconds: float64(minutes)*60 + seconds,
			Text:        match[3],
		})
	}

	return result
}
