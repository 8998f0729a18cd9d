package remote

import (
	"encoding/json"
	"fmt"

	"karolbroda.com/ytmirror/internal/song"
)

// MessageType discriminates inbound push messages. Every shape is decoded
// into the same StatePatch and merged identically, so the tag is kept for
// logging only.
type MessageType string

const (
	TypePlayerInfo         MessageType = "PLAYER_INFO"
	TypeVideoChanged       MessageType = "VIDEO_CHANGED"
	TypePlayerStateChanged MessageType = "PLAYER_STATE_CHANGED"
	TypePositionChanged    MessageType = "POSITION_CHANGED"
	TypeVolumeChanged      MessageType = "VOLUME_CHANGED"
	TypeRepeatChanged      MessageType = "REPEAT_CHANGED"
	TypeShuffleChanged     MessageType = "SHUFFLE_CHANGED"
)

// StatePatch is a partial playback-state update. Nil fields were absent from
// the wire message and must be left untouched by the merge.
type StatePatch struct {
	Type MessageType `json:"type,omitempty"`

	Song *song.Song `json:"song,omitempty"`
	// Position is in seconds, as sent by the remote player.
	Position  *float64         `json:"position,omitempty"`
	IsPlaying *bool            `json:"isPlaying,omitempty"`
	Volume    *int             `json:"volume,omitempty"`
	Muted     *bool            `json:"muted,omitempty"`
	Repeat    *song.RepeatMode `json:"repeat,omitempty"`
	Shuffle   *bool            `json:"shuffle,omitempty"`
}

// StoppedPatch is the synthetic update emitted when the connection drops, so
// consumers do not keep showing a stale playing state.
func StoppedPatch() *StatePatch {
	pos := 0.0
	playing := false
	return &StatePatch{Position: &pos, IsPlaying: &playing}
}

// DecodePatch parses one inbound frame. Malformed payloads are a per-message
// failure; the caller logs and drops them without touching the connection.
func DecodePatch(data []byte) (*StatePatch, error) {
	var patch StatePatch
	if err := json.Unmarshal(data, &patch); err != nil {
		return nil, fmt.Errorf("failed to decode push message: %w", err)
	}
	return &patch, nil
}
