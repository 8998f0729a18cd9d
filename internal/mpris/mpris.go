// Package mpris publishes the mirrored playback state on the session bus so
// desktop widgets and media keys see the remote player as a local one.
package mpris

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/prop"

	"karolbroda.com/ytmirror/internal/logger"
	"karolbroda.com/ytmirror/internal/playback"
)

const (
	busName     = "org.mpris.MediaPlayer2.ytmirror"
	objectPath  = "/org/mpris/MediaPlayer2"
	rootIface   = "org.mpris.MediaPlayer2"
	playerIface = "org.mpris.MediaPlayer2.Player"
)

// Bridge owns the bus connection and keeps the exported properties in sync
// with the store.
type Bridge struct {
	conn        *dbus.Conn
	store       *playback.Store
	props       *prop.Properties
	unsubscribe func()
}

// Start connects to the session bus, claims the player name, and begins
// mirroring store changes. The caller should treat errors as non-fatal; the
// bridge is a convenience surface, not a core one.
func Start(store *playback.Store) (*Bridge, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	b := &Bridge{conn: conn, store: store}

	if err := conn.Export(&rootObject{}, objectPath, rootIface); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to export mpris root: %w", err)
	}
	if err := conn.Export(&playerObject{store: store}, objectPath, playerIface); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to export mpris player: %w", err)
	}

	props, err := prop.Export(conn, objectPath, b.propSpec())
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to export mpris properties: %w", err)
	}
	b.props = props

	reply, err := conn.RequestName(busName, dbus.NameFlagReplaceExisting)
	if err != nil || reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("failed to claim %s: %v", busName, err)
	}

	b.unsubscribe = store.Subscribe(b.sync)
	b.sync()

	logger.Log.Info().Str("name", busName).Msg("mpris bridge started")
	return b, nil
}

func (b *Bridge) Stop() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
	_, _ = b.conn.ReleaseName(busName)
	_ = b.conn.Close()
}

func (b *Bridge) propSpec() prop.Map {
	return prop.Map{
		rootIface: {
			"Identity":            {Value: "ytmirror", Writable: false, Emit: prop.EmitTrue},
			"CanQuit":             {Value: false, Writable: false, Emit: prop.EmitTrue},
			"CanRaise":            {Value: false, Writable: false, Emit: prop.EmitTrue},
			"HasTrackList":        {Value: false, Writable: false, Emit: prop.EmitTrue},
			"SupportedUriSchemes": {Value: []string{}, Writable: false, Emit: prop.EmitTrue},
			"SupportedMimeTypes":  {Value: []string{}, Writable: false, Emit: prop.EmitTrue},
		},
		playerIface: {
			"PlaybackStatus": {Value: "Stopped", Writable: false, Emit: prop.EmitTrue},
			"Metadata":       {Value: map[string]dbus.Variant{}, Writable: false, Emit: prop.EmitTrue},
			"Volume":         {Value: float64(0), Writable: false, Emit: prop.EmitTrue},
			"Position":       {Value: int64(0), Writable: false, Emit: prop.EmitFalse},
			"CanGoNext":      {Value: true, Writable: false, Emit: prop.EmitTrue},
			"CanGoPrevious":  {Value: true, Writable: false, Emit: prop.EmitTrue},
			"CanPlay":        {Value: true, Writable: false, Emit: prop.EmitTrue},
			"CanPause":       {Value: true, Writable: false, Emit: prop.EmitTrue},
			"CanSeek":        {Value: false, Writable: false, Emit: prop.EmitTrue},
			"CanControl":     {Value: true, Writable: false, Emit: prop.EmitTrue},
		},
	}
}

// sync pushes the current snapshot into the exported properties.
func (b *Bridge) sync() {
	snap := b.store.Snapshot()

	status := "Stopped"
	if snap.Song != nil {
		if snap.IsPlaying {
			status = "Playing"
		} else {
			status = "Paused"
		}
	}

	metadata := map[string]dbus.Variant{}
	if snap.Song != nil {
		metadata["mpris:trackid"] = dbus.MakeVariant(dbus.ObjectPath("/karolbroda/ytmirror/track/" + sanitize(snap.Song.VideoID)))
		metadata["xesam:title"] = dbus.MakeVariant(snap.Song.Title)
		metadata["xesam:artist"] = dbus.MakeVariant([]string{snap.Song.Artist})
		if snap.Song.Album != "" {
			metadata["xesam:album"] = dbus.MakeVariant(snap.Song.Album)
		}
		if snap.Song.ArtworkURL != "" {
			metadata["mpris:artUrl"] = dbus.MakeVariant(snap.Song.ArtworkURL)
		}
		if snap.Song.Duration > 0 {
			metadata["mpris:length"] = dbus.MakeVariant(int64(snap.Song.Duration * 1_000_000))
		}
	}

	_ = b.props.Set(playerIface, "PlaybackStatus", dbus.MakeVariant(status))
	_ = b.props.Set(playerIface, "Metadata", dbus.MakeVariant(metadata))
	_ = b.props.Set(playerIface, "Volume", dbus.MakeVariant(float64(snap.Volume)/100))
	_ = b.props.Set(playerIface, "Position", dbus.MakeVariant(snap.PositionMs*1000))
}

// sanitize keeps the trackid a valid object path element.
func sanitize(videoID string) string {
	out := make([]rune, 0, len(videoID))
	for _, r := range videoID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

type rootObject struct{}

func (r *rootObject) Raise() *dbus.Error { return nil }
func (r *rootObject) Quit() *dbus.Error  { return nil }

// playerObject routes media-key calls to store commands.
type playerObject struct {
	store *playback.Store
}

func (p *playerObject) Next() *dbus.Error {
	p.store.Next()
	return nil
}

func (p *playerObject) Previous() *dbus.Error {
	p.store.Prev()
	return nil
}

func (p *playerObject) Pause() *dbus.Error {
	p.store.SetPlaying(false)
	return nil
}

func (p *playerObject) Play() *dbus.Error {
	p.store.SetPlaying(true)
	return nil
}

func (p *playerObject) PlayPause() *dbus.Error {
	p.store.SetPlaying(!p.store.Snapshot().IsPlaying)
	return nil
}

func (p *playerObject) Stop() *dbus.Error {
	p.store.SetPlaying(false)
	return nil
}
