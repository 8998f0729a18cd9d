// Package notify shows desktop toasts for failures the user opted into
// seeing.
package notify

import (
	"github.com/gen2brain/beeep"

	"karolbroda.com/ytmirror/internal/logger"
)

const title = "ytmirror"

// Notifier gates toasts on the show-failed-toasts setting.
type Notifier struct {
	enabled bool
}

func New(enabled bool) *Notifier {
	return &Notifier{enabled: enabled}
}

// Failure shows a dismissible failure toast. A failing toast is itself only
// worth a log line.
func (n *Notifier) Failure(body string) {
	if n == nil || !n.enabled {
		return
	}
	if err := beeep.Notify(title, body, ""); err != nil {
		logger.Log.Debug().Err(err).Msg("failed to show notification")
	}
}
