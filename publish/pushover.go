package publish

import (
	"fmt"

	"github.com/gregdel/pushover"

	"github.com/mxwhit/marquee/config"
	"github.com/mxwhit/marquee/models"
)

// Pushover notifies a phone when a new track starts playing. It only
// fires on track changes, never on progress updates, and stays quiet
// for backfilled state loaded on boot.
type Pushover struct {
	lastTrackID string
	send        func(np *models.NowPlaying) error
}

func NewPushover(cfg config.Config) *Pushover {
	app := pushover.New(cfg.Pushover.Token)
	recipient := pushover.NewRecipient(cfg.Pushover.Recipient)
	return &Pushover{
		send: func(np *models.NowPlaying) error {
			message := pushover.NewMessageWithTitle(
				fmt.Sprintf("%s - %s", np.Artist, np.Title),
				"Now playing",
			)
			_, err := app.SendMessage(message, recipient)
			return err
		},
	}
}

func (p *Pushover) Publish(np *models.NowPlaying) error {
	if np == nil || !np.IsActive || np.Backfilled {
		return nil
	}
	if np.TrackID == p.lastTrackID {
		return nil
	}
	p.lastTrackID = np.TrackID
	return p.send(np)
}
