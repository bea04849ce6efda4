package player

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mxwhit/marquee/artwork"
	"github.com/mxwhit/marquee/config"
	"github.com/mxwhit/marquee/models"
	"github.com/mxwhit/marquee/playback"
	"github.com/mxwhit/marquee/utils"
)

// Poll asks the player what's happening and feeds whatever changed into
// the playback system. The background scheduler runs it every interval.
func Poll(cfg config.Config, sys *playback.System, src Source, resolver *artwork.Resolver) {
	ctx := context.Background()

	obs, err := src.NowPlaying(ctx)
	if err != nil {
		if errors.Is(err, ErrNotPlaying) {
			if err := sys.MarkStopped(time.Now()); err != nil {
				slog.Error("Failed to mark playback stopped",
					slog.String("error", err.Error()),
				)
			}
			return
		}
		slog.Error("Failed to poll player",
			slog.String("source", src.Name()),
			slog.String("error", err.Error()),
		)
		return
	}

	switch sys.Assess(obs) {
	case playback.ChangeNone:
		return
	case playback.ChangeProgress:
		if err := sys.UpdateProgress(obs); err != nil {
			slog.Error("Failed to update playback progress",
				slog.String("error", err.Error()),
			)
		}
	case playback.ChangeTrack:
		art := resolveArtwork(ctx, cfg, resolver, obs.Track)
		if err := sys.ReplaceTrack(obs, art); err != nil {
			slog.Error("Failed to record track change",
				slog.String("error", err.Error()),
			)
			return
		}
		slog.Info("Now playing",
			slog.String("title", obs.Track.Title),
			slog.String("artist", obs.Track.Artist),
			slog.String("artwork", art.Strategy),
		)
	}
}

// resolveArtwork runs the waterfall once and stores the winning cover for
// /static/ serving. Any failure degrades to a payload without artwork.
func resolveArtwork(ctx context.Context, cfg config.Config, resolver *artwork.Resolver, track models.Track) models.Artwork {
	art, err := resolver.Resolve(ctx, track)
	if err != nil {
		if !errors.Is(err, artwork.ErrNoArtwork) {
			slog.Error("Artwork resolution failed",
				slog.String("error", err.Error()),
			)
		}
		return models.Artwork{}
	}

	location, guid := utils.BytesToGUIDLocation(art.Bytes, art.Extension)
	if err := utils.SaveCover(cfg, guid.String(), art.Bytes, art.Extension); err != nil {
		slog.Error("Failed to save cover to disk",
			slog.String("error", err.Error()),
		)
		// The payload still carries the inline copy
		return art
	}

	art.Location = location
	return art
}
