package artwork

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mxwhit/marquee/config"
	"github.com/mxwhit/marquee/models"
)

// ErrNoArtwork is the miss sentinel. Strategies return it when they have
// nothing to offer for a track, as opposed to failing while looking.
var ErrNoArtwork = errors.New("no artwork found")

// Strategy is one way of locating cover art for a track. Fetch returns
// the raw image bytes; normalisation happens in the resolver.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, track models.Track) ([]byte, error)
}

// EmbeddedSource is implemented by player backends that can hand over
// whatever artwork the player itself advertises for the current track.
type EmbeddedSource interface {
	EmbeddedArtwork(ctx context.Context, track models.Track) ([]byte, error)
}

// Resolver walks a fixed list of strategies in order and keeps the first
// image that both fetches and decodes. A track with no artwork anywhere
// is a normal outcome, not a failure.
type Resolver struct {
	strategies []Strategy
}

func NewResolver(cfg config.Config, client http.Client, embedded EmbeddedSource) *Resolver {
	var strategies []Strategy
	if embedded != nil {
		strategies = append(strategies, &playerStrategy{source: embedded})
	}
	strategies = append(strategies,
		&iTunesStrategy{client: client},
		&lastFMStrategy{client: client, apiKey: cfg.LastFM.APIKey},
		&tagStrategy{musicDir: cfg.Player.MusicDir},
		&cacheDirStrategy{dir: cfg.Artwork.CacheDir},
	)
	return &Resolver{strategies: strategies}
}

func (r *Resolver) Resolve(ctx context.Context, track models.Track) (models.Artwork, error) {
	for _, strategy := range r.strategies {
		raw, err := strategy.Fetch(ctx, track)
		if err != nil {
			if !errors.Is(err, ErrNoArtwork) {
				slog.Debug("Artwork strategy failed",
					slog.String("strategy", strategy.Name()),
					slog.String("error", err.Error()),
				)
			}
			continue
		}

		art, err := normalise(raw)
		if err != nil {
			slog.Debug("Artwork bytes were unusable",
				slog.String("strategy", strategy.Name()),
				slog.String("error", err.Error()),
			)
			continue
		}

		art.Strategy = strategy.Name()
		return art, nil
	}

	return models.Artwork{}, ErrNoArtwork
}

type playerStrategy struct {
	source EmbeddedSource
}

func (s *playerStrategy) Name() string {
	return "player"
}

func (s *playerStrategy) Fetch(ctx context.Context, track models.Track) ([]byte, error) {
	return s.source.EmbeddedArtwork(ctx, track)
}
