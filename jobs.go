package main

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/mxwhit/marquee/artwork"
	"github.com/mxwhit/marquee/config"
	"github.com/mxwhit/marquee/playback"
	"github.com/mxwhit/marquee/player"
)

func SetupInBackground(cfg config.Config, sys *playback.System, src player.Source, resolver *artwork.Resolver) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	// A poll that outlives the interval just pushes the next tick back.
	// Overlapping polls would double-journal a track change and resolve
	// its artwork twice.
	if _, err := s.NewJob(
		gocron.DurationJob(cfg.PollInterval()),
		gocron.NewTask(player.Poll, cfg, sys, src, resolver),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return nil, err
	}

	// If we're redeployed, we'll populate the latest state
	sys.Preload()

	return s, nil
}
