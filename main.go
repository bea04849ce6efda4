package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/mxwhit/marquee/artwork"
	"github.com/mxwhit/marquee/config"
	"github.com/mxwhit/marquee/db"
	"github.com/mxwhit/marquee/migrations"
	"github.com/mxwhit/marquee/playback"
	"github.com/mxwhit/marquee/player"
	"github.com/mxwhit/marquee/publish"
	"github.com/mxwhit/marquee/utils"
)

func main() {

	if err := godotenv.Load(); err != nil {
		fmt.Println(err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.GetLogLevel(),
	})))

	if utils.GetEnv("RESET_DB", "0") == "1" {
		err := os.Remove(cfg.Marquee.DbPath)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}

	database, err := db.Initialize(cfg)
	if err != nil {
		panic(err)
	}

	if err := db.ApplyMigrations(database, migrations.GetMigrations()); err != nil {
		panic(err)
	}

	snapshot := publish.NewSnapshot()
	stream := publish.NewStream()

	publishers := []publish.Publisher{snapshot, stream}
	if cfg.Pushover.Token != "" {
		publishers = append(publishers, publish.NewPushover(cfg))
	}

	sys := playback.NewSystem(cfg, database, publish.NewFanout(publishers...))

	src, err := player.ForConfig(cfg)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	// Sources that can hand over embedded artwork double as the first
	// resolver strategy. Ones that can't just skip it.
	embedded, _ := src.(artwork.EmbeddedSource)
	resolver := artwork.NewResolver(cfg, http.Client{}, embedded)

	jobScheduler, err := SetupInBackground(cfg, sys, src, resolver)
	if err != nil {
		panic(err)
	}

	if cfg.Marquee.BackgroundJobsEnabled {
		jobScheduler.Start()
		fmt.Println("Background jobs have started up in the background.")
	} else {
		fmt.Println("Background jobs are disabled.")
	}

	router := RegisterRoutes(http.NewServeMux(), cfg, sys, snapshot, stream)

	fmt.Printf("Marquee is running at http://localhost:%d\n", cfg.Marquee.Port)

	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Marquee.Port), router); err != nil {
		fmt.Println(err)
		jobScheduler.Shutdown()
		os.Exit(1)
	}
}
