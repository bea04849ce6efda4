package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mxwhit/marquee/artwork"
	"github.com/mxwhit/marquee/config"
	"github.com/mxwhit/marquee/models"
)

// arttest runs the artwork waterfall against metadata given on the
// command line, without needing a player or a running server. Handy for
// checking which strategy a particular album resolves through.
func main() {
	artist := flag.String("artist", "", "track artist")
	title := flag.String("title", "", "track title")
	album := flag.String("album", "", "track album")
	file := flag.String("file", "", "optional path to the audio file for the tag strategy")
	out := flag.String("out", "", "optional path to write the resolved image to")
	flag.Parse()

	if *artist == "" && *title == "" && *album == "" {
		flag.Usage()
		os.Exit(2)
	}

	// A missing .env is fine, the config falls back to defaults
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	track := models.Track{
		Title:  *title,
		Artist: *artist,
		Album:  *album,
		File:   *file,
	}

	// No player backend here so the waterfall starts at the network strategies
	resolver := artwork.NewResolver(cfg, http.Client{}, nil)

	art, err := resolver.Resolve(context.Background(), track)
	if err != nil {
		fmt.Println("No artwork found by any strategy.")
		os.Exit(1)
	}

	fmt.Printf("Strategy: %s\n", art.Strategy)
	fmt.Printf("MIME:     %s\n", art.MIME)
	fmt.Printf("Size:     %d bytes\n", len(art.Bytes))
	fmt.Printf("Colours:  %s\n", strings.Join(art.Colours, ", "))

	if *out != "" {
		if err := os.WriteFile(*out, art.Bytes, 0644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *out)
	}
}
