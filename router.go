package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/cors"

	"github.com/mxwhit/marquee/config"
	"github.com/mxwhit/marquee/playback"
	"github.com/mxwhit/marquee/publish"
	"github.com/mxwhit/marquee/utils"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
)

func renderJSONMessage(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	res := map[string]string{"message": message}
	json.NewEncoder(w).Encode(res)
}

func RegisterRoutes(mux *http.ServeMux, cfg config.Config, sys *playback.System, snapshot *publish.Snapshot, stream *publish.Stream) http.Handler {

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "Welcome to Marquee, a now playing API for your music player.\nYou can find the source code on <a href=\"https://github.com/mxwhit/marquee\">Github</a>\n")
	})

	mux.HandleFunc("/static/", func(w http.ResponseWriter, r *http.Request) {
		cover := strings.ReplaceAll(r.URL.Path, "/static/", "")
		// cover.<guid>.jpeg where the guid is derived from the image bytes
		coverSegments := strings.Split(cover, ".")
		if len(coverSegments) != 3 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		guid := coverSegments[1]
		extension := coverSegments[2]
		image, err := utils.LoadCover(cfg, guid, extension)
		if err != nil {
			w.WriteHeader(http.StatusGone)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=31622400")
		w.Header().Set("Content-Type", fmt.Sprintf("image/%s", extension))
		w.Write([]byte(image))
	})

	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		renderJSONMessage(w, "This is the base of Marquee's API")
	})

	mux.HandleFunc("/api/current-song", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Encodes to null before the first track has been observed, which
		// clients treat the same as an empty player.
		json.NewEncoder(w).Encode(snapshot.Latest())
	})

	mux.HandleFunc("/api/history", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		limit := defaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				json.NewEncoder(w).Encode(map[string]string{"error": "limit must be a positive number"})
				return
			}
			limit = parsed
		}
		if limit > maxHistoryLimit {
			limit = maxHistoryLimit
		}
		results, err := sys.GetHistory(limit)
		if err != nil {
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		if len(results) == 0 {
			json.NewEncoder(w).Encode([]string{})
			return
		}
		json.NewEncoder(w).Encode(results)
	})

	mux.HandleFunc("/events", stream.ServeHTTP)

	c := cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{"GET", "OPTIONS"},
		AllowedHeaders:       []string{"Origin", "Content-Type", "Accept"},
		OptionsSuccessStatus: http.StatusOK,
	})

	handler := c.Handler(mux)

	return handler
}
