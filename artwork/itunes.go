package artwork

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/mxwhit/marquee/models"
	"github.com/mxwhit/marquee/utils"
)

var searchEndpoint = "https://itunes.apple.com/search"

type iTunesSearchResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []iTunesResult `json:"results"`
}

type iTunesResult struct {
	ArtistName     string `json:"artistName"`
	CollectionName string `json:"collectionName"`
	ArtworkURL100  string `json:"artworkUrl100"`
}

// iTunesStrategy looks the track up on the iTunes Search API. The API only
// hands back 100x100 thumbnails but the CDN happily serves other sizes if
// you rewrite the dimensions in the URL.
type iTunesStrategy struct {
	client http.Client
}

func (s *iTunesStrategy) Name() string {
	return "itunes"
}

func (s *iTunesStrategy) Fetch(ctx context.Context, track models.Track) ([]byte, error) {
	for _, term := range searchTerms(track) {
		artworkURL, err := s.search(ctx, term)
		if err != nil {
			// A failed lookup on one term shouldn't stop the looser ones
			slog.Debug("iTunes search failed",
				slog.String("term", term),
				slog.String("error", err.Error()),
			)
			continue
		}
		if artworkURL == "" {
			continue
		}
		data, err := utils.FetchImage(ctx, s.client, upscaleArtworkURL(artworkURL))
		if err != nil {
			slog.Debug("iTunes artwork fetch failed",
				slog.String("term", term),
				slog.String("error", err.Error()),
			)
			continue
		}
		return data, nil
	}

	return nil, ErrNoArtwork
}

func (s *iTunesStrategy) search(ctx context.Context, term string) (string, error) {
	params := url.Values{}
	params.Set("term", term)
	params.Set("media", "music")
	params.Set("entity", "album")
	params.Set("limit", "5")

	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s?%s", searchEndpoint, params.Encode()), nil)
	if err != nil {
		return "", err
	}
	req.Header = http.Header{
		"Accept":     []string{"application/json"},
		"User-Agent": []string{utils.UserAgent},
	}

	res, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("itunes search returned status %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	var searchResponse iTunesSearchResponse
	if err = json.Unmarshal(body, &searchResponse); err != nil {
		return "", err
	}

	for _, result := range searchResponse.Results {
		if result.ArtworkURL100 != "" {
			return result.ArtworkURL100, nil
		}
	}

	return "", nil
}

// searchTerms builds the query variants in the order they should be tried.
// Album searches come first since they match the actual cover, with looser
// title and artist-only terms as fallbacks for singles and live rips.
func searchTerms(track models.Track) []string {
	var terms []string
	add := func(parts ...string) {
		var kept []string
		for _, part := range parts {
			if part != "" {
				kept = append(kept, part)
			}
		}
		if len(kept) == 0 {
			return
		}
		term := strings.Join(kept, " ")
		for _, seen := range terms {
			if seen == term {
				return
			}
		}
		terms = append(terms, term)
	}

	add(track.Artist, track.Album)
	add(track.Artist, track.Title)
	add(track.Title, track.Artist)
	add(track.Artist)

	return terms
}

func upscaleArtworkURL(artworkURL string) string {
	return strings.Replace(artworkURL, "100x100", "600x600", 1)
}
