package artwork

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/mxwhit/marquee/models"
	"github.com/mxwhit/marquee/utils"
)

var apiEndpoint = "https://ws.audioscrobbler.com/2.0/"

// Last.fm tags each image with a named size rather than dimensions.
var imageSizeRank = map[string]int{
	"small":      1,
	"medium":     2,
	"large":      3,
	"extralarge": 4,
	"mega":       5,
}

type lastFMImage struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

type lastFMAlbumInfo struct {
	Album struct {
		Image []lastFMImage `json:"image"`
	} `json:"album"`
}

type lastFMTrackInfo struct {
	Track struct {
		Album struct {
			Image []lastFMImage `json:"image"`
		} `json:"album"`
	} `json:"track"`
}

type lastFMArtistInfo struct {
	Artist struct {
		Image []lastFMImage `json:"image"`
	} `json:"artist"`
}

// lastFMStrategy asks Last.fm about the album, then the track, then the
// artist, taking the largest image the first successful lookup offers.
type lastFMStrategy struct {
	client http.Client
	apiKey string
}

func (s *lastFMStrategy) Name() string {
	return "lastfm"
}

func (s *lastFMStrategy) Fetch(ctx context.Context, track models.Track) ([]byte, error) {
	if s.apiKey == "" || track.Artist == "" {
		return nil, ErrNoArtwork
	}

	if track.Album != "" {
		var info lastFMAlbumInfo
		params := url.Values{}
		params.Set("method", "album.getinfo")
		params.Set("artist", track.Artist)
		params.Set("album", track.Album)
		if err := s.call(ctx, params, &info); err != nil {
			return nil, err
		}
		if imageURL := largestImage(info.Album.Image); imageURL != "" {
			return utils.FetchImage(ctx, s.client, imageURL)
		}
	}

	if track.Title != "" {
		var info lastFMTrackInfo
		params := url.Values{}
		params.Set("method", "track.getinfo")
		params.Set("artist", track.Artist)
		params.Set("track", track.Title)
		if err := s.call(ctx, params, &info); err != nil {
			return nil, err
		}
		if imageURL := largestImage(info.Track.Album.Image); imageURL != "" {
			return utils.FetchImage(ctx, s.client, imageURL)
		}
	}

	var info lastFMArtistInfo
	params := url.Values{}
	params.Set("method", "artist.getinfo")
	params.Set("artist", track.Artist)
	if err := s.call(ctx, params, &info); err != nil {
		return nil, err
	}
	if imageURL := largestImage(info.Artist.Image); imageURL != "" {
		return utils.FetchImage(ctx, s.client, imageURL)
	}

	return nil, ErrNoArtwork
}

func (s *lastFMStrategy) call(ctx context.Context, params url.Values, target any) error {
	params.Set("api_key", s.apiKey)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s?%s", apiEndpoint, params.Encode()), nil)
	if err != nil {
		return err
	}
	req.Header = http.Header{
		"Accept":     []string{"application/json"},
		"User-Agent": []string{utils.UserAgent},
	}

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("last.fm returned status %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	return json.Unmarshal(body, target)
}

func largestImage(images []lastFMImage) string {
	best := ""
	bestRank := -1
	for _, img := range images {
		if img.URL == "" {
			continue
		}
		if rank := imageSizeRank[img.Size]; rank > bestRank {
			bestRank = rank
			best = img.URL
		}
	}
	return best
}
