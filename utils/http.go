package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	UserAgent = "Marquee/1.0 (github.com/mxwhit/marquee)"
)

// UARoundtripper stamps every outgoing request with a descriptive
// User-Agent so artwork APIs can tell who is calling them.
type UARoundtripper struct {
	RT http.RoundTripper
}

func (uart *UARoundtripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", UserAgent)
	rt := uart.RT
	if rt == nil {
		rt = http.DefaultTransport
	}
	return rt.RoundTrip(req)
}

func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &UARoundtripper{},
	}
}

// FetchImage downloads an image, refusing anything that doesn't sniff
// as one so a stray error page never ends up framed as album art.
func FetchImage(ctx context.Context, client http.Client, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header = http.Header{
		"Accept":     []string{"image/*"},
		"User-Agent": []string{UserAgent},
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch returned status %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if !strings.HasPrefix(http.DetectContentType(body), "image/") {
		return nil, fmt.Errorf("response from %s was not an image", imageURL)
	}

	return body, nil
}
