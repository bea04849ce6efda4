package display

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/mxwhit/marquee/models"
)

// DefaultPorts are the places a marquee server is likely to be
// listening, tried in order.
var DefaultPorts = []int{8080, 3000, 5000}

const probeTimeout = 500 * time.Millisecond

// Client polls a marquee server for the current song. The right port is
// found by probing the candidates and remembered once something answers.
type Client struct {
	host   string
	ports  []int
	client http.Client

	mu   sync.Mutex
	port int
}

func NewClient(host string, ports []int) *Client {
	if host == "" {
		host = "localhost"
	}
	if len(ports) == 0 {
		ports = DefaultPorts
	}
	return &Client{
		host:   host,
		ports:  ports,
		client: http.Client{Timeout: probeTimeout},
	}
}

// Fetch returns the latest payload, nil when the server hasn't observed
// a track yet, and an error when no server answered on any port.
func (c *Client) Fetch(ctx context.Context) (*models.NowPlaying, error) {
	c.mu.Lock()
	port := c.port
	c.mu.Unlock()

	if port != 0 {
		np, err := c.fetchFrom(ctx, port)
		if err == nil {
			return np, nil
		}
		// The server may have moved, go back to probing
		c.mu.Lock()
		c.port = 0
		c.mu.Unlock()
	}

	for _, candidate := range c.ports {
		np, err := c.fetchFrom(ctx, candidate)
		if err != nil {
			continue
		}
		c.mu.Lock()
		c.port = candidate
		c.mu.Unlock()
		return np, nil
	}

	return nil, fmt.Errorf("no marquee server answered on %s", c.host)
}

func (c *Client) fetchFrom(ctx context.Context, port int) (*models.NowPlaying, error) {
	url := fmt.Sprintf("http://%s:%d/api/current-song", c.host, port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received %d from %s", res.StatusCode, url)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	// The body is a JSON null until the server sees its first track
	var np *models.NowPlaying
	if err := json.Unmarshal(body, &np); err != nil {
		return nil, err
	}
	return np, nil
}
