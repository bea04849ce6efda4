package publish

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/r3labs/sse/v2"

	"github.com/mxwhit/marquee/models"
)

// StreamName is the SSE stream that clients subscribe to via
// /events?stream=playback
const StreamName = "playback"

// Stream is the push adapter: updates go out as server sent events.
type Stream struct {
	server *sse.Server
}

func NewStream() *Stream {
	server := sse.New()
	server.AutoReplay = false
	server.CreateStream(StreamName)
	return &Stream{server: server}
}

func (s *Stream) Publish(np *models.NowPlaying) error {
	byteStream := new(bytes.Buffer)
	if err := json.NewEncoder(byteStream).Encode(np); err != nil {
		return err
	}
	s.server.Publish(StreamName, &sse.Event{Data: byteStream.Bytes()})
	return nil
}

func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.ServeHTTP(w, r)
}
