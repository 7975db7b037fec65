package jukebox

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	jb "github.com/mager/jukebox/jukebox"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, you should validate the origin of the request
		return true
	},
}

// StreamHandler drives playback over a WebSocket: one tick per beat
// boundary, each followed by a PlaybackState message. The beat timer stands
// in for the audio transport's playback clock.
type StreamHandler struct {
	log     *zap.SugaredLogger
	session *Session
}

func (*StreamHandler) Pattern() string {
	return "/jukebox/stream"
}

// NewStreamHandler builds a new StreamHandler.
func NewStreamHandler(log *zap.SugaredLogger, session *Session) *StreamHandler {
	return &StreamHandler{log: log, session: session}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	driver, ok := h.session.Driver()
	if !ok {
		writeError(w, http.StatusNotFound, errNoTrack)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorw("error upgrading connection to WebSocket", "error", err)
		return
	}
	defer conn.Close()

	h.log.Info("WebSocket client connected")

	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		state := driver.Tick()
		if err := conn.WriteJSON(state); err != nil {
			h.log.Errorw("error sending WebSocket message", "error", err)
			return // Client likely disconnected
		}
		time.Sleep(h.beatWait(driver))
	}
}

// beatWait returns the duration of the current beat, falling back to the
// track tempo and then to a fixed interval.
func (h *StreamHandler) beatWait(driver *jb.Driver) time.Duration {
	if beat, ok := driver.CurrentBeat(); ok && beat.Duration > 0 {
		return time.Duration(beat.Duration * float64(time.Second))
	}
	if track, ok := h.session.Track(); ok && track.Track.Tempo > 0 {
		return time.Duration(60 / track.Track.Tempo * float64(time.Second))
	}
	return 500 * time.Millisecond
}
