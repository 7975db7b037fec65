package jukebox

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/mager/jukebox/analysis"
	jb "github.com/mager/jukebox/jukebox"
	"github.com/mager/jukebox/spotify"
	"go.uber.org/zap"
)

// LoadHandler is an http.Handler that loads a track analysis into the
// session, either from the request body or fetched by Spotify track ID.
type LoadHandler struct {
	log           *zap.SugaredLogger
	session       *Session
	spotifyClient *spotify.SpotifyClient
}

func (*LoadHandler) Pattern() string {
	return "/jukebox/load"
}

// NewLoadHandler builds a new LoadHandler.
func NewLoadHandler(log *zap.SugaredLogger, session *Session, spotifyClient *spotify.SpotifyClient) *LoadHandler {
	return &LoadHandler{
		log:           log,
		session:       session,
		spotifyClient: spotifyClient,
	}
}

type LoadResponse struct {
	Track analysis.TrackInfo `json:"track"`
	Graph jb.State           `json:"graph"`
}

// Load a track
// @Summary Load a track analysis and build its branch graph
// @Accept json
// @Produce json
// @Success 200 {object} LoadResponse
// @Router /jukebox/load [post]
// @Param id query string false "Spotify track ID"
func (h *LoadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	var (
		track *analysis.TrackAnalysis
		err   error
	)
	if id := q.Get("id"); id != "" {
		track, err = h.fetch(r, string(spotify.ExtractID(id)))
	} else {
		var body []byte
		body, err = io.ReadAll(r.Body)
		if err == nil {
			track, err = analysis.ParseTrack(body, q.Get("title"), q.Get("artist"))
		}
	}
	if err != nil {
		h.log.Errorw("error loading analysis", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	driver := h.session.Load(track)
	json.NewEncoder(w).Encode(LoadResponse{
		Track: track.Track,
		Graph: driver.GraphState(),
	})
}

func (h *LoadHandler) fetch(r *http.Request, id string) (*analysis.TrackAnalysis, error) {
	ctx := r.Context()
	aa, err := h.spotifyClient.FetchAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}
	var title, artist string
	if ft, err := h.spotifyClient.FetchTrack(ctx, id); err == nil {
		title = ft.Name
		artist = spotify.ConcatArtists(ft.Artists)
	} else {
		h.log.Warnw("error fetching track metadata", "id", id, "error", err)
	}
	return analysis.FromSpotify(aa, title, artist)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
