package jukebox

import (
	"encoding/json"
	"errors"
	"net/http"

	jb "github.com/mager/jukebox/jukebox"
	"github.com/mager/jukebox/util"
	"go.uber.org/zap"
)

var errNoTrack = errors.New("no track loaded")

// GraphHandler serves the state of the latest graph rebuild.
type GraphHandler struct {
	log     *zap.SugaredLogger
	session *Session
}

func (*GraphHandler) Pattern() string {
	return "/jukebox/graph"
}

// NewGraphHandler builds a new GraphHandler.
func NewGraphHandler(log *zap.SugaredLogger, session *Session) *GraphHandler {
	return &GraphHandler{log: log, session: session}
}

type SpanCount struct {
	Span  int `json:"span"`
	Count int `json:"count"`
}

type GraphResponse struct {
	State jb.State `json:"state"`
	// TopSpans summarizes the active-edge span distribution for display.
	TopSpans []SpanCount `json:"top_spans"`
}

// Get graph state
// @Summary Get the branch-graph state
// @Produce json
// @Success 200 {object} GraphResponse
// @Router /jukebox/graph [get]
func (h *GraphHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	driver, ok := h.session.Driver()
	if !ok {
		writeError(w, http.StatusNotFound, errNoTrack)
		return
	}

	snap := driver.VisualizationSnapshot()
	pairs := make([][2]int, 0, len(snap.ActiveEdges))
	for _, e := range snap.ActiveEdges {
		pairs = append(pairs, [2]int{e.Source, e.Dest})
	}
	counts := util.CountSpans(pairs)

	resp := GraphResponse{State: driver.GraphState()}
	for _, span := range util.RankByCount(counts) {
		resp.TopSpans = append(resp.TopSpans, SpanCount{Span: span, Count: counts[span]})
		if len(resp.TopSpans) == 5 {
			break
		}
	}
	json.NewEncoder(w).Encode(resp)
}

// VizHandler serves the read-only beats-and-edges snapshot for rendering.
type VizHandler struct {
	log     *zap.SugaredLogger
	session *Session
}

func (*VizHandler) Pattern() string {
	return "/jukebox/viz"
}

// NewVizHandler builds a new VizHandler.
func NewVizHandler(log *zap.SugaredLogger, session *Session) *VizHandler {
	return &VizHandler{log: log, session: session}
}

// Get visualization snapshot
// @Summary Get beats and active edges for rendering
// @Produce json
// @Success 200 {object} jb.Snapshot
// @Router /jukebox/viz [get]
func (h *VizHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	driver, ok := h.session.Driver()
	if !ok {
		writeError(w, http.StatusNotFound, errNoTrack)
		return
	}
	json.NewEncoder(w).Encode(driver.VisualizationSnapshot())
}
