package jukebox

import (
	"encoding/json"
	"net/http"

	jb "github.com/mager/jukebox/jukebox"
	"go.uber.org/zap"
)

// ConfigHandler applies a new branching policy to the session.
type ConfigHandler struct {
	log     *zap.SugaredLogger
	session *Session
}

func (*ConfigHandler) Pattern() string {
	return "/jukebox/config"
}

// NewConfigHandler builds a new ConfigHandler.
func NewConfigHandler(log *zap.SugaredLogger, session *Session) *ConfigHandler {
	return &ConfigHandler{log: log, session: session}
}

// Update config
// @Summary Replace the branching policy, rebuilding the graph if needed
// @Accept json
// @Produce json
// @Success 200 {object} jb.State
// @Router /jukebox/config [post]
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	var cfg jb.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.session.SetConfig(cfg)
	h.log.Infow("updated branching policy", "threshold", cfg.BranchThreshold)

	if driver, ok := h.session.Driver(); ok {
		json.NewEncoder(w).Encode(driver.GraphState())
		return
	}
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// EdgeHandler soft-deletes a single edge or restores all deleted edges, then
// rebuilds so the edit takes effect.
type EdgeHandler struct {
	log     *zap.SugaredLogger
	session *Session
}

func (*EdgeHandler) Pattern() string {
	return "/jukebox/edge"
}

// NewEdgeHandler builds a new EdgeHandler.
func NewEdgeHandler(log *zap.SugaredLogger, session *Session) *EdgeHandler {
	return &EdgeHandler{log: log, session: session}
}

type EdgeRequest struct {
	// Action is "delete" or "restore".
	Action string `json:"action"`
	// ID is the edge to delete; ignored for restore.
	ID int `json:"id"`
}

// Edit edges
// @Summary Delete an edge or restore all deleted edges
// @Accept json
// @Produce json
// @Success 200 {object} jb.State
// @Router /jukebox/edge [post]
func (h *EdgeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	driver, ok := h.session.Driver()
	if !ok {
		writeError(w, http.StatusNotFound, errNoTrack)
		return
	}

	var req EdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	switch req.Action {
	case "delete":
		driver.DeleteEdge(req.ID)
		h.log.Infow("deleted edge", "id", req.ID)
	case "restore":
		driver.ClearDeletedEdges()
		h.log.Info("restored deleted edges")
	default:
		http.Error(w, `{"error":"unknown action"}`, http.StatusBadRequest)
		return
	}
	json.NewEncoder(w).Encode(driver.RebuildGraph())
}
