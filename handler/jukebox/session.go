package jukebox

import (
	"sync"

	"github.com/mager/jukebox/analysis"
	"github.com/mager/jukebox/config"
	jb "github.com/mager/jukebox/jukebox"
	"go.uber.org/zap"
)

// Session holds the active playback engine. The core library has no global
// state; the host owns exactly one of these and hands it to the handlers.
type Session struct {
	mu     sync.RWMutex
	log    *zap.SugaredLogger
	cfg    jb.Config
	track  *analysis.TrackAnalysis
	driver *jb.Driver
}

// NewSession builds the session with the configured default tuning.
func NewSession(log *zap.SugaredLogger, cfg config.Config) *Session {
	return &Session{
		log: log,
		cfg: cfg.Jukebox(),
	}
}

var Options = NewSession

// Load replaces the active track: builds its branch graph and a fresh
// free-running driver.
func (s *Session) Load(track *analysis.TrackAnalysis) *jb.Driver {
	s.mu.Lock()
	defer s.mu.Unlock()

	graph := jb.NewGraph(track, s.cfg, s.log)
	s.track = track
	s.driver = jb.NewDriver(graph, jb.NewFreeRand(), s.log)
	s.log.Infow("loaded track",
		"title", track.Track.Title,
		"artist", track.Track.Artist,
		"beats", len(track.Beats),
	)
	return s.driver
}

// Driver returns the active driver, if a track is loaded.
func (s *Session) Driver() (*jb.Driver, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.driver, s.driver != nil
}

// Track returns the active track analysis, if any.
func (s *Session) Track() (*analysis.TrackAnalysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.track, s.track != nil
}

// SetConfig stores the tuning for future loads and applies it to the active
// driver, which rebuilds if a filtering field changed.
func (s *Session) SetConfig(cfg jb.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	if s.driver != nil {
		s.driver.UpdateConfig(cfg)
	}
}

// Config returns the current tuning.
func (s *Session) Config() jb.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}
