package jukebox

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mager/jukebox/config"
	jb "github.com/mager/jukebox/jukebox"
	"github.com/mager/jukebox/logger"
	"github.com/mager/jukebox/spotify"
)

func testSession() *Session {
	log, _ := logger.NewTestLogger()
	return NewSession(log, config.Config{
		MaxBranches:        4,
		MaxBranchThreshold: 80,
		AddLastEdge:        true,
	})
}

// testPayload is eight half-second beats in bars of four with one aligned
// segment each; beats 2 and 6 are acoustically identical.
func testPayload() []byte {
	seg := func(start, seed float64) string {
		return fmt.Sprintf(`{
			"start": %f, "duration": 0.5, "confidence": 1,
			"loudness_start": -20, "loudness_max": -5, "loudness_max_time": 0.1,
			"pitches": [0,0,0,0,0,0,0,0,0,0,0,0],
			"timbre": [%f,0,0,0,0,0,0,0,0,0,0,0]
		}`, start, seed)
	}
	seeds := []float64{0, 1000, 77, 2000, 300, 1500, 77, 2600}
	var beats, segments []string
	for i, s := range seeds {
		start := 0.5 * float64(i)
		beats = append(beats, fmt.Sprintf(`{"start": %f, "duration": 0.5}`, start))
		segments = append(segments, seg(start, s))
	}
	return []byte(fmt.Sprintf(`{
		"sections": [{"start": 0, "duration": 4, "confidence": 1}],
		"bars": [{"start": 0, "duration": 2, "confidence": 1}, {"start": 2, "duration": 2, "confidence": 1}],
		"beats": [%s],
		"tatums": [],
		"segments": [%s],
		"track": {"duration": 4, "tempo": 120, "time_signature": 4}
	}`, strings.Join(beats, ","), strings.Join(segments, ",")))
}

func loadFixture(t *testing.T, session *Session) {
	t.Helper()
	log, _ := logger.NewTestLogger()
	handler := NewLoadHandler(log, session, &spotify.SpotifyClient{})

	req := httptest.NewRequest(http.MethodPost, "/jukebox/load?title=Fixture&artist=Tester", bytes.NewReader(testPayload()))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("load returned %d: %s", rr.Code, rr.Body.String())
	}
}

func TestLoadHandler(t *testing.T) {
	session := testSession()
	loadFixture(t, session)

	var resp LoadResponse
	// Re-load to capture the response body this time.
	log, _ := logger.NewTestLogger()
	handler := NewLoadHandler(log, session, &spotify.SpotifyClient{})
	req := httptest.NewRequest(http.MethodPost, "/jukebox/load?title=Fixture&artist=Tester", bytes.NewReader(testPayload()))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Track.Title != "Fixture" || resp.Track.Artist != "Tester" {
		t.Errorf("metadata = %+v", resp.Track)
	}
	if resp.Graph.TotalBeats != 8 {
		t.Errorf("graph total beats = %d, want 8", resp.Graph.TotalBeats)
	}
}

func TestLoadHandlerRejectsMalformedPayload(t *testing.T) {
	log, _ := logger.NewTestLogger()
	handler := NewLoadHandler(log, testSession(), &spotify.SpotifyClient{})

	body := []byte(`{"beats": [{"start": 0}], "segments": []}`)
	req := httptest.NewRequest(http.MethodPost, "/jukebox/load", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	if !strings.Contains(resp["error"], "beats[0].duration") {
		t.Errorf("error should name the field path, got %q", resp["error"])
	}
}

func TestLoadHandlerRejectsGet(t *testing.T) {
	log, _ := logger.NewTestLogger()
	handler := NewLoadHandler(log, testSession(), &spotify.SpotifyClient{})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jukebox/load", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rr.Code)
	}
}

func TestGraphHandlerWithoutTrack(t *testing.T) {
	log, _ := logger.NewTestLogger()
	handler := NewGraphHandler(log, testSession())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jukebox/graph", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestGraphHandler(t *testing.T) {
	session := testSession()
	loadFixture(t, session)

	log, _ := logger.NewTestLogger()
	handler := NewGraphHandler(log, session)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jukebox/graph", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("graph returned %d", rr.Code)
	}
	var resp GraphResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.State.TotalBeats != 8 {
		t.Errorf("total beats = %d, want 8", resp.State.TotalBeats)
	}
}

func TestVizHandler(t *testing.T) {
	session := testSession()
	loadFixture(t, session)

	log, _ := logger.NewTestLogger()
	handler := NewVizHandler(log, session)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jukebox/viz", nil))

	var snap jb.Snapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if len(snap.Beats) != 8 {
		t.Errorf("snapshot beats = %d, want 8", len(snap.Beats))
	}
}

func TestEdgeHandlerDeleteAndRestore(t *testing.T) {
	session := testSession()
	loadFixture(t, session)
	driver, _ := session.Driver()

	active := driver.VisualizationSnapshot().ActiveEdges
	if len(active) == 0 {
		t.Fatal("fixture should produce at least one active edge")
	}
	victim := active[0].ID

	log, _ := logger.NewTestLogger()
	handler := NewEdgeHandler(log, session)

	post := func(body string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jukebox/edge", strings.NewReader(body)))
		return rr
	}

	rr := post(fmt.Sprintf(`{"action": "delete", "id": %d}`, victim))
	if rr.Code != http.StatusOK {
		t.Fatalf("delete returned %d", rr.Code)
	}
	for _, e := range driver.VisualizationSnapshot().ActiveEdges {
		if e.ID == victim {
			t.Fatalf("edge %d still active after delete+rebuild", victim)
		}
	}

	rr = post(`{"action": "restore"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("restore returned %d", rr.Code)
	}
	found := false
	for _, e := range driver.VisualizationSnapshot().ActiveEdges {
		if e.ID == victim {
			found = true
		}
	}
	if !found {
		t.Errorf("edge %d did not come back after restore", victim)
	}

	if rr := post(`{"action": "shuffle"}`); rr.Code != http.StatusBadRequest {
		t.Errorf("unknown action should 400, got %d", rr.Code)
	}
}

func TestConfigHandler(t *testing.T) {
	session := testSession()
	loadFixture(t, session)

	cfg := session.Config()
	cfg.BackwardOnly = true

	body, _ := json.Marshal(cfg)
	log, _ := logger.NewTestLogger()
	handler := NewConfigHandler(log, session)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jukebox/config", bytes.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("config returned %d", rr.Code)
	}
	if !session.Config().BackwardOnly {
		t.Error("session did not keep the new policy")
	}
	driver, _ := session.Driver()
	for _, e := range driver.VisualizationSnapshot().ActiveEdges {
		if e.Dest >= e.Source {
			t.Errorf("non-backward edge %d->%d survived the policy change", e.Source, e.Dest)
		}
	}
}
