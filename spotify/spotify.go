package spotify

import (
	"context"
	"errors"

	"github.com/mager/jukebox/config"
	spot "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrNotConfigured is returned when Spotify credentials are missing and an
// analysis has to be posted directly instead of fetched.
var ErrNotConfigured = errors.New("spotify: client not configured")

type SpotifyClient struct {
	Client *spot.Client
	ID     string
	Secret string
}

// ProvideSpotify builds a client-credentials Spotify client. Missing
// credentials are not fatal; fetching is simply unavailable.
func ProvideSpotify(cfg config.Config, log *zap.SugaredLogger) *SpotifyClient {
	c := &SpotifyClient{ID: cfg.SpotifyID, Secret: cfg.SpotifySecret}

	if cfg.SpotifyID == "" || cfg.SpotifySecret == "" {
		log.Warn("spotify credentials not set, analysis fetching disabled")
		return c
	}

	auth := &clientcredentials.Config{
		ClientID:     cfg.SpotifyID,
		ClientSecret: cfg.SpotifySecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	token, err := auth.Token(context.Background())
	if err != nil {
		log.Errorw("error fetching spotify token", "error", err)
		return c
	}

	c.Client = spot.New(spotifyauth.New().Client(context.Background(), token))
	log.Info("spotify client ready")
	return c
}

var Options = ProvideSpotify

// FetchAnalysis returns the audio analysis for a track.
func (c *SpotifyClient) FetchAnalysis(ctx context.Context, id string) (*spot.AudioAnalysis, error) {
	if c.Client == nil {
		return nil, ErrNotConfigured
	}
	return c.Client.GetAudioAnalysis(ctx, spot.ID(id))
}

// FetchTrack returns track metadata (title, artists) for a track.
func (c *SpotifyClient) FetchTrack(ctx context.Context, id string) (*spot.FullTrack, error) {
	if c.Client == nil {
		return nil, ErrNotConfigured
	}
	return c.Client.GetTrack(ctx, spot.ID(id))
}
